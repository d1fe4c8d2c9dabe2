package main

import (
	"log"

	"github.com/sparknote/ai-gateway/internal/config"
	"github.com/sparknote/ai-gateway/pkg/gateway"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

func main() {
	// Load environment files explicitly
	envFiles := []string{".env.local", ".env.development", ".env"}
	config.LoadEnvFiles(envFiles)

	// Load configuration from YAML
	cfg, err := config.LoadFromFile("config.yaml")
	if err != nil {
		fiberlog.Fatalf("Failed to load config: %v", err)
	}

	gw := gateway.New(cfg)

	log.Println("Starting SparkNote AI Gateway...")
	if err := gw.Run(); err != nil {
		fiberlog.Fatalf("Server failed: %v", err)
	}
}
