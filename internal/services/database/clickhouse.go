package database

import (
	"fmt"

	"github.com/sparknote/ai-gateway/internal/models"
	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"
)

// ClickHouse is offered for deployments that ship usage logs into an
// analytics store. The credential tables work there too, but a row store is
// the better home for them; mixed setups should point `database` at
// postgres/mysql and run a second gateway instance for analytics ingestion.
func newClickHouse(config models.DatabaseConfig) (*DB, error) {
	var dsn string
	if config.DSN != "" {
		dsn = config.DSN
	} else {
		dsn = fmt.Sprintf(
			"clickhouse://%s:%s@%s:%d/%s",
			config.Username,
			config.Password,
			config.Host,
			config.Port,
			config.Database,
		)
	}

	gormDB, err := gorm.Open(clickhouse.New(clickhouse.Config{
		DSN:                    dsn,
		DefaultGranularity:     3,
		DefaultCompression:     "LZ4",
		DefaultIndexType:       "minmax",
		DefaultTableEngineOpts: "ENGINE=MergeTree() ORDER BY id",
	}), &gorm.Config{
		// Disable prepared statements for ClickHouse - the driver has incomplete support
		// See: https://github.com/go-gorm/gorm/issues/7493
		PrepareStmt: false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open ClickHouse connection: %w", err)
	}

	db := &DB{
		DB:         gormDB,
		config:     config,
		driverName: "clickhouse",
	}

	db.setConnectionPool()

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return db, nil
}
