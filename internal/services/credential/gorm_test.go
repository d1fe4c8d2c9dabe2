package credential

import (
	"context"
	"testing"
	"time"

	"github.com/sparknote/ai-gateway/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepo(t *testing.T) *GormRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	repo := NewGormRepository(db)
	require.NoError(t, repo.AutoMigrate())
	return repo
}

func createKey(t *testing.T, repo *GormRepository, name string, service models.ProviderService) *models.ProviderKey {
	t.Helper()
	key := &models.ProviderKey{Name: name, Service: service, Secret: "sk-" + name}
	require.NoError(t, repo.Create(context.Background(), key))
	return key
}

func activeKeys(t *testing.T, repo *GormRepository, service models.ProviderService) []models.ProviderKey {
	t.Helper()
	var keys []models.ProviderKey
	require.NoError(t, repo.db.
		Where("service = ? AND is_active = ?", service, true).
		Find(&keys).Error)
	return keys
}

func TestCreateAssignsID(t *testing.T) {
	repo := setupRepo(t)
	key := createKey(t, repo, "first", models.ServiceOpenAI)

	assert.NotEmpty(t, key.ID)
	assert.False(t, key.IsActive)
}

func TestActivationSequencePreservesInvariant(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	k1 := createKey(t, repo, "one", models.ServiceOpenAI)
	k2 := createKey(t, repo, "two", models.ServiceOpenAI)

	// activate k1
	require.NoError(t, repo.DeactivateAllForService(ctx, models.ServiceOpenAI))
	require.NoError(t, repo.ActivateByID(ctx, k1.ID, models.ServiceOpenAI))
	require.Len(t, activeKeys(t, repo, models.ServiceOpenAI), 1)

	// switch to k2
	require.NoError(t, repo.DeactivateAllForService(ctx, models.ServiceOpenAI))
	require.NoError(t, repo.ActivateByID(ctx, k2.ID, models.ServiceOpenAI))

	live := activeKeys(t, repo, models.ServiceOpenAI)
	require.Len(t, live, 1)
	assert.Equal(t, k2.ID, live[0].ID)
}

func TestActivateByIDRefusesLiveSibling(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	k1 := createKey(t, repo, "one", models.ServiceAnthropic)
	k2 := createKey(t, repo, "two", models.ServiceAnthropic)

	require.NoError(t, repo.ActivateByID(ctx, k1.ID, models.ServiceAnthropic))

	// a second activation without the deactivate step must lose
	err := repo.ActivateByID(ctx, k2.ID, models.ServiceAnthropic)
	assert.ErrorIs(t, err, ErrActivationConflict)

	live := activeKeys(t, repo, models.ServiceAnthropic)
	require.Len(t, live, 1)
	assert.Equal(t, k1.ID, live[0].ID)
}

func TestActivateByIDUnknownKey(t *testing.T) {
	repo := setupRepo(t)
	err := repo.ActivateByID(context.Background(), "no-such-id", models.ServiceOpenAI)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestActivationScopedPerService(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	openaiKey := createKey(t, repo, "oa", models.ServiceOpenAI)
	anthropicKey := createKey(t, repo, "an", models.ServiceAnthropic)

	require.NoError(t, repo.ActivateByID(ctx, openaiKey.ID, models.ServiceOpenAI))
	require.NoError(t, repo.ActivateByID(ctx, anthropicKey.ID, models.ServiceAnthropic))

	assert.Len(t, activeKeys(t, repo, models.ServiceOpenAI), 1)
	assert.Len(t, activeKeys(t, repo, models.ServiceAnthropic), 1)
}

func TestFindActiveKeyDeterministic(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	key := createKey(t, repo, "solo", models.ServiceGoogle)
	require.NoError(t, repo.ActivateByID(ctx, key.ID, models.ServiceGoogle))

	// repeated reads with no writes in between return the same key
	for range 3 {
		got, err := repo.FindActiveKey(ctx, models.ServiceGoogle)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, key.ID, got.ID)
	}
}

func TestFindActiveKeyNoneActive(t *testing.T) {
	repo := setupRepo(t)

	createKey(t, repo, "inactive", models.ServicePerplexity)

	got, err := repo.FindActiveKey(context.Background(), models.ServicePerplexity)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteActiveKeyDoesNotPromoteSibling(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	k1 := createKey(t, repo, "one", models.ServiceOpenAI)
	createKey(t, repo, "two", models.ServiceOpenAI)
	require.NoError(t, repo.ActivateByID(ctx, k1.ID, models.ServiceOpenAI))

	require.NoError(t, repo.Delete(ctx, k1.ID))

	got, err := repo.FindActiveKey(ctx, models.ServiceOpenAI)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteUnknownKey(t *testing.T) {
	repo := setupRepo(t)
	err := repo.Delete(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestListNewestFirst(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	first := createKey(t, repo, "older", models.ServiceOpenAI)
	// force distinct created_at values
	require.NoError(t, repo.db.Model(first).Update("created_at", time.Now().Add(-time.Hour)).Error)
	newer := createKey(t, repo, "newer", models.ServiceOpenAI)

	keys, total, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, keys, 2)
	assert.Equal(t, newer.ID, keys[0].ID)
}

func TestTouchLastUsed(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	key := createKey(t, repo, "touched", models.ServiceOpenAI)
	stamp := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.TouchLastUsed(ctx, key.ID, stamp))

	got, err := repo.GetByID(ctx, key.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastUsedAt)
	assert.WithinDuration(t, stamp, *got.LastUsedAt, time.Second)
}
