package session

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/pkg/cache"
)

func TestRedisStorage_Load(t *testing.T) {
	db, mock := redismock.NewClientMock()
	storage := NewRedisStorage(cache.NewService(db), time.Hour)

	mock.ExpectGet("jobpilot:session:s1:accessToken").SetVal(`"acc"`)
	mock.ExpectGet("jobpilot:session:s1:refreshToken").RedisNil()
	mock.ExpectGet("jobpilot:session:s1:user").SetVal(`"{\"id\":\"u\"}"`)

	rec, err := storage.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, Record{
		constants.SESSION_FIELD_ACCESS_TOKEN: "acc",
		constants.SESSION_FIELD_USER:         `{"id":"u"}`,
	}, rec)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorage_LoadMissing(t *testing.T) {
	db, mock := redismock.NewClientMock()
	storage := NewRedisStorage(cache.NewService(db), time.Hour)

	for _, field := range constants.SessionFields {
		mock.ExpectGet(constants.BuildSessionKey("s2", field)).RedisNil()
	}

	_, err := storage.Load(context.Background(), "s2")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStorage_SaveDropsEmptyFields(t *testing.T) {
	db, mock := redismock.NewClientMock()
	storage := NewRedisStorage(cache.NewService(db), time.Hour)

	mock.ExpectSet("jobpilot:session:s1:accessToken", []byte(`"acc"`), time.Hour).SetVal("OK")
	mock.ExpectSet("jobpilot:session:s1:user", []byte(`"{}"`), time.Hour).SetVal("OK")
	mock.ExpectDel("jobpilot:session:s1:refreshToken").SetVal(1)

	err := storage.Save(context.Background(), "s1", Record{
		constants.SESSION_FIELD_ACCESS_TOKEN:  "acc",
		constants.SESSION_FIELD_REFRESH_TOKEN: "",
		constants.SESSION_FIELD_USER:          "{}",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStorage_Clear(t *testing.T) {
	db, mock := redismock.NewClientMock()
	storage := NewRedisStorage(cache.NewService(db), 0)

	keys := []string{
		"jobpilot:session:s1:accessToken",
		"jobpilot:session:s1:refreshToken",
		"jobpilot:session:s1:user",
	}
	mock.ExpectScan(0, "jobpilot:session:s1:*", 100).SetVal(keys, 0)
	mock.ExpectDel(keys...).SetVal(3)

	require.NoError(t, storage.Clear(context.Background(), "s1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func setupSessionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&SessionEntry{}))
	return db
}

func TestGormStorage_SaveLoadClear(t *testing.T) {
	db := setupSessionTestDB(t)
	storage := NewGormStorage(db, time.Hour)
	ctx := context.Background()

	_, err := storage.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, storage.Save(ctx, "s1", Record{
		constants.SESSION_FIELD_ACCESS_TOKEN:  "acc",
		constants.SESSION_FIELD_REFRESH_TOKEN: "ref",
		constants.SESSION_FIELD_USER:          `{"id":"u"}`,
	}))

	rec, err := storage.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, rec, 3)
	assert.Equal(t, "ref", rec[constants.SESSION_FIELD_REFRESH_TOKEN])

	// A second save upserts values and removes fields no longer present.
	require.NoError(t, storage.Save(ctx, "s1", Record{
		constants.SESSION_FIELD_ACCESS_TOKEN: "acc-2",
		constants.SESSION_FIELD_USER:         `{"id":"u"}`,
	}))
	rec, err = storage.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, Record{
		constants.SESSION_FIELD_ACCESS_TOKEN: "acc-2",
		constants.SESSION_FIELD_USER:         `{"id":"u"}`,
	}, rec)

	var count int64
	require.NoError(t, db.Model(&SessionEntry{}).Where("session_id = ?", "s1").Count(&count).Error)
	assert.Equal(t, int64(2), count)

	require.NoError(t, storage.Clear(ctx, "s1"))
	_, err = storage.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGormStorage_ExpiredEntriesAreIgnored(t *testing.T) {
	db := setupSessionTestDB(t)
	storage := NewGormStorage(db, time.Minute).(*gormStorage)
	ctx := context.Background()

	storage.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	require.NoError(t, storage.Save(ctx, "old", Record{constants.SESSION_FIELD_ACCESS_TOKEN: "acc"}))

	storage.now = time.Now
	_, err := storage.Load(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	purged, err := PurgeExpired(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}

func TestSealer_RoundTrip(t *testing.T) {
	sealer, err := NewSealer("secret")
	require.NoError(t, err)

	sealed, err := sealer.Seal("upstream-token")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "sb1:"))
	assert.NotContains(t, sealed, "upstream-token")

	again, err := sealer.Seal("upstream-token")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonces differ per seal")

	plain, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "upstream-token", plain)

	other, err := NewSealer("other")
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, ErrUnsealFailed)

	_, err = sealer.Open("plain-token")
	assert.ErrorIs(t, err, ErrUnsealFailed)

	_, err = NewSealer("")
	assert.Error(t, err)
}

func TestSealedStorage(t *testing.T) {
	inner := NewMemoryStorage()
	sealer, err := NewSealer("secret")
	require.NoError(t, err)
	storage := NewSealedStorage(inner, sealer)
	ctx := context.Background()

	require.NoError(t, storage.Save(ctx, "s1", Record{
		constants.SESSION_FIELD_ACCESS_TOKEN:  "acc",
		constants.SESSION_FIELD_REFRESH_TOKEN: "ref",
		constants.SESSION_FIELD_USER:          `{"id":"u"}`,
	}))

	raw, err := inner.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEqual(t, "acc", raw[constants.SESSION_FIELD_ACCESS_TOKEN])
	assert.NotEqual(t, "ref", raw[constants.SESSION_FIELD_REFRESH_TOKEN])
	assert.Equal(t, `{"id":"u"}`, raw[constants.SESSION_FIELD_USER])

	rec, err := storage.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "acc", rec[constants.SESSION_FIELD_ACCESS_TOKEN])
	assert.Equal(t, "ref", rec[constants.SESSION_FIELD_REFRESH_TOKEN])

	// A tampered token is dropped, so a restore comes back unauthenticated.
	raw[constants.SESSION_FIELD_ACCESS_TOKEN] = "sb1:tampered"
	require.NoError(t, inner.Save(ctx, "s1", raw))

	store := NewStore("s1", storage, nil)
	require.NoError(t, store.RestoreFromStorage(ctx))
	assert.False(t, store.IsAuthenticated())
}
