package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_GetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectGet("jobpilot:session:s1:user").RedisNil()

	var out string
	err := svc.Get(context.Background(), "jobpilot:session:s1:user", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_SetAndGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)
	ctx := context.Background()

	mock.ExpectSet("k", []byte(`"value"`), time.Minute).SetVal("OK")
	mock.ExpectGet("k").SetVal(`"value"`)

	require.NoError(t, svc.Set(ctx, "k", "value", time.Minute))

	var out string
	require.NoError(t, svc.Get(ctx, "k", &out))
	assert.Equal(t, "value", out)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectGet("k").SetErr(errors.New("connection reset"))

	var out string
	err := svc.Get(context.Background(), "k", &out)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestService_DeletePatternScansAllPages(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectScan(0, "jobpilot:session:s1:*", scanBatchSize).SetVal([]string{"a", "b"}, 7)
	mock.ExpectDel("a", "b").SetVal(2)
	mock.ExpectScan(7, "jobpilot:session:s1:*", scanBatchSize).SetVal([]string{"c"}, 0)
	mock.ExpectDel("c").SetVal(1)

	require.NoError(t, svc.DeletePattern(context.Background(), "jobpilot:session:s1:*"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_DeleteNoKeys(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	require.NoError(t, svc.Delete(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestService_Publish(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db)

	mock.ExpectPublish("jobpilot:invalidations", []byte(`{"tags":["Users"]}`)).SetVal(1)

	require.NoError(t, svc.Publish(context.Background(), "jobpilot:invalidations", []byte(`{"tags":["Users"]}`)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewConfigFromRedisConfig(t *testing.T) {
	assert.Equal(t, "redis:6379", NewConfigFromRedisConfig(RedisConfig{Host: "redis", Port: "6379"}).Address)
	assert.Equal(t, "10.0.0.1:6380", NewConfigFromRedisConfig(RedisConfig{Host: "redis", Port: "6379", Addr: "10.0.0.1:6380"}).Address)
}

func TestConnect_RequiresAddress(t *testing.T) {
	_, err := Connect(context.Background(), Config{})
	assert.Error(t, err)
}
