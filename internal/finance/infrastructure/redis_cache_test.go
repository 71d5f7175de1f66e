package infrastructure

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

func setupRedis(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)
	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestNewRedisMonthCache_InvalidURL(t *testing.T) {
	_, err := NewRedisMonthCache(context.Background(), "http://localhost:6379", time.Minute, zerolog.Nop())
	assert.Error(t, err)
}

func TestRedisMonthCache_RoundTrip(t *testing.T) {
	url := setupRedis(t)
	ctx := context.Background()

	cache, err := NewRedisMonthCache(ctx, url, time.Minute, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	generation, ok := cache.Generation(ctx, "u1")
	require.True(t, ok)

	_, ok = cache.GetMonths(ctx, "u1", generation)
	assert.False(t, ok)

	months := []domain.MonthlyStats{{ID: 1, UserID: "u1", MonthKey: "2024-03", TotalSpent: decimal.RequireFromString("12.50")}}
	cache.SetMonths(ctx, "u1", generation, months)

	date := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	cache.SetMonth(ctx, "u1", "2024-03", generation, &domain.MonthDetail{
		Stats:        months[0],
		Transactions: []domain.Transaction{{ID: 3, Date: &date, TransactionID: "t1", Amount: decimal.NewFromInt(7), Kind: domain.KindDebit}},
	})

	cached, ok := cache.GetMonths(ctx, "u1", generation)
	require.True(t, ok)
	require.Len(t, cached, 1)
	assert.True(t, cached[0].TotalSpent.Equal(decimal.RequireFromString("12.5")))

	detail, ok := cache.GetMonth(ctx, "u1", "2024-03", generation)
	require.True(t, ok)
	require.Len(t, detail.Transactions, 1)
	assert.True(t, detail.Transactions[0].Date.Equal(date))
	assert.Equal(t, domain.KindDebit, detail.Transactions[0].Kind)

	cache.Invalidate(ctx, "u1", "2024-03")
	next, ok := cache.Generation(ctx, "u1")
	require.True(t, ok)
	assert.Greater(t, next, generation)
	_, ok = cache.GetMonths(ctx, "u1", next)
	assert.False(t, ok)
	_, ok = cache.GetMonth(ctx, "u1", "2024-03", next)
	assert.False(t, ok)
}

func TestRedisMonthCache_StaleFillIsNeverServed(t *testing.T) {
	url := setupRedis(t)
	ctx := context.Background()

	cache, err := NewRedisMonthCache(ctx, url, time.Minute, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	before, ok := cache.Generation(ctx, "u1")
	require.True(t, ok)

	// a write commits and invalidates while a reader still holds data read
	// under the old generation
	cache.Invalidate(ctx, "u1", "2024-03")
	cache.SetMonth(ctx, "u1", "2024-03", before, &domain.MonthDetail{Stats: domain.MonthlyStats{MonthKey: "2024-03"}})

	after, ok := cache.Generation(ctx, "u1")
	require.True(t, ok)
	_, ok = cache.GetMonth(ctx, "u1", "2024-03", after)
	assert.False(t, ok)
}

func TestRedisMonthCache_KeysDoNotCrossUsers(t *testing.T) {
	assert.NotEqual(t, monthKey("tenant", "123:2024-03", 1), monthKey("tenant:123", "2024-03", 1))
	assert.NotEqual(t, monthsKey("a:1", 2), monthsKey("a", 12))
	assert.NotEqual(t, generationKey("a:b"), generationKey("a%3Ab"))
}

func TestRedisMonthCache_DropsUndecodableEntries(t *testing.T) {
	url := setupRedis(t)
	ctx := context.Background()

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	cache := NewRedisMonthCacheWithClient(client, time.Minute, zerolog.Nop())
	t.Cleanup(func() { cache.Close() })

	generation, ok := cache.Generation(ctx, "u1")
	require.True(t, ok)
	require.NoError(t, client.Set(ctx, monthsKey("u1", generation), "not json", time.Minute).Err())

	_, ok = cache.GetMonths(ctx, "u1", generation)
	assert.False(t, ok)

	exists, err := client.Exists(ctx, monthsKey("u1", generation)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}
