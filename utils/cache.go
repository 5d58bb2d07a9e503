// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"campuspay/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
	// CounterClient is the dedicated client for receipt sequence counters.
	CounterClient *redis.Client
)

// InitCache initializes the generic Redis cache client.
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitCounterCache initializes the Redis client for receipt counters.
func InitCounterCache() {
	CounterClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCounterDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CounterClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Counters): %v", err)
	}
}

// GetCounterClient returns the Redis client for receipt counters.
func GetCounterClient() *redis.Client {
	if CounterClient == nil {
		InitCounterCache()
	}
	return CounterClient
}
