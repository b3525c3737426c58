package redis

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// Connect returns a redis client for the day-list cache, or nil when no
// address is configured. The cache is an optimization; the app runs without it.
func Connect(addr string) *redis.Client {
	if addr == "" {
		log.Println("REDIS_ADDR not set, day-list cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Printf("Warning: failed to connect to Redis (%v), day-list cache disabled", err)
		return nil
	}

	log.Println("✅ Connected to Redis")
	return client
}
