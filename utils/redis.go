package utils

import (
	"context"
	"log"
	"time"

	"slotbook/config"

	"github.com/go-redis/redis/v8"
)

// TaskRedisClient is the client for the asynq task-queue database, shared by
// the health monitor and the worker's connection watchdog.
var TaskRedisClient *redis.Client

// InitTaskRedis initializes the Redis client backing the task queue.
func InitTaskRedis() {
	TaskRedisClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := TaskRedisClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (task queue): %v", err)
	}
}

// GetTaskRedisClient returns the task-queue Redis client.
func GetTaskRedisClient() *redis.Client {
	if TaskRedisClient == nil {
		InitTaskRedis()
	}
	return TaskRedisClient
}
