package database

import (
	"context"
	"fmt"
	"hospital-service/internal/app/config"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const redisPingTimeout = 5 * time.Second

// NewRedisClient connects the client that backs the worker leader locks.
func NewRedisClient(driverConfig *config.DriverConfig, log *logrus.Logger) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%s", driverConfig.Redis.Host, driverConfig.Redis.Port)
	rdb := redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   driverConfig.Redis.Password,
		DB:         driverConfig.Redis.DB,
		ClientName: "hospital-service",
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s db %d: %w", addr, driverConfig.Redis.DB, err)
	}

	log.WithFields(logrus.Fields{"addr": addr, "db": driverConfig.Redis.DB}).Println("Successfully connected to redis")
	return rdb, nil
}
