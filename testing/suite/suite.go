package suite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	expireDuration  = 300
	maxWaitDuration = 120 * time.Second
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// redisAddrEnv points the suite at an existing redis instead of a container.
const redisAddrEnv = "TEST_REDIS_ADDR"

type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage *redis.Client
}

var (
	containerOnce sync.Once
	containerAddr string
	containerErr  error
)

// New returns a suite backed by a flushed redis. One container is shared by every
// test in the binary; docker hard kills it after expireDuration seconds.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), maxWaitDuration)
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	addr := os.Getenv(redisAddrEnv)
	if addr == "" {
		containerOnce.Do(func() {
			containerAddr, containerErr = startRedis()
		})
		if containerErr != nil {
			t.Skipf("redis is unavailable: %v", containerErr)
		}
		addr = containerAddr
	}

	redisClient := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		_ = redisClient.Close()
	})

	if err := redisClient.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	return ctx, &Suite{
		T:       t,
		Logger:  logger,
		Storage: redisClient,
	}
}

func startRedis() (string, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return "", fmt.Errorf("could not connect to docker: %w", err)
	}

	if err = pool.Client.Ping(); err != nil {
		return "", fmt.Errorf("could not reach docker: %w", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return "", fmt.Errorf("could not start resource: %w", err)
	}

	// never returns error
	_ = resource.Expire(expireDuration)

	addr := resource.GetHostPort(redisPort)

	pool.MaxWait = maxWaitDuration
	if err = pool.Retry(func() error {
		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()

		return client.Ping(context.Background()).Err()
	}); err != nil {
		_ = pool.Purge(resource)
		return "", fmt.Errorf("could not connect to redis: %w", err)
	}

	return addr, nil
}
