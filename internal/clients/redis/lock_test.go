package redis

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/yungbote/swapi-mirror/internal/config"
)

func TestNewClientWithoutAddr(t *testing.T) {
	rdb, err := NewClient(context.Background(), config.RedisConfig{})
	if err != nil || rdb != nil {
		t.Fatalf("empty addr: want nil,nil got=%v,%v", rdb, err)
	}
}

func TestLockerSerialises(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis lock tests")
	}
	ctx := context.Background()
	rdb, err := NewClient(ctx, config.RedisConfig{Addr: addr})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer rdb.Close()

	l := NewLocker(rdb, time.Minute, nil)
	key := "test-" + time.Now().Format("150405.000000")
	release, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	if _, err := l.Acquire(waitCtx, key); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("second Acquire: want=DeadlineExceeded got=%v", err)
	}

	release()
	again, err := l.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("Acquire after release: %v", err)
	}
	again()
}
