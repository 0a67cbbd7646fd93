package db

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestPoolStats_JSON(t *testing.T) {
	stats := PoolStats{
		TotalConns:      1,
		IdleConns:       1,
		MaxConns:        4,
		AcquireCount:    50,
		AcquireDuration: "250ms",
		Healthy:         true,
	}

	data, err := json.Marshal(stats)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{`"total_conns":1`, `"max_conns":4`, `"acquire_duration":"250ms"`, `"healthy":true`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("expected %s in %s", field, data)
		}
	}
}

func TestNewPool_InvalidURL(t *testing.T) {
	_, err := NewPool(context.Background(), "postgres://%zz", 4, 1)
	if err == nil {
		t.Fatal("expected error for malformed database url")
	}
	if !strings.Contains(err.Error(), "parse database url") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestCheck_LiveDatabase(t *testing.T) {
	url := os.Getenv("MEDMISSION_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MEDMISSION_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, url, 2, 1)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Close()

	stats, err := Check(ctx, pool)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !stats.Healthy {
		t.Error("expected healthy pool")
	}
	if stats.MaxConns != 2 {
		t.Errorf("expected MaxConns 2, got %d", stats.MaxConns)
	}
}
