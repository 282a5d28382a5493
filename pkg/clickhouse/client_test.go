package clickhouse

import (
	"strings"
	"testing"
	"time"
)

func TestBuildDSNNative(t *testing.T) {
	dsn := buildDSN(ClientConfig{
		Host:        "ch",
		Port:        9000,
		Database:    "walksim",
		User:        "default",
		Password:    "p@ss",
		DialTimeout: 5 * time.Second,
		MaxExecTime: time.Minute,
	})
	if !strings.HasPrefix(dsn, "clickhouse://default:p%40ss@ch:9000/walksim?") {
		t.Fatalf("unexpected dsn prefix: %s", dsn)
	}
	if !strings.Contains(dsn, "dial_timeout=5s") || !strings.Contains(dsn, "max_execution_time=60") {
		t.Fatalf("missing settings: %s", dsn)
	}
	if strings.Contains(dsn, "async_insert") {
		t.Fatalf("async insert should be off: %s", dsn)
	}
}

func TestBuildDSNHTTPAsync(t *testing.T) {
	dsn := buildDSN(ClientConfig{
		Host:         "ch",
		Port:         8123,
		Database:     "walksim",
		UseHTTP:      true,
		AsyncInsert:  true,
		WaitForAsync: true,
	})
	if !strings.HasPrefix(dsn, "http://") {
		t.Fatalf("expected http scheme: %s", dsn)
	}
	if !strings.Contains(dsn, "async_insert=1") || !strings.Contains(dsn, "wait_for_async_insert=1") {
		t.Fatalf("missing async settings: %s", dsn)
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Fatalf("expected error without host")
	}
}
