package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestRedisBlacklist(t *testing.T) {
	client, mr := setupTestRedis(t)
	bl := NewRedisBlacklist(client)
	ctx := context.Background()

	revoked, err := bl.IsRevoked(ctx, "abc")
	if err != nil || revoked {
		t.Fatalf("IsRevoked before revoke = %v, %v", revoked, err)
	}

	if err := bl.Revoke(ctx, "abc", time.Hour); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if !mr.Exists("blacklist:abc") {
		t.Fatal("expected blacklist:abc key")
	}
	if ttl := mr.TTL("blacklist:abc"); ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", ttl)
	}

	revoked, err = bl.IsRevoked(ctx, "abc")
	if err != nil || !revoked {
		t.Fatalf("IsRevoked after revoke = %v, %v", revoked, err)
	}

	mr.FastForward(2 * time.Hour)
	revoked, _ = bl.IsRevoked(ctx, "abc")
	if revoked {
		t.Error("entry should expire with the token")
	}
}

func TestNewRedisClient(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}
	defer mr.Close()

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr()+"/0")
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	client.Close()

	if _, err := NewRedisClient(context.Background(), "not a url"); err == nil {
		t.Error("expected error for invalid URL")
	}
}

func TestMemoryBlacklistExpiry(t *testing.T) {
	bl := NewMemoryBlacklist()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bl.now = func() time.Time { return now }
	ctx := context.Background()

	_ = bl.Revoke(ctx, "jti-1", time.Minute)
	if revoked, _ := bl.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatal("expected revoked")
	}

	now = now.Add(2 * time.Minute)
	if revoked, _ := bl.IsRevoked(ctx, "jti-1"); revoked {
		t.Error("expected entry to have expired")
	}
}
