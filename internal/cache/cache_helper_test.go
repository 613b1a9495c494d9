package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestManager(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client), mr
}

func TestCacheHelper_SetGetDelete(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	if err := cm.Permission.Set(ctx, "role:agent", []string{"Leads"}, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists("perm:role:agent") {
		t.Fatalf("expected prefixed key perm:role:agent to exist")
	}

	var got []string
	if err := cm.Permission.Get(ctx, "role:agent", &got); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 1 || got[0] != "Leads" {
		t.Errorf("Get() = %v, want [Leads]", got)
	}

	InvalidateRolePermissions(ctx, cm, "agent")
	if err := cm.Permission.Get(ctx, "role:agent", &got); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get() after invalidate error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelper_TTL(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	if err := cm.Permission.Set(ctx, "role:finance", 1, PermissionCacheConfig.TTL); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	mr.FastForward(PermissionCacheConfig.TTL + time.Second)

	var v int
	if err := cm.Permission.Get(ctx, "role:finance", &v); !errors.Is(err, ErrCacheNotFound) {
		t.Errorf("Get() after ttl error = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheOrExecute(t *testing.T) {
	cm, _ := newTestManager(t)
	ctx := context.Background()

	calls := 0
	fetch := func() (interface{}, error) {
		calls++
		return []int{1, 2}, nil
	}

	for i := 0; i < 3; i++ {
		var got []int
		if err := cm.Permission.CacheOrExecute(ctx, "k", &got, time.Minute, fetch); err != nil {
			t.Fatalf("CacheOrExecute() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("CacheOrExecute() = %v", got)
		}
	}
	if calls != 1 {
		t.Errorf("fetch called %d times, want 1", calls)
	}
}

func TestCacheOrExecute_FetchErrorIsReturnedUnchanged(t *testing.T) {
	cm, _ := newTestManager(t)
	sentinel := errors.New("db down")

	var got []int
	err := cm.Permission.CacheOrExecute(context.Background(), "k", &got, time.Minute, func() (interface{}, error) {
		return nil, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("error = %v, want %v", err, sentinel)
	}
}

func TestInvalidateAllPermissions(t *testing.T) {
	cm, mr := newTestManager(t)
	ctx := context.Background()

	for _, role := range []string{"agent", "finance", "office_pune"} {
		if err := cm.Permission.Set(ctx, PermissionKey(role), true, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if err := cm.Identity.Set(ctx, "token:x", true, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	InvalidateAllPermissions(ctx, cm)

	if keys := mr.Keys(); len(keys) != 1 || keys[0] != "identity:token:x" {
		t.Errorf("remaining keys = %v, want only identity:token:x", keys)
	}
}

func TestNilClientDegradesGracefully(t *testing.T) {
	cm := NewCacheManager(nil)
	ctx := context.Background()

	if err := cm.Permission.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Errorf("Set() with nil client error = %v", err)
	}
	var v int
	if err := cm.Permission.Get(ctx, "k", &v); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("Get() with nil client error = %v, want ErrCacheNotAvailable", err)
	}
	if err := cm.HealthCheck(ctx); !errors.Is(err, ErrCacheNotAvailable) {
		t.Errorf("HealthCheck() with nil client error = %v", err)
	}
}
