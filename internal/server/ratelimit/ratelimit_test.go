package ratelimit

import (
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(cfg Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cfg.CleanupInterval = 0
	l := NewLimiter(cfg)
	l.now = clock.now
	return l, clock
}

func TestLimiter_BurstThenDeny(t *testing.T) {
	l, _ := newTestLimiter(DefaultConfig())

	for i := 0; i < 5; i++ {
		if info := l.Allow("1.2.3.4", "POST", "/api/cv/export"); !info.Allowed {
			t.Fatalf("request %d: expected allowed", i+1)
		}
	}

	info := l.Allow("1.2.3.4", "POST", "/api/cv/export")
	if info.Allowed {
		t.Fatal("expected 6th export to be denied")
	}
	if info.Limit != 30 {
		t.Errorf("expected limit 30, got %d", info.Limit)
	}
	if info.RetryAfter <= 0 || info.RetryAfter > 2*time.Second {
		t.Errorf("expected retry after about 2s, got %v", info.RetryAfter)
	}
}

func TestLimiter_Refill(t *testing.T) {
	l, clock := newTestLimiter(DefaultConfig())

	for i := 0; i < 5; i++ {
		l.Allow("c", "POST", "/api/cv/export")
	}
	if l.Allow("c", "POST", "/api/cv/export").Allowed {
		t.Fatal("expected denial with empty bucket")
	}

	// 30 per minute refills one token every two seconds
	clock.advance(2 * time.Second)
	if !l.Allow("c", "POST", "/api/cv/export").Allowed {
		t.Fatal("expected one request after refill")
	}
	if l.Allow("c", "POST", "/api/cv/export").Allowed {
		t.Fatal("expected denial after consuming the refilled token")
	}
}

func TestLimiter_ClientsAndEndpointsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(DefaultConfig())

	for i := 0; i < 5; i++ {
		l.Allow("a", "POST", "/api/cv/export")
	}
	if !l.Allow("b", "POST", "/api/cv/export").Allowed {
		t.Error("other client should not be limited")
	}
	if !l.Allow("a", "POST", "/api/sugerencias-trabajo").Allowed {
		t.Error("other endpoint should not be limited")
	}
}

func TestLimiter_PrefixRuleSharesBucket(t *testing.T) {
	l, _ := newTestLimiter(DefaultConfig())

	for i := 0; i < 5; i++ {
		l.Allow("a", "POST", "/api/cv/export/stream")
	}
	if l.Allow("a", "POST", "/api/cv/export/other").Allowed {
		t.Error("paths under the same prefix rule should share a bucket")
	}
}

func TestLimiter_UnlimitedAndDisabled(t *testing.T) {
	l, _ := newTestLimiter(DefaultConfig())
	for i := 0; i < 1000; i++ {
		if !l.Allow("a", "GET", "/health").Allowed {
			t.Fatal("health must never be limited")
		}
	}

	cfg := DefaultConfig()
	cfg.Enabled = false
	off, _ := newTestLimiter(cfg)
	for i := 0; i < 100; i++ {
		if !off.Allow("a", "POST", "/api/cv/export").Allowed {
			t.Fatal("disabled limiter must allow everything")
		}
	}
}

func TestLimiter_Whitelist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Whitelist = parseIPList("10.0.0.1, 10.0.0.2")
	l, _ := newTestLimiter(cfg)

	for i := 0; i < 50; i++ {
		if !l.Allow("10.0.0.2", "POST", "/api/cv/export").Allowed {
			t.Fatal("whitelisted client must not be limited")
		}
	}
}

func TestLimiter_Sweep(t *testing.T) {
	l, clock := newTestLimiter(DefaultConfig())
	l.Allow("a", "POST", "/api/cv/export")
	clock.advance(30 * time.Minute)
	l.Allow("b", "POST", "/api/cv/export")
	clock.advance(45 * time.Minute)

	if n := l.Sweep(time.Hour); n != 1 {
		t.Errorf("expected 1 idle bucket removed, got %d", n)
	}
	l.Stop()
	l.Stop()
}

func TestLimiter_Concurrent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rules = []Rule{{Method: "POST", Path: "/x", Limit: 100, Window: time.Hour}}
	l, _ := newTestLimiter(cfg)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("a", "POST", "/x").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if allowed != 100 {
		t.Errorf("expected exactly 100 allowed, got %d", allowed)
	}
}

func TestConfig_Match(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		method, path string
		wantLimit    int
		wantPath     string
	}{
		{"POST", "/api/cv/export", 30, "/api/cv/export"},
		{"POST", "/api/cv/export/stream", 30, "/api/cv/export/"},
		{"GET", "/api/cv/export", 600, "*"},
		{"GET", "/metrics", 0, "/metrics"},
		{"GET", "/api/templates", 600, "*"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := cfg.Match(tt.method, tt.path)
			if got.Limit != tt.wantLimit || got.Path != tt.wantPath {
				t.Errorf("Match(%s %s) = %+v", tt.method, tt.path, got)
			}
		})
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("CV_RATE_LIMIT_ENABLED", "false")
	t.Setenv("CV_RATE_LIMIT_DEFAULT_LIMIT", "5")
	t.Setenv("CV_RATE_LIMIT_DEFAULT_WINDOW", "10s")
	t.Setenv("CV_RATE_LIMIT_WHITELIST", "127.0.0.1")

	cfg := LoadConfig()
	if cfg.Enabled {
		t.Error("expected disabled")
	}
	if cfg.DefaultLimit != 5 || cfg.DefaultWindow != 10*time.Second {
		t.Errorf("unexpected defaults: %d %v", cfg.DefaultLimit, cfg.DefaultWindow)
	}
	if !cfg.Whitelist["127.0.0.1"] {
		t.Error("expected whitelisted localhost")
	}
}
