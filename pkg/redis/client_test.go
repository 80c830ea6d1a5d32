package redis

import (
	"context"
	"fmt"
	"path"
	"sort"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestSetGetDeleteLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	if err := client.Set(ctx, "pfm:metric:a", []byte(`{"value":1}`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	raw, err := client.GetBytes(ctx, "pfm:metric:a")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(raw) != `{"value":1}` {
		t.Fatalf("unexpected payload %q", raw)
	}
	if mock.ttls["pfm:metric:a"] != time.Minute {
		t.Fatalf("expected ttl to be forwarded, got %v", mock.ttls["pfm:metric:a"])
	}

	exists, err := client.Exists(ctx, "pfm:metric:a")
	if err != nil || !exists {
		t.Fatalf("expected key to exist, exists=%v err=%v", exists, err)
	}

	deleted, err := client.DeleteKeys(ctx, "pfm:metric:a", "pfm:metric:missing")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted key, got %d", deleted)
	}
	if _, err := client.GetBytes(ctx, "pfm:metric:a"); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}

func TestScanKeysFollowsCursor(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.pageSize = 2
	client := &Client{store: mock}

	for _, key := range []string{"pfm:metric:a:1", "pfm:metric:a:2", "pfm:metric:a:3", "pfm:metric:b:1"} {
		mock.data[key] = "x"
	}

	keys, err := client.ScanKeys(ctx, "pfm:metric:a:*")
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	sort.Strings(keys)
	if len(keys) != 3 || keys[0] != "pfm:metric:a:1" || keys[2] != "pfm:metric:a:3" {
		t.Fatalf("unexpected keys %v", keys)
	}
	if mock.scanCalls < 2 {
		t.Fatalf("expected paginated scan, got %d calls", mock.scanCalls)
	}
}

func TestUsedMemoryParsesInfo(t *testing.T) {
	mock := newMockCmdable()
	mock.info = "# Memory\r\nused_memory:1048576\r\nused_memory_human:1.00M\r\n"
	client := &Client{store: mock}

	used, err := client.UsedMemory(context.Background())
	if err != nil {
		t.Fatalf("used memory failed: %v", err)
	}
	if used != 1048576 {
		t.Fatalf("expected 1048576 got %d", used)
	}

	if _, err := parseUsedMemory("# Memory\r\n"); err == nil {
		t.Fatal("expected error when used_memory missing")
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.LockKey("warm-worker:prod"); got != "pfm:lock:warm-worker:prod" {
		t.Fatalf("unexpected lock key %s", got)
	}
	if got := client.buildKey("lock", ""); got != "pfm:lock" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	if _, err := client.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := client.ScanKeys(context.Background(), "*"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}

type mockCmdable struct {
	data      map[string]string
	ttls      map[string]time.Duration
	info      string
	pageSize  int
	scanCalls int
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:     make(map[string]string),
		ttls:     make(map[string]time.Duration),
		pageSize: 100,
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			removed++
		}
		delete(m.data, key)
	}
	return redis.NewIntResult(removed, nil)
}

func (m *mockCmdable) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	var found int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			found++
		}
	}
	return redis.NewIntResult(found, nil)
}

func (m *mockCmdable) Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd {
	m.scanCalls++
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		if ok, _ := path.Match(match, key); ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	start := int(cursor)
	end := start + m.pageSize
	if end >= len(keys) {
		return redis.NewScanCmdResult(keys[start:], 0, nil)
	}
	return redis.NewScanCmdResult(keys[start:end], uint64(end), nil)
}

func (m *mockCmdable) Info(ctx context.Context, section ...string) *redis.StringCmd {
	return redis.NewStringResult(m.info, nil)
}
