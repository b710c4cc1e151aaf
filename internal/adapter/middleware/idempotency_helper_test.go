package middleware

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStore(t *testing.T) (*miniredis.Miniredis, store) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, store{rdb: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
}

func Test_bodyHash_IgnoresJSONWhitespace(t *testing.T) {
	a := bodyHash([]byte(`{"amount":"150.00","quantity":1}`))
	b := bodyHash([]byte("{\n  \"amount\": \"150.00\",\n  \"quantity\": 1\n}"))
	if a != b {
		t.Fatalf("whitespace changed the hash: %s vs %s", a, b)
	}
	if a == bodyHash([]byte(`{"amount":"150.01","quantity":1}`)) {
		t.Fatal("different amounts must hash differently")
	}
	// non-JSON bodies are hashed as-is
	if bodyHash([]byte("a b")) == bodyHash([]byte("ab")) {
		t.Fatal("raw bodies must not be normalised")
	}
	if len(a) != 64 {
		t.Fatalf("want hex sha256, got %q", a)
	}
}

func Test_nowUTC(t *testing.T) {
	u := nowUTC()
	if u.Location() != time.UTC {
		t.Fatalf("nowUTC must be UTC, got %v", u.Location())
	}
	if d := time.Since(u); d < 0 || d > 2*time.Second {
		t.Fatalf("nowUTC too far from now: %v", d)
	}
}

func Test_storeKey(t *testing.T) {
	st := store{}
	actor, req := strings.Repeat("b", 32), strings.Repeat("a", 32)

	k := st.key("POST", "/requests/r1/cancel", actor, req)
	if want := "idemp:registrar:post:/requests/r1/cancel:" + actor + ":" + req; k != want {
		t.Fatalf("key = %q, want %q", k, want)
	}
	if k == st.key("POST", "/requests/r2/cancel", actor, req) {
		t.Fatal("different resources must not share a key")
	}
	if k == st.key("POST", "/requests/r1/cancel", strings.Repeat("c", 32), req) {
		t.Fatal("different actors must not share a key")
	}
}

func Test_validReqID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88", true},
		{strings.Repeat("a", 32), true},
		{" 3f9a6a1b3d544fbe8b3a6b3e8d6b2c88 ", true},
		{"", false},
		{"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", false},
		{"3f9a6a1b3d544fbe8b3a6b3e8d6b2c8", false},
		{"3f9a6a1b3d544fbe8b3a6b3e8d6b2c880", false},
		{"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", false},
		{"3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88", false},
		{"3f9a6a1b-3d54-9fbe-8b3a-6b3e8d6b2c88", false},
	}
	for _, tc := range cases {
		if got := validReqID(tc.id); got != tc.want {
			t.Errorf("validReqID(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func Test_parseAxRequestAt(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"epoch seconds", strconv.FormatInt(now.Unix(), 10), time.Unix(now.Unix(), 0).UTC()},
		{"epoch millis", strconv.FormatInt(now.UnixMilli(), 10), time.UnixMilli(now.UnixMilli()).UTC()},
		{"rfc3339 offset", "2025-09-05T10:00:00+07:00", time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC)},
		{"rfc3339 Z", "2025-09-05T03:00:00Z", time.Date(2025, 9, 5, 3, 0, 0, 0, time.UTC)},
		{"rfc3339 nano", "2025-09-05T03:00:00.123456789Z", time.Date(2025, 9, 5, 3, 0, 0, 123456789, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseAxRequestAt(tc.raw)
			if err != nil {
				t.Fatalf("parse %q: %v", tc.raw, err)
			}
			if !got.Equal(tc.want) || got.Location() != time.UTC {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}

	for _, raw := range []string{"", "not-a-time", "2025-09-05T10:00:00", "1736123456abc"} {
		if _, err := parseAxRequestAt(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func Test_store_AcquireLoadRelease(t *testing.T) {
	mr, st := newStore(t)
	ctx := context.Background()
	key := st.key("POST", "/requests", strings.Repeat("b", 32), strings.Repeat("a", 32))
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash([]byte(`{"a":1}`)),
		RequestID:   strings.Repeat("a", 32),
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   nowUTC(),
	}

	ok, err := st.acquire(ctx, key, entry)
	if err != nil || !ok {
		t.Fatalf("acquire 1: ok=%v err=%v", ok, err)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > provisionalLockTTL {
		t.Fatalf("provisional TTL not set correctly: %v", ttl)
	}
	if ok, err = st.acquire(ctx, key, entry); err != nil || ok {
		t.Fatalf("acquire 2 should lose: ok=%v err=%v", ok, err)
	}

	got, err := st.load(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.InProgress || got.RequestID != entry.RequestID || got.BodySHA256 != entry.BodySHA256 {
		t.Fatalf("loaded entry mismatch: %+v vs %+v", got, entry)
	}

	if err := st.release(ctx, key); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := st.load(ctx, key); !errors.Is(err, redis.Nil) {
		t.Fatalf("load after release: want redis.Nil, got %v", err)
	}
	if ok, _ := st.acquire(ctx, key, entry); !ok {
		t.Fatal("acquire after release should win")
	}
}

func Test_store_CompleteKeepsResponse(t *testing.T) {
	mr, st := newStore(t)
	ctx := context.Background()
	key := st.key("POST", "/requests", strings.Repeat("b", 32), strings.Repeat("a", 32))

	final := idempEntry{
		Code:       201,
		Body:       []byte(`{"ok":true}`),
		BodySHA256: bodyHash([]byte(`{}`)),
		RequestID:  strings.Repeat("a", 32),
		CreatedAt:  nowUTC(),
	}
	if err := st.complete(ctx, key, final, 5*time.Second); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > 5*time.Second {
		t.Fatalf("final TTL out of range: %v", ttl)
	}

	got, err := st.load(ctx, key)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Code != 201 || string(got.Body) != `{"ok":true}` || got.InProgress {
		t.Fatalf("final entry mismatch: %+v", got)
	}

	mr.FastForward(6 * time.Second)
	if mr.Exists(key) {
		t.Fatal("final entry should expire")
	}
}

func Test_store_LoadCorruptEntry(t *testing.T) {
	mr, st := newStore(t)
	key := keyPrefix + "post:/requests:x:y"
	_ = mr.Set(key, "{not json")
	if _, err := st.load(context.Background(), key); err == nil {
		t.Fatal("expected decode error")
	}
}
