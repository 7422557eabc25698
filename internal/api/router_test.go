package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gas-arena/internal/game"
)

// stubState implements StateSource for router tests.
type stubState struct {
	snap *game.MatchSnapshot
}

func (s *stubState) Snapshot() *game.MatchSnapshot { return s.snap }

func newTestRouter(t *testing.T, state StateSource, rl *RateLimitConfig) http.Handler {
	t.Helper()
	if rl == nil {
		rl = &RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000}
	}
	limiter := NewIPRateLimiter(*rl)
	t.Cleanup(limiter.Stop)
	return NewRouter(RouterConfig{State: state, RateLimiter: limiter, DisableLogging: true})
}

func TestGetState(t *testing.T) {
	state := &stubState{snap: &game.MatchSnapshot{
		MatchID:    "m1",
		TickNumber: 42,
		AliveCount: 2,
		Players: []game.PlayerSnapshot{
			{Name: "alice"},
			{Name: "bob"},
		},
	}}
	ts := httptest.NewServer(newTestRouter(t, state, nil))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/state")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var got game.MatchSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.MatchID != "m1" || got.TickNumber != 42 || len(got.Players) != 2 {
		t.Errorf("expected the published snapshot, got %+v", got)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		over   bool
		status int
		want   string
	}{
		{"running", false, http.StatusOK, "ok"},
		{"over", true, http.StatusServiceUnavailable, "ending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &stubState{snap: &game.MatchSnapshot{MatchID: "m1", Over: tt.over}}
			rec := httptest.NewRecorder()
			newTestRouter(t, state, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, rec.Code)
			}
			var body healthResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if body.Status != tt.want {
				t.Errorf("expected status %q, got %q", tt.want, body.Status)
			}
		})
	}
}

func TestRateLimitRejects(t *testing.T) {
	state := &stubState{snap: &game.MatchSnapshot{}}
	router := newTestRouter(t, state, &RateLimitConfig{RequestsPerSecond: 1, Burst: 2})

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Errorf("expected the burst allowed, got %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected 429 after the burst, got %d", codes[2])
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected another IP unaffected, got %d", rec.Code)
	}
}

func TestPlayUnroutedWithoutHub(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t, &stubState{snap: &game.MatchSnapshot{}}, nil).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/play", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "192.168.1.5:5000", "192.168.1.5"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "10.0.0.1:80", "1.2.3.4"},
		{"real ip", map[string]string{"X-Real-IP": " 5.6.7.8 "}, "10.0.0.1:80", "5.6.7.8"},
		{"no port", nil, "unix", "unix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := GetClientIP(req); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestConnectionLimiter(t *testing.T) {
	l := NewConnectionLimiter(2)
	if !l.Acquire("a") || !l.Acquire("a") {
		t.Fatal("expected two slots")
	}
	if l.Acquire("a") {
		t.Error("expected the third connection refused")
	}
	if !l.Acquire("b") {
		t.Error("expected other addresses unaffected")
	}
	l.Release("a")
	if l.Count("a") != 1 || !l.Acquire("a") {
		t.Error("expected a released slot reusable")
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://localhost:*", "https://arena.example"})
	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"http://localhost:5173", true},
		{"https://arena.example", true},
		{"https://evil.example", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/play", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := check(req); got != tt.want {
			t.Errorf("origin %q: expected %v, got %v", tt.origin, tt.want, got)
		}
	}
}

func TestDebugServerForcedToLoopback(t *testing.T) {
	tests := []struct {
		addr     string
		external bool
		want     string
	}{
		{"localhost:6060", false, "localhost:6060"},
		{"0.0.0.0:7070", false, "127.0.0.1:7070"},
		{"0.0.0.0:7070", true, "0.0.0.0:7070"},
	}
	for _, tt := range tests {
		srv := NewDebugServer(debugConfig(tt.addr, tt.external))
		if srv.Addr != tt.want {
			t.Errorf("%s (external=%v): expected %s, got %s", tt.addr, tt.external, tt.want, srv.Addr)
		}
	}
	if NewDebugServer(debugConfig("", false)) != nil {
		t.Error("expected no server for an empty address")
	}
}
