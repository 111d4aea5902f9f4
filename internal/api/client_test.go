package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/famfin/internal/auth"
	"github.com/theirongolddev/famfin/internal/logging"
	"github.com/theirongolddev/famfin/internal/model"
	"github.com/theirongolddev/famfin/internal/store"
)

func newTestClient(t *testing.T, h http.Handler) (*Client, *auth.Store) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	creds := auth.NewStore(store.NewMemory(), logging.Discard())
	return New(Options{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}, creds, logging.Discard()), creds
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// refreshHandler accepts refresh token "R1" and issues access token "A2".
func refreshHandler(calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["refresh"] != "R1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": "A2"})
	}
}

func TestRefreshThenRetrySucceeds(t *testing.T) {
	var goalCalls, refreshCalls atomic.Int32
	var retryRequestIDs []string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/refresh/", refreshHandler(&refreshCalls))
	mux.HandleFunc("GET /api/goals/", func(w http.ResponseWriter, r *http.Request) {
		goalCalls.Add(1)
		retryRequestIDs = append(retryRequestIDs, r.Header.Get("X-Request-ID"))
		if r.Header.Get("Authorization") != "Bearer A2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "name": "Vacation", "amount": "500.00"}})
	})

	c, creds := newTestClient(t, mux)
	ctx := context.Background()
	_ = creds.SetTokens(ctx, "A1", "R1")

	goals, err := c.Goals(ctx)
	if err != nil {
		t.Fatalf("Goals: %v", err)
	}
	if len(goals) != 1 || goals[0].Amount != 500 {
		t.Fatalf("goals = %+v", goals)
	}
	if goalCalls.Load() != 2 || refreshCalls.Load() != 1 {
		t.Fatalf("goal calls = %d, refresh calls = %d; want 2, 1", goalCalls.Load(), refreshCalls.Load())
	}
	if tok, _ := creds.AccessToken(ctx); tok != "A2" {
		t.Fatalf("access token = %q, want A2", tok)
	}
	if tok, _ := creds.RefreshToken(ctx); tok != "R1" {
		t.Fatalf("refresh token = %q, want R1", tok)
	}
	if retryRequestIDs[0] == "" || retryRequestIDs[0] != retryRequestIDs[1] {
		t.Fatalf("retry request IDs = %v, want identical", retryRequestIDs)
	}
	if c.RefreshState() != RefreshIdle {
		t.Fatalf("state = %v, want idle", c.RefreshState())
	}
}

func TestSecond401ClearsCredentials(t *testing.T) {
	var goalCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/refresh/", refreshHandler(&refreshCalls))
	mux.HandleFunc("GET /api/goals/", func(w http.ResponseWriter, r *http.Request) {
		goalCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "nope"})
	})

	c, creds := newTestClient(t, mux)
	ctx := context.Background()
	_ = creds.SetTokens(ctx, "A1", "R1")

	_, err := c.Goals(ctx)
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
	if goalCalls.Load() != 2 {
		t.Fatalf("goal calls = %d, want exactly 2", goalCalls.Load())
	}
	if creds.IsLoggedIn(ctx) {
		t.Fatal("credentials not cleared")
	}
	if _, ok := creds.RefreshToken(ctx); ok {
		t.Fatal("refresh token not cleared")
	}
}

func TestRejectedRefreshClearsCredentials(t *testing.T) {
	var goalCalls, refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/refresh/", refreshHandler(&refreshCalls))
	mux.HandleFunc("GET /api/profile/", func(w http.ResponseWriter, r *http.Request) {
		goalCalls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
	})

	c, creds := newTestClient(t, mux)
	ctx := context.Background()
	_ = creds.SetTokens(ctx, "A1", "stale")

	_, err := c.Profile(ctx)
	if !IsAuth(err) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
	if goalCalls.Load() != 1 {
		t.Fatalf("request retried after failed refresh: %d calls", goalCalls.Load())
	}
	if creds.IsLoggedIn(ctx) {
		t.Fatal("credentials not cleared after rejected refresh")
	}
	if c.RefreshState() != RefreshFailed {
		t.Fatalf("state = %v, want failed", c.RefreshState())
	}
}

func TestRefreshNetworkFailureKeepsCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		// Drop the connection without a response.
		conn, _, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		_ = conn.Close()
	})
	mux.HandleFunc("GET /api/goals/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
	})

	c, creds := newTestClient(t, mux)
	ctx := context.Background()
	_ = creds.SetTokens(ctx, "A1", "R1")

	_, err := c.Goals(ctx)
	if !IsAuth(err) {
		t.Fatalf("err = %v, want AuthenticationError", err)
	}
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want it to wrap NetworkError", err)
	}
	if access, ok := creds.AccessToken(ctx); !ok || access != "A1" {
		t.Fatalf("access token = %q, %v; want A1 kept", access, ok)
	}
	if refresh, ok := creds.RefreshToken(ctx); !ok || refresh != "R1" {
		t.Fatalf("refresh token = %q, %v; want R1 kept", refresh, ok)
	}
}

func TestCanceledCallerDoesNotFailSharedRefresh(t *testing.T) {
	var refreshCalls atomic.Int32
	refreshStarted := make(chan struct{})
	var once sync.Once
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() { close(refreshStarted) })
		time.Sleep(300 * time.Millisecond)
		refreshHandler(&refreshCalls)(w, r)
	})
	mux.HandleFunc("GET /api/goals/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer A2" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
			return
		}
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "name": "Vacation", "amount": "500.00"}})
	})

	c, creds := newTestClient(t, mux)
	_ = creds.SetTokens(context.Background(), "A1", "R1")

	impatient, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	impatientErr := make(chan error, 1)
	go func() {
		_, err := c.Goals(impatient)
		impatientErr <- err
	}()

	<-refreshStarted
	goals, err := c.Goals(context.Background())
	if err != nil {
		t.Fatalf("patient caller: %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("goals = %+v", goals)
	}

	if err := <-impatientErr; !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("impatient caller err = %v, want deadline exceeded", err)
	}
	if refreshCalls.Load() != 1 {
		t.Fatalf("refresh calls = %d, want 1", refreshCalls.Load())
	}
	if tok, _ := creds.AccessToken(context.Background()); tok != "A2" {
		t.Fatalf("access token = %q, want A2", tok)
	}
}

func TestMissingRefreshToken(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/refresh/", refreshHandler(&refreshCalls))
	mux.HandleFunc("GET /api/budgets/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
	})

	c, creds := newTestClient(t, mux)
	ctx := context.Background()
	_ = creds.SetAccessToken(ctx, "A1")

	_, err := c.Budgets(ctx)
	if !errors.Is(err, ErrNoRefreshToken) {
		t.Fatalf("err = %v, want ErrNoRefreshToken", err)
	}
	if refreshCalls.Load() != 0 {
		t.Fatal("refresh endpoint called without a refresh token")
	}
	if creds.IsLoggedIn(ctx) {
		t.Fatal("credentials not cleared")
	}
}

func TestConcurrentRefreshIsShared(t *testing.T) {
	const n = 5
	var refreshCalls, unauthorized atomic.Int32
	release := make(chan struct{})
	var once sync.Once

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		<-release
		refreshHandler(&refreshCalls)(w, r)
	})
	mux.HandleFunc("GET /api/streaks/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer A2" {
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "count": 3}})
			return
		}
		if unauthorized.Add(1) == n {
			once.Do(func() {
				go func() {
					time.Sleep(100 * time.Millisecond)
					close(release)
				}()
			})
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "expired"})
	})

	c, creds := newTestClient(t, mux)
	ctx := context.Background()
	_ = creds.SetTokens(ctx, "A1", "R1")

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Streaks(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("Streaks: %v", err)
		}
	}
	if got := refreshCalls.Load(); got >= n {
		t.Fatalf("refresh calls = %d, want fewer than %d", got, n)
	}
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	var gotPath string
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	c, creds := newTestClient(t, mux)
	ctx := context.Background()

	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "api/profile/", Header: http.Header{"X-Trace": {"t1"}}})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if gotPath != "/api/profile/" {
		t.Fatalf("path = %q, want /api/profile/", gotPath)
	}
	if got.Get("Content-Type") != "application/json" || got.Get("X-Trace") != "t1" {
		t.Fatalf("headers = %v", got)
	}
	if got.Get("Authorization") != "" {
		t.Fatalf("Authorization sent without token: %q", got.Get("Authorization"))
	}

	_ = creds.SetTokens(ctx, "A1", "R1")
	if _, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/api/profile/", Header: http.Header{"Content-Type": {"text/plain"}}}); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if got.Get("Authorization") != "Bearer A1" {
		t.Fatalf("Authorization = %q, want Bearer A1", got.Get("Authorization"))
	}
	if got.Get("Content-Type") != "text/plain" {
		t.Fatalf("caller Content-Type not honored: %q", got.Get("Content-Type"))
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	creds := auth.NewStore(store.NewMemory(), logging.Discard())
	c := New(Options{BaseURL: url, Timeout: time.Second}, creds, logging.Discard())

	_, err := c.Expenses(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want NetworkError", err)
	}
}

func TestLoginThenAuthenticatedRequest(t *testing.T) {
	var authHeader string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token/", func(w http.ResponseWriter, r *http.Request) {
		var in model.Credentials
		_ = json.NewDecoder(r.Body).Decode(&in)
		if r.Header.Get("Authorization") != "" {
			t.Errorf("login carried Authorization header")
		}
		if in.Username != "alice" || in.Password != "secret1" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "No active account found with the given credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"access": "A1", "refresh": "R1"})
	})
	mux.HandleFunc("GET /api/goals/", func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []any{})
	})

	c, creds := newTestClient(t, mux)
	ctx := context.Background()

	_, err := c.Login(ctx, model.Credentials{Username: "alice", Password: "wrong"})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Message != "No active account found with the given credentials" {
		t.Fatalf("bad login err = %v", err)
	}
	if creds.IsLoggedIn(ctx) {
		t.Fatal("logged in after failed login")
	}

	if _, err := c.Login(ctx, model.Credentials{Username: "alice", Password: "secret1"}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok, _ := creds.AccessToken(ctx); tok != "A1" {
		t.Fatalf("access = %q, want A1", tok)
	}
	if tok, _ := creds.RefreshToken(ctx); tok != "R1" {
		t.Fatalf("refresh = %q, want R1", tok)
	}

	if _, err := c.Goals(ctx); err != nil {
		t.Fatalf("Goals: %v", err)
	}
	if authHeader != "Bearer A1" {
		t.Fatalf("Authorization = %q, want Bearer A1", authHeader)
	}

	c.Logout(ctx)
	if c.IsLoggedIn(ctx) {
		t.Fatal("still logged in after Logout")
	}
}
