package middleware

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	testLoanID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testReqID  = "cccccccccccccccccccccccccccccccc"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// newGuardedEcho wires the middleware in front of the mutating
// repayment route plus a read route for the bypass test.
func newGuardedEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(Idempotency(rdb, ttl))
	e.POST("/loans/:loan_id/repayments", handler)
	e.GET("/loans/:loan_id", handler)
	return e
}

func serve(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func freshHeaders() map[string]string {
	return map[string]string{
		"X-Request-Id": testReqID,
		"X-Request-At": time.Now().UTC().Format(time.RFC3339),
	}
}

func repayPath() string { return "/loans/" + testLoanID + "/repayments" }

func TestIdempotency_BypassOnGet(t *testing.T) {
	rdb := newTestRedis(t)
	e := newGuardedEcho(rdb, time.Minute, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "active"})
	})

	// reads need no idempotency headers
	rec := serve(t, e, http.MethodGet, "/loans/"+testLoanID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestIdempotency_HeaderValidation(t *testing.T) {
	rdb := newTestRedis(t)
	e := newGuardedEcho(rdb, time.Minute, func(c echo.Context) error {
		t.Fatalf("handler must not run on a rejected request")
		return nil
	})

	tests := []struct {
		name string
		hdr  map[string]string
	}{
		{"missing request id", map[string]string{
			"X-Request-At": time.Now().UTC().Format(time.RFC3339),
		}},
		{"malformed request id", map[string]string{
			"X-Request-Id": "NOT-VALID",
			"X-Request-At": time.Now().UTC().Format(time.RFC3339),
		}},
		{"missing request at", map[string]string{
			"X-Request-Id": testReqID,
		}},
		{"naive request at", map[string]string{
			"X-Request-Id": testReqID,
			"X-Request-At": "2025-09-05T10:00:00",
		}},
		{"skewed request at", map[string]string{
			"X-Request-Id": testReqID,
			"X-Request-At": time.Now().UTC().Add(-maxClockSkew - time.Minute).Format(time.RFC3339),
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, e, http.MethodPost, repayPath(), strings.NewReader(`{"amount":100}`), tc.hdr)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestIdempotency_ReplayOnRetry(t *testing.T) {
	rdb := newTestRedis(t)
	calls := 0
	e := newGuardedEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusCreated, map[string]any{"call": calls})
	})

	hdr := freshHeaders()
	body := `{"amount":1032.80}`

	rec1 := serve(t, e, http.MethodPost, repayPath(), strings.NewReader(body), hdr)
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request: status = %d, want 201 (body %s)", rec1.Code, rec1.Body.String())
	}

	// retry with the same id and body replays the stored response
	// without applying the payment again
	rec2 := serve(t, e, http.MethodPost, repayPath(), strings.NewReader(body), hdr)
	if rec2.Code != http.StatusCreated {
		t.Fatalf("retry: status = %d, want 201 (body %s)", rec2.Code, rec2.Body.String())
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func TestIdempotency_DistinctRequestIDsBothApply(t *testing.T) {
	rdb := newTestRedis(t)
	calls := 0
	e := newGuardedEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusCreated, map[string]any{"call": calls})
	})

	body := `{"amount":100}`
	for i := 0; i < 2; i++ {
		hdr := map[string]string{
			"X-Request-Id": fmt.Sprintf("%032d", i),
			"X-Request-At": time.Now().UTC().Format(time.RFC3339),
		}
		rec := serve(t, e, http.MethodPost, repayPath(), strings.NewReader(body), hdr)
		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: status = %d, want 201", i, rec.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("handler ran %d times, want 2", calls)
	}
}

func TestIdempotency_ConflictWhileInProgress(t *testing.T) {
	rdb := newTestRedis(t)
	e := newGuardedEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		t.Fatalf("handler must not run while the first attempt holds the lock")
		return nil
	})

	body := []byte(`{"amount":100}`)
	key := buildKey(http.MethodPost, "/loans/:loan_id/repayments", testLoanID, testReqID)
	entry := idempEntry{
		InProgress:  true,
		BodySHA256:  bodyHash(body),
		RequestID:   testReqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if ok, err := provisionalSet(context.Background(), rdb, key, entry); err != nil || !ok {
		t.Fatalf("seed provisional entry: ok=%v err=%v", ok, err)
	}

	rec := serve(t, e, http.MethodPost, repayPath(), bytes.NewReader(body), freshHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestIdempotency_ConflictOnReusedIDWithDifferentBody(t *testing.T) {
	rdb := newTestRedis(t)
	e := newGuardedEcho(rdb, 2*time.Minute, func(c echo.Context) error {
		t.Fatalf("handler must not run on a reused request id")
		return nil
	})

	key := buildKey(http.MethodPost, "/loans/:loan_id/repayments", testLoanID, testReqID)
	final := idempEntry{
		InProgress:  false,
		Code:        http.StatusCreated,
		Body:        []byte(`{"repayment_id":"x"}`),
		BodySHA256:  bodyHash([]byte(`{"amount":100}`)),
		RequestID:   testReqID,
		RequestAtMS: time.Now().UnixMilli(),
		CreatedAt:   time.Now().UTC(),
	}
	if err := saveFinal(context.Background(), rdb, key, final, 5*time.Minute); err != nil {
		t.Fatalf("seed final entry: %v", err)
	}

	rec := serve(t, e, http.MethodPost, repayPath(), strings.NewReader(`{"amount":200}`), freshHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestIdempotency_StoreUnavailable(t *testing.T) {
	// closed port: SetNX fails fast instead of waiting out the context
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	e := newGuardedEcho(rdb, time.Minute, func(c echo.Context) error {
		t.Fatalf("handler must not run without the idempotency store")
		return nil
	})

	rec := serve(t, e, http.MethodPost, repayPath(), strings.NewReader(`{}`), freshHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503 (body %s)", rec.Code, rec.Body.String())
	}
}
