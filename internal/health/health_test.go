package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serve(t *testing.T, h *Handler, path string) (*http.Response, report) {
	t.Helper()
	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	res := rec.Result()
	var rep report
	if err := json.NewDecoder(res.Body).Decode(&rep); err != nil {
		t.Fatalf("decode %s response: %v", path, err)
	}
	return res, rep
}

func TestHealthz_AlwaysOK(t *testing.T) {
	t.Parallel()

	res, rep := serve(t, New(), "/healthz")
	if res.StatusCode != http.StatusOK || rep.Status != "ok" {
		t.Errorf("status=%d body=%+v, want 200 ok", res.StatusCode, rep)
	}
}

func TestReadyz_AllChecksPass(t *testing.T) {
	t.Parallel()

	h := New(
		Check{Name: "pipeline", Probe: func(context.Context) error { return nil }},
		Check{Name: "asr", Probe: func(context.Context) error { return nil }},
	)
	res, rep := serve(t, h, "/readyz")
	if res.StatusCode != http.StatusOK {
		t.Errorf("status=%d, want 200", res.StatusCode)
	}
	if rep.Checks["pipeline"] != "ok" || rep.Checks["asr"] != "ok" {
		t.Errorf("checks=%v, want both ok", rep.Checks)
	}
}

func TestReadyz_FailingCheck(t *testing.T) {
	t.Parallel()

	h := New(
		Check{Name: "pipeline", Probe: func(context.Context) error { return nil }},
		Check{Name: "asr", Probe: func(context.Context) error { return errors.New("server unreachable") }},
	)
	res, rep := serve(t, h, "/readyz")
	if res.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status=%d, want 503", res.StatusCode)
	}
	if rep.Status != "fail" {
		t.Errorf("status=%q, want fail", rep.Status)
	}
	if rep.Checks["asr"] != "fail: server unreachable" {
		t.Errorf("asr check=%q", rep.Checks["asr"])
	}
	if rep.Checks["pipeline"] != "ok" {
		t.Errorf("pipeline check=%q, want ok — all checks run even after a failure", rep.Checks["pipeline"])
	}
}

func TestReadyz_ProbeSeesCancellableContext(t *testing.T) {
	t.Parallel()

	h := New(Check{Name: "slow", Probe: func(ctx context.Context) error {
		if ctx.Done() == nil {
			return errors.New("no deadline")
		}
		return nil
	}})
	res, _ := serve(t, h, "/readyz")
	if res.StatusCode != http.StatusOK {
		t.Errorf("status=%d, want 200", res.StatusCode)
	}
}
