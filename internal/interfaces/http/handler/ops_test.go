package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/scheduler"
	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockJobs struct {
	mock.Mock
}

func (m *mockJobs) RunNow(ctx context.Context, name string) (scheduler.JobRun, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(scheduler.JobRun), args.Error(1)
}

func (m *mockJobs) LastRuns() []scheduler.JobRun {
	return m.Called().Get(0).([]scheduler.JobRun)
}

func newEngine(h *OpsHandler) *gin.Engine {
	engine := gin.New()
	h.RegisterProbes(engine)
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func do(engine *gin.Engine, method, path string) (*httptest.ResponseRecorder, dto.Response) {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestOpsHandler_Health(t *testing.T) {
	w, resp := do(newEngine(NewOpsHandler("corebank", "1.2.0", nil)), http.MethodGet, "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "corebank", data["name"])
	assert.Equal(t, "1.2.0", data["version"])
	assert.NotEmpty(t, data["go_version"])
}

func TestOpsHandler_Ready(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		h := NewOpsHandler("corebank", "dev", nil).
			AddCheck("database", func(context.Context) error { return nil })
		w, resp := do(newEngine(h), http.MethodGet, "/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		data := resp.Data.(map[string]any)
		assert.Equal(t, true, data["ready"])
		assert.Equal(t, "ok", data["checks"].(map[string]any)["database"])
	})

	t.Run("failing check", func(t *testing.T) {
		h := NewOpsHandler("corebank", "dev", nil).
			AddCheck("database", func(context.Context) error { return nil }).
			AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })
		w, resp := do(newEngine(h), http.MethodGet, "/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeUnavailable, resp.Error.Code)
		checks := resp.Data.(map[string]any)["checks"].(map[string]any)
		assert.Equal(t, "ok", checks["database"])
		assert.Equal(t, "connection refused", checks["redis"])
	})

	t.Run("checks are bounded", func(t *testing.T) {
		h := NewOpsHandler("corebank", "dev", nil).
			AddCheck("slow", func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			})
		h.checkTimeout = 10 * time.Millisecond
		w, _ := do(newEngine(h), http.MethodGet, "/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestOpsHandler_ListJobs(t *testing.T) {
	w, resp := do(newEngine(NewOpsHandler("corebank", "dev", nil)), http.MethodGet, "/api/v1/ops/jobs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, resp.Data)

	jobs := new(mockJobs)
	jobs.On("LastRuns").Return([]scheduler.JobRun{{Job: scheduler.JobMaturitySweep, Status: scheduler.JobStatusSuccess, Processed: 3}})
	w, resp = do(newEngine(NewOpsHandler("corebank", "dev", jobs)), http.MethodGet, "/api/v1/ops/jobs")
	assert.Equal(t, http.StatusOK, w.Code)
	runs := resp.Data.([]any)
	require.Len(t, runs, 1)
	assert.Equal(t, scheduler.JobMaturitySweep, runs[0].(map[string]any)["job"])
}

func TestOpsHandler_RunJob(t *testing.T) {
	tests := []struct {
		name   string
		run    scheduler.JobRun
		err    error
		status int
		code   string
	}{
		{"success", scheduler.JobRun{Job: "maturity_sweep", Status: scheduler.JobStatusSuccess}, nil, http.StatusOK, ""},
		{"unknown", scheduler.JobRun{}, fmt.Errorf("%w: nope", scheduler.ErrUnknownJob), http.StatusNotFound, dto.ErrCodeNotFound},
		{"running", scheduler.JobRun{}, fmt.Errorf("%w: maturity_sweep", scheduler.ErrJobRunning), http.StatusConflict, dto.ErrCodeConflict},
		{"job failed", scheduler.JobRun{Status: scheduler.JobStatusFailed}, errors.New("db gone"), http.StatusInternalServerError, dto.ErrCodeInternal},
		{"retryable", scheduler.JobRun{Status: scheduler.JobStatusFailed}, shared.NewIntegrityError("fd.mature", context.DeadlineExceeded), http.StatusServiceUnavailable, dto.ErrCodeUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := new(mockJobs)
			jobs.On("RunNow", mock.Anything, "maturity_sweep").Return(tt.run, tt.err)

			w, resp := do(newEngine(NewOpsHandler("corebank", "dev", jobs)), http.MethodPost, "/api/v1/ops/jobs/maturity_sweep/run")
			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tt.code, resp.Error.Code)
			}
			jobs.AssertExpectations(t)
		})
	}

	t.Run("scheduler disabled", func(t *testing.T) {
		w, _ := do(newEngine(NewOpsHandler("corebank", "dev", nil)), http.MethodPost, "/api/v1/ops/jobs/daily_interest/run")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
