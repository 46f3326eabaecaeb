package handler

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/corebank/backend/internal/infrastructure/scheduler"
	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// CheckFunc reports whether a dependency is usable
type CheckFunc func(ctx context.Context) error

// JobRunner is the scheduler surface exposed to operators
type JobRunner interface {
	RunNow(ctx context.Context, name string) (scheduler.JobRun, error)
	LastRuns() []scheduler.JobRun
}

// OpsHandler serves liveness, readiness and scheduler endpoints
type OpsHandler struct {
	name         string
	version      string
	startTime    time.Time
	checks       map[string]CheckFunc
	checkTimeout time.Duration
	jobs         JobRunner
}

// NewOpsHandler creates an OpsHandler. jobs may be nil when the scheduler
// is disabled.
func NewOpsHandler(name, version string, jobs JobRunner) *OpsHandler {
	return &OpsHandler{
		name:         name,
		version:      version,
		startTime:    time.Now(),
		checks:       make(map[string]CheckFunc),
		checkTimeout: 2 * time.Second,
		jobs:         jobs,
	}
}

// AddCheck registers a readiness check
func (h *OpsHandler) AddCheck(name string, check CheckFunc) *OpsHandler {
	h.checks[name] = check
	return h
}

// HealthResponse is returned by the liveness probe
type HealthResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// ReadyResponse is returned by the readiness probe
type ReadyResponse struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks"`
}

// RegisterProbes adds /health and /ready at the root of the engine
func (h *OpsHandler) RegisterProbes(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
}

// RegisterRoutes adds the scheduler endpoints under /ops
func (h *OpsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	ops := rg.Group("/ops")
	ops.GET("/jobs", h.ListJobs)
	ops.POST("/jobs/:name/run", h.RunJob)
}

// Health answers as long as the process serves requests
func (h *OpsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// Ready runs every registered check; any failure makes the response 503
func (h *OpsHandler) Ready(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	resp := ReadyResponse{Ready: true, Checks: make(map[string]string, len(names))}
	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.checkTimeout)
		err := h.checks[name](ctx)
		cancel()
		if err != nil {
			resp.Ready = false
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	if !resp.Ready {
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success: false,
			Data:    resp,
			Error:   &dto.ErrorInfo{Code: dto.ErrCodeUnavailable, Message: "not ready"},
		})
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// ListJobs returns the latest run of each scheduler job
func (h *OpsHandler) ListJobs(c *gin.Context) {
	if h.jobs == nil {
		c.JSON(http.StatusOK, dto.NewSuccessResponse([]scheduler.JobRun{}))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(h.jobs.LastRuns()))
}

// RunJob runs a scheduler job now and waits for it to finish
func (h *OpsHandler) RunJob(c *gin.Context) {
	if h.jobs == nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(dto.ErrCodeUnavailable, "scheduler is disabled"))
		return
	}

	run, err := h.jobs.RunNow(c.Request.Context(), c.Param("name"))
	switch {
	case errors.Is(err, scheduler.ErrUnknownJob):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, err.Error()))
	case errors.Is(err, scheduler.ErrJobRunning):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(dto.ErrCodeConflict, err.Error()))
	case err != nil:
		_ = c.Error(err)
		status, code := dto.StatusForError(err)
		c.JSON(status, dto.Response{
			Success: false,
			Data:    run,
			Error:   &dto.ErrorInfo{Code: code, Message: err.Error()},
		})
	default:
		c.JSON(http.StatusOK, dto.NewSuccessResponse(run))
	}
}
