package router

import (
	"github.com/corebank/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// ProbeRegistrar registers unversioned probe endpoints
type ProbeRegistrar interface {
	RegisterProbes(r gin.IRoutes)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
	probes     []ProbeRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewEngine creates a gin engine with panic recovery and request logging.
// Extra middleware, such as tracing, runs before the request logger so the
// logger sees the span.
func NewEngine(log *zap.Logger, mode string, middleware ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(mode)
	engine := gin.New()
	engine.Use(logger.Recovery(log))
	engine.Use(middleware...)
	engine.Use(logger.GinMiddleware(log))
	return engine
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// RegisterProbes adds probe endpoints served outside the versioned group
func (r *Router) RegisterProbes(p ProbeRegistrar) *Router {
	r.probes = append(r.probes, p)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() *gin.Engine {
	for _, p := range r.probes {
		p.RegisterProbes(r.engine)
	}
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
	return r.engine
}
