// Package router mounts resource route groups under a versioned API prefix.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// Registrar mounts its routes on the API group
type Registrar interface {
	RegisterRoutes(api *gin.RouterGroup) []Route
}

// Route is one mounted endpoint, kept for the startup route table
type Route struct {
	Method string
	Path   string
}

// Router collects registrars and mounts them on Setup
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []Registrar
}

// Option configures a Router
type Option func(*Router)

// WithAPIVersion sets the path segment after /api (default "v1")
func WithAPIVersion(version string) Option {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a Router for engine
func NewRouter(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register queues a registrar for Setup
func (r *Router) Register(reg Registrar) *Router {
	r.registrars = append(r.registrars, reg)
	return r
}

// Setup mounts every registrar under /api/<version> and returns the
// resulting route table in registration order.
func (r *Router) Setup() []Route {
	api := r.engine.Group("/api/" + r.apiVersion)
	var table []Route
	for _, reg := range r.registrars {
		table = append(table, reg.RegisterRoutes(api)...)
	}
	return table
}

// ---------------------------------------------------------------------------
// DomainGroup
// ---------------------------------------------------------------------------

// DomainGroup holds the endpoints of one resource, e.g. /bulk-syncs
type DomainGroup struct {
	prefix string
	routes []groupRoute
}

type groupRoute struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates an empty group mounted at prefix
func NewDomainGroup(prefix string) *DomainGroup {
	return &DomainGroup{prefix: prefix}
}

// GET adds a GET endpoint
func (g *DomainGroup) GET(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodGet, relPath, handlers)
}

// POST adds a POST endpoint
func (g *DomainGroup) POST(relPath string, handlers ...gin.HandlerFunc) *DomainGroup {
	return g.add(http.MethodPost, relPath, handlers)
}

func (g *DomainGroup) add(method, relPath string, handlers []gin.HandlerFunc) *DomainGroup {
	g.routes = append(g.routes, groupRoute{method: method, path: relPath, handlers: handlers})
	return g
}

// Prefix returns the mount prefix
func (g *DomainGroup) Prefix() string {
	return g.prefix
}

// RegisterRoutes implements Registrar
func (g *DomainGroup) RegisterRoutes(api *gin.RouterGroup) []Route {
	group := api.Group(g.prefix)
	mounted := make([]Route, 0, len(g.routes))
	for _, rt := range g.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
		full := path.Join(group.BasePath(), rt.path)
		mounted = append(mounted, Route{Method: rt.method, Path: full})
	}
	return mounted
}
