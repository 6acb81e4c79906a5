package server

import (
	"net/http"
	"slices"
	"strings"
)

// BasicRouter routes preview requests by method and path on an [http.ServeMux].
//
// Requests that match no route are answered by the router itself, through the middleware stack: 404 for an
// unknown path and 405 with an Allow header for a known path with the wrong method. GET routes also answer HEAD.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	allowed     map[string][]string // request path -> methods
	patterns    []string
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:         http.NewServeMux(),
		middlewares: []Middleware{},
		allowed:     map[string][]string{},
	}
}

// Use adds [Middleware] to the stack. It applies to routes registered afterwards and to unmatched requests.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method and path, wrapped with the registered middleware.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	method = strings.ToUpper(method)
	pattern := method + " " + path
	r.mux.Handle(pattern, r.Apply(handler))
	r.patterns = append(r.patterns, pattern)

	key := requestPath(path)
	r.allowed[key] = append(r.allowed[key], method)
	if method == http.MethodGet {
		r.allowed[key] = append(r.allowed[key], http.MethodHead)
	}
}

// Handler registers every [Route] of handler.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.Handle(route.Method, route.Path, route.Handler)
	}
}

// Patterns returns the registered patterns in registration order.
func (r *BasicRouter) Patterns() []string {
	return slices.Clone(r.patterns)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if _, pattern := r.mux.Handler(req); pattern == "" {
		r.Apply(http.HandlerFunc(r.unmatched)).ServeHTTP(w, req)
		return
	}
	r.mux.ServeHTTP(w, req)
}

func (r *BasicRouter) unmatched(w http.ResponseWriter, req *http.Request) {
	methods, ok := r.allowed[req.URL.Path]
	if !ok {
		http.Error(w, "Not found: "+req.URL.Path, http.StatusNotFound)
		return
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}

// requestPath turns a mux path pattern into the request path it matches exactly.
func requestPath(path string) string {
	return strings.TrimSuffix(path, "{$}")
}
