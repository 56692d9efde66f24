package server

import (
	"net/http"
)

// BasicRouter registers GET-only routes on an [http.ServeMux] behind a middleware chain.
//
// Requests with any other method get 405 from the mux.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewBasicRouter creates an empty [BasicRouter].
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware. The first one added is the outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Get serves handler for GET (and HEAD) requests on path.
func (r *BasicRouter) Get(path string, handler http.Handler) {
	r.mux.Handle(http.MethodGet+" "+path, r.Apply(handler))
}

// Handler registers h on every path returned by [Handler.Routes].
func (r *BasicRouter) Handler(h Handler) {
	for _, route := range h.Routes() {
		r.Get(route, h)
	}
}

func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler in the registered middleware.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}
	return handler
}
