// Package auth provides token based request authentication for the
// HTTP API.
package auth

import (
	"context"
	"net/http"

	"github.com/revlimit/modengine-go/log"
)

const tokenHeader = "api-token"

type Role int

const (
	RoleAdmin Role = iota
	RoleAnonymous
)

type (
	Principal interface {
		Name() string
	}
	Authentication interface {
		Principal() Principal
		Roles() []Role
	}

	SimplePrincipal struct {
		name string
	}
	SimpleAuth struct {
		principal Principal
		roles     []Role
	}
)

func (s *SimplePrincipal) Name() string { return s.name }

func (s *SimpleAuth) Principal() Principal { return s.principal }
func (s *SimpleAuth) Roles() []Role        { return s.roles }

var anon = &SimpleAuth{
	principal: &SimplePrincipal{name: "anon"},
	roles:     []Role{RoleAnonymous},
}

type myCtxTypeKey int

// FromContext returns the authentication attached by the middleware,
// or nil when the request never passed through it.
func FromContext(ctx context.Context) Authentication {
	if val, ok := ctx.Value(myCtxTypeKey(0)).(Authentication); ok {
		return val
	}
	return nil
}

// HasRole reports whether the context's authentication carries the role.
func HasRole(ctx context.Context, role Role) bool {
	a := FromContext(ctx)
	if a == nil {
		return false
	}
	for _, r := range a.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

type (
	middleware struct {
		adminToken string
		l          *log.Logger
	}
	Option func(*middleware)
)

func WithAdminToken(token string) Option {
	return func(m *middleware) { m.adminToken = token }
}

func WithLogger(arg *log.Logger) Option {
	return func(m *middleware) { m.l = arg }
}

// Middleware resolves the api-token header into an Authentication and
// attaches it to the request context. Requests without a matching
// token proceed as anonymous.
func Middleware(next http.Handler, opts ...Option) http.Handler {
	m := &middleware{l: log.Default().Named("server.auth")}
	for _, opt := range opts {
		opt(m)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(m.handleAuth(r)))
	})
}

func (m *middleware) handleAuth(r *http.Request) context.Context {
	token := r.Header.Get(tokenHeader)
	if token != "" && m.adminToken != "" && token == m.adminToken {
		admin := &SimpleAuth{
			principal: &SimplePrincipal{name: "admin"},
			roles:     []Role{RoleAdmin},
		}
		return context.WithValue(r.Context(), myCtxTypeKey(0), Authentication(admin))
	}
	if token != "" {
		m.l.Debug("unknown api token presented", log.String("path", r.URL.Path))
	}
	return context.WithValue(r.Context(), myCtxTypeKey(0), Authentication(anon))
}
