// Package session carries the authenticated caller through a request.
package session

import (
	"context"

	"github.com/gin-gonic/gin"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTrucker Role = "trucker"
)

// Session is the verified identity of the caller. UserID is the trucker_id
// or admin_id depending on Role.
type Session struct {
	UserID int64
	Role   Role
	Email  string
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func (s Session) IsTrucker() bool {
	return s.Role == RoleTrucker
}

type contextKey struct{}

const ginKey = "session"

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}

// Attach stores s on both the gin context and the request context so
// handlers and use cases see the same caller.
func Attach(c *gin.Context, s Session) {
	c.Set(ginKey, s)
	c.Request = c.Request.WithContext(NewContext(c.Request.Context(), s))
}

func FromGin(c *gin.Context) (Session, bool) {
	v, exists := c.Get(ginKey)
	if !exists {
		return Session{}, false
	}
	s, ok := v.(Session)
	return s, ok
}
