package session

import (
	"context"
	"staffing/authority"
	"time"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Token    string         `json:"token"`
	Identity Identity       `json:"identity"`
	Role     authority.Role `json:"role"`

	SigningTime time.Time `json:"-"`
	ExpiresAt   time.Time `json:"-"`

	ClientIP  string          `json:"-"`
	UserAgent string          `json:"-"`
	Context   context.Context `json:"-"`
}

type Identity struct {
	ID    types.ID `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
}

func (s Session) Clone() Session {
	return s
}

// Ctx returns the request context of the session, never nil.
func (s *Session) Ctx() context.Context {
	if s == nil || s.Context == nil {
		return context.Background()
	}
	return s.Context
}

func (s *Session) UserID() types.ID {
	if s == nil {
		return 0
	}
	return s.Identity.ID
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Identity.ID != 0 && s.Role.Valid()
}
