package testinfra

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"staffing/authority"
	"staffing/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func ExecuteRequest(req *http.Request, engine *gin.Engine) (int, string, *http.Response) {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), resp
}

// BuildSession build an authenticated session of the user with the given role
func BuildSession(uid types.ID, role authority.Role) *session.Session {
	return &session.Session{
		Token:     uuid.New().String(),
		Identity:  session.Identity{ID: uid},
		Role:      role,
		ClientIP:  "127.0.0.1",
		UserAgent: "testinfra",
		Context:   context.Background(),
	}
}

// InjectSession returns a middleware which authenticates every request as s.
func InjectSession(s *session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		session.InjectSessionIntoGinContext(c, s)
		c.Next()
	}
}
