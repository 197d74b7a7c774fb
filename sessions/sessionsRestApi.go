package sessions

import (
	"net/http"
	"staffing/account"
	"staffing/common"
	"staffing/session"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	LoginFunc  = account.Login
	LogoutFunc = account.Logout
)

// RegisterSessionsHandler mounts login and logout, authFilter guards the current session endpoint.
func RegisterSessionsHandler(r *gin.Engine, authFilter gin.HandlerFunc) {
	g := r.Group("/v1/sessions")
	g.POST("", LoginHandler)
	g.DELETE("", LogoutHandler)

	r.GET("/v1/session", authFilter, CurrentSessionHandler)
}

func LoginHandler(c *gin.Context) {
	login := account.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	result, err := LoginFunc(&login, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	maxAge := int(time.Until(result.ExpiresAt) / time.Second)
	c.SetCookie(session.KeySecToken, result.Token, maxAge, "/", "", false, true)
	c.JSON(http.StatusOK, result)
}

func LogoutHandler(c *gin.Context) {
	token := session.ExtractToken(c)
	if token != "" {
		s := &session.Session{Token: token}
		if value, found := session.TokenCache.Get(token); found {
			if cached, ok := value.(*session.Session); ok {
				s = cached
			}
		}
		LogoutFunc(s)
	}
	c.SetCookie(session.KeySecToken, "", -1, "/", "", false, true)
	c.AbortWithStatus(http.StatusNoContent)
}

func CurrentSessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, session.ExtractSessionFromGinContext(c))
}
