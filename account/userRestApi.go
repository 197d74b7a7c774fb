package account

import (
	"net/http"
	"staffing/common"
	"staffing/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	CreateUserFunc        = CreateUser
	QueryUsersFunc        = QueryUsers
	DetailCurrentUserFunc = DetailCurrentUser
	UpdatePasswordFunc    = UpdatePassword
)

func RegisterUsersHandler(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	users := r.Group("/v1/users", middleWares...)
	users.GET("", HandleQueryUsers)
	users.POST("", HandleCreateUser)

	me := r.Group("/v1/me", middleWares...)
	me.GET("", HandleDetailCurrentUser)
	me.PUT("password", HandleUpdatePassword)
}

func HandleQueryUsers(c *gin.Context) {
	results, err := QueryUsersFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, results)
}

func HandleCreateUser(c *gin.Context) {
	payload := UserCreation{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	user, err := CreateUserFunc(&payload, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, user)
}

func HandleDetailCurrentUser(c *gin.Context) {
	user, err := DetailCurrentUserFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, user)
}

func HandleUpdatePassword(c *gin.Context) {
	payload := PasswordUpdating{}
	if err := c.ShouldBindBodyWith(&payload, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	if err := UpdatePasswordFunc(&payload, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusOK)
}
