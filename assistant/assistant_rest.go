package assistant

import (
	"net/http"
	"staffing/common"
	"staffing/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathChat = "/v1/chat"

func RegisterAssistantRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathChat, middleWares...)
	g.POST("", handleMessage)
	g.GET("/conversations", handleQueryConversations)
	g.GET("/conversations/:id", handleQueryMessages)
}

func handleMessage(c *gin.Context) {
	req := ChatRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	reply, err := HandleMessageFunc(&req, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, reply)
}

func handleQueryConversations(c *gin.Context) {
	conversations, err := QueryConversationsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, conversations)
}

func handleQueryMessages(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	messages, err := QueryMessagesFunc(id, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, messages)
}
