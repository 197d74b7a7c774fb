package validation

import (
	"net/http"
	"staffing/common"
	"staffing/domain"
	"staffing/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathValidations = "/v1/validations"
	PathTimesheets  = "/v1/timesheets"
)

func RegisterValidationsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathValidations, middleWares...)
	g.POST("/bulk", handleValidateBulk)
	g.GET("/pending", handleQueryPending)
	g.GET("/stats", handleQueryStats)

	ts := r.Group(PathTimesheets, middleWares...)
	ts.POST("/:id/validation", handleValidate)
	ts.POST("/:id/resubmit", handleResubmit)
	ts.GET("/:id/validations", handleQueryHistory)
}

func bindID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	return id
}

func handleValidate(c *gin.Context) {
	id := bindID(c)
	decision := domain.ValidationDecision{}
	if err := c.ShouldBindBodyWith(&decision, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	record, err := ValidateFunc(id, &decision, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleValidateBulk(c *gin.Context) {
	bulk := domain.BulkValidation{}
	if err := c.ShouldBindBodyWith(&bulk, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	c.JSON(http.StatusOK, ValidateBulkFunc(&bulk, session.ExtractSessionFromGinContext(c)))
}

func handleResubmit(c *gin.Context) {
	record, err := ResubmitFunc(bindID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleQueryPending(c *gin.Context) {
	records, err := QueryPendingFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleQueryHistory(c *gin.Context) {
	records, err := QueryHistoryFunc(bindID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleQueryStats(c *gin.Context) {
	query := domain.ValidationStatsQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	stats, err := QueryStatsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, stats)
}
