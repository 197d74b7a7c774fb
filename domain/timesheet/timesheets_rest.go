package timesheet

import (
	"errors"
	"net/http"
	"staffing/common"
	"staffing/domain"
	"staffing/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathTimesheets  = "/v1/timesheets"
	PathConsultants = "/v1/consultants"
)

func RegisterTimesheetsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathTimesheets, middleWares...)
	g.POST("", handleCreateTimesheet)
	g.GET("", handleQueryTimesheets)
	g.POST("/day-checks", handleValidateDayEntry)
	g.GET("/:id", handleDetailTimesheet)
	g.PATCH("/:id", handleUpdateTimesheet)
	g.POST("/:id/submit", handleSubmitTimesheet)
	g.DELETE("/:id", handleDeleteTimesheet)

	c := r.Group(PathConsultants, middleWares...)
	c.GET("/:id/timesheets/summary", handleMonthlySummary)
	c.GET("/:id/timesheets/daily", handleDailyEntries)
}

func bindID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	return id
}

func handleCreateTimesheet(c *gin.Context) {
	creation := domain.TimesheetCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	record, err := CreateTimesheetFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryTimesheets(c *gin.Context) {
	query := domain.TimesheetQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	records, err := QueryTimesheetsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleValidateDayEntry(c *gin.Context) {
	check := DayEntryCheck{}
	if err := c.ShouldBindBodyWith(&check, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	result, err := ValidateDayEntryFunc(&check, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func handleDetailTimesheet(c *gin.Context) {
	record, err := DetailTimesheetFunc(bindID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleUpdateTimesheet(c *gin.Context) {
	id := bindID(c)
	updating := domain.TimesheetUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	record, err := UpdateTimesheetFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleSubmitTimesheet(c *gin.Context) {
	record, err := SubmitTimesheetFunc(bindID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeleteTimesheet(c *gin.Context) {
	if err := DeleteTimesheetFunc(bindID(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleMonthlySummary(c *gin.Context) {
	id := bindID(c)
	month := c.Query("month")
	if month == "" {
		panic(&common.ErrBadParam{Cause: errors.New("month is required")})
	}
	summary, err := MonthlySummaryFunc(id, month, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, summary)
}

func handleDailyEntries(c *gin.Context) {
	id := bindID(c)
	date, err := common.ParseDate(c.Query("date"))
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	entries, err := DailyEntriesFunc(id, date, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, entries)
}
