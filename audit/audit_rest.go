package audit

import (
	"net/http"
	"staffing/common"
	"staffing/session"

	"github.com/gin-gonic/gin"
)

var PathAuditLogs = "/v1/audit-logs"

func RegisterAuditRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAuditLogs, middleWares...)
	g.GET("", handleQueryEntries)
	g.GET("/stats", handleQueryStats)
}

func handleQueryEntries(c *gin.Context) {
	query := EntryQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	entries, err := QueryEntriesFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, entries)
}

func handleQueryStats(c *gin.Context) {
	query := StatsQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	stats, err := QueryStatsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, stats)
}
