package margin

import (
	"bytes"
	"net/http"
	"staffing/common"
	"staffing/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var PathMargins = "/v1/margins"

type MarginQuery struct {
	Real      bool     `form:"real"`
	ProjectID types.ID `form:"projectId"`
}

func RegisterMarginsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathMargins, middleWares...)
	g.GET("", handleAllMargins)
	g.GET("/compare", handleCompareMargins)
	g.GET("/export", handleExport)
	g.GET("/projects/:id", handleProjectMargins)
	g.GET("/consultants/:id/cjr", handleConsultantCJR)
	g.GET("/interventions/:id/cjr", handleInterventionCJR)
}

func bindQuery(c *gin.Context) MarginQuery {
	q := MarginQuery{}
	if err := c.ShouldBindQuery(&q); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	return q
}

func bindID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	return id
}

func handleAllMargins(c *gin.Context) {
	report, err := AllMarginsFunc(bindQuery(c).Real, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, report)
}

func handleProjectMargins(c *gin.Context) {
	id := bindID(c)
	m, err := ProjectMarginsFunc(id, bindQuery(c).Real, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, m)
}

func handleCompareMargins(c *gin.Context) {
	report, err := CompareMarginsFunc(bindQuery(c).ProjectID, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, report)
}

func handleExport(c *gin.Context) {
	report, err := ExportCJRFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	var buf bytes.Buffer
	if err := WriteComparisonCSV(&buf, report); err != nil {
		panic(err)
	}
	c.Header("Content-Disposition", `attachment; filename="margins-cjr.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func handleConsultantCJR(c *gin.Context) {
	result, err := ConsultantCJRFunc(bindID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func handleInterventionCJR(c *gin.Context) {
	result, err := InterventionCJRFunc(bindID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}
