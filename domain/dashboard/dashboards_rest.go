package dashboard

import (
	"net/http"
	"staffing/common"
	"staffing/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var (
	PathDashboards  = "/v1/dashboards"
	PathConsultants = "/v1/consultants"
)

func RegisterDashboardsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathDashboards, middleWares...)
	g.GET("/me", handleMyDashboard)
	g.GET("/admin", handleAdminStats)
	g.GET("/directeur", handleDirecteurStats)
	g.GET("/capacity", handleCapacity)
	g.GET("/utilizations", handleAllUtilizations)

	c := r.Group(PathConsultants, middleWares...)
	c.GET("/:id/utilization", handleConsultantUtilization)
}

func respond(c *gin.Context, data interface{}, err error) {
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, data)
}

func handleMyDashboard(c *gin.Context) {
	d, err := MyDashboardFunc(session.ExtractSessionFromGinContext(c))
	respond(c, d, err)
}

func handleAdminStats(c *gin.Context) {
	d, err := AdminStatsFunc(session.ExtractSessionFromGinContext(c))
	respond(c, d, err)
}

func handleDirecteurStats(c *gin.Context) {
	d, err := DirecteurStatsFunc(session.ExtractSessionFromGinContext(c))
	respond(c, d, err)
}

func handleCapacity(c *gin.Context) {
	report, err := CapacityFunc(session.ExtractSessionFromGinContext(c))
	respond(c, report, err)
}

func handleAllUtilizations(c *gin.Context) {
	list, err := AllUtilizationsFunc(session.ExtractSessionFromGinContext(c))
	respond(c, list, err)
}

func handleConsultantUtilization(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	u, err := ConsultantUtilizationFunc(id, session.ExtractSessionFromGinContext(c))
	respond(c, u, err)
}
