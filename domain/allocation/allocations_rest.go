package allocation

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
	PathInterventions = "/v1/interventions"
	PathConsultants   = "/v1/consultants"
)

func RegisterInterventionsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathInterventions, middleWares...)
	g.POST("", handleCreateIntervention)
	g.GET("", handleQueryInterventions)
	g.POST("/conflict-checks", handleCheckConflicts)
	g.GET("/:id", handleDetailIntervention)
	g.PATCH("/:id/allocation", handleUpdateAllocation)
	g.POST("/:id/end", handleEndIntervention)
	g.DELETE("/:id", handleDeleteIntervention)

	c := r.Group(PathConsultants, middleWares...)
	c.GET("/:id/allocation", handleCurrentAllocation)
}

func bindID(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	return id
}

func handleCreateIntervention(c *gin.Context) {
	creation := domain.InterventionCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	record, err := CreateInterventionFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleQueryInterventions(c *gin.Context) {
	query := domain.InterventionQuery{}
	if err := c.ShouldBindQuery(&query); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	records, err := QueryInterventionsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleCheckConflicts(c *gin.Context) {
	query := ConflictQuery{}
	if err := c.ShouldBindBodyWith(&query, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	conflicts, err := CheckConflictsFunc(&query, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"hasConflict": len(conflicts) > 0, "conflicts": conflicts})
}

func handleDetailIntervention(c *gin.Context) {
	record, err := DetailInterventionFunc(bindID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleUpdateAllocation(c *gin.Context) {
	id := bindID(c)
	updating := domain.AllocationUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&common.ErrBadParam{Cause: err})
	}
	record, err := UpdateAllocationFunc(id, &updating, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleEndIntervention(c *gin.Context) {
	record, err := EndInterventionFunc(bindID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeleteIntervention(c *gin.Context) {
	if err := DeleteInterventionFunc(bindID(c), session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleCurrentAllocation(c *gin.Context) {
	record, err := CurrentAllocationFunc(bindID(c), session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}
