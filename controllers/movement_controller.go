package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldstock/app"
	"fieldstock/db"
)

// MovementController serves transfers and consumptions; both are synchronous
// all-or-nothing submissions.
type MovementController struct{ *Srv }

func NewMovementController(s *Srv) *MovementController { return &MovementController{Srv: s} }

func (mc *MovementController) SubmitTransfer(c *gin.Context) {
	var in db.SubmitTransferInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	scope := app.Scope(c)
	tr, err := mc.Repo.SubmitTransfer(c.Request.Context(), scope, in)
	if err != nil {
		mc.writeErr(c, err)
		return
	}
	mc.invalidated(c, scope)
	c.JSON(http.StatusCreated, tr)
}

func (mc *MovementController) SubmitConsumption(c *gin.Context) {
	var in db.SubmitConsumptionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	scope := app.Scope(c)
	cn, err := mc.Repo.SubmitConsumption(c.Request.Context(), scope, in)
	if err != nil {
		mc.writeErr(c, err)
		return
	}
	mc.invalidated(c, scope)
	c.JSON(http.StatusCreated, cn)
}
