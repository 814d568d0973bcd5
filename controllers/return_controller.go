package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldstock/app"
	"fieldstock/db"
)

type ReturnController struct{ *Srv }

func NewReturnController(s *Srv) *ReturnController { return &ReturnController{Srv: s} }

func (rc *ReturnController) Submit(c *gin.Context) {
	var in db.SubmitReturnInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	ret, err := rc.Repo.SubmitReturn(c.Request.Context(), app.Scope(c), in)
	if err != nil {
		rc.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, ret)
}

func (rc *ReturnController) Approve(c *gin.Context) {
	scope := app.Scope(c)
	ret, err := rc.Repo.ApproveReturn(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		rc.writeErr(c, err)
		return
	}
	rc.invalidated(c, scope)
	c.JSON(http.StatusOK, ret)
}

func (rc *ReturnController) Reject(c *gin.Context) {
	ret, err := rc.Repo.RejectReturn(c.Request.Context(), app.Scope(c), c.Param("id"))
	if err != nil {
		rc.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ret)
}

func (rc *ReturnController) Get(c *gin.Context) {
	ret, err := rc.Repo.GetReturn(c.Request.Context(), app.Scope(c), c.Param("id"))
	if err != nil {
		rc.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, ret)
}
