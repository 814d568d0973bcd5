package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldstock/app"
)

// RefDataController serves the master data the workflows validate against:
// materials and stock areas.
type RefDataController struct{ *Srv }

func NewRefDataController(s *Srv) *RefDataController { return &RefDataController{Srv: s} }

func (rc *RefDataController) CreateMaterial(c *gin.Context) {
	var in struct {
		Code string `json:"code" binding:"required"`
		Name string `json:"name" binding:"required"`
		Type string `json:"type"`
		UOM  string `json:"uom"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	m, err := rc.Repo.CreateMaterial(c.Request.Context(), app.Scope(c), in.Code, in.Name, in.Type, in.UOM)
	if err != nil {
		rc.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (rc *RefDataController) ListMaterials(c *gin.Context) {
	includeInactive := c.Query("all") == "true"
	ms, err := rc.Repo.ListMaterials(c.Request.Context(), app.Scope(c), includeInactive)
	if err != nil {
		rc.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ms})
}

func (rc *RefDataController) DeactivateMaterial(c *gin.Context) {
	if err := rc.Repo.DeactivateMaterial(c.Request.Context(), app.Scope(c), c.Param("id")); err != nil {
		rc.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func (rc *RefDataController) CreateStockArea(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required"`
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	a, err := rc.Repo.CreateStockArea(c.Request.Context(), app.Scope(c), in.Name, in.Code)
	if err != nil {
		rc.writeErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (rc *RefDataController) ListStockAreas(c *gin.Context) {
	as, err := rc.Repo.ListStockAreas(c.Request.Context(), app.Scope(c))
	if err != nil {
		rc.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": as})
}
