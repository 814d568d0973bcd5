package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fieldstock/app"
	"fieldstock/db"
)

type StockController struct{ *Srv }

func NewStockController(s *Srv) *StockController { return &StockController{Srv: s} }

// Levels serves the derived stock level report, cached in Redis until the
// next committed workflow for the organization.
func (sc *StockController) Levels(c *gin.Context) {
	scope := app.Scope(c)
	if c.Query("allOrgs") == "true" {
		// Cross-org reporting is an intentional migration toggle, not a
		// default: config must allow it and the caller must be an admin.
		if !sc.Cfg.Inventory.AllowCrossOrg || !c.GetBool("isAdmin") {
			c.JSON(http.StatusForbidden, app.H{"error": "cross-org reporting disabled"})
			return
		}
		scope.CrossOrg = true
	}

	f := db.StockLevelFilter{IncludeDraftReceipts: sc.Cfg.Inventory.CountDraftReceipts}
	if v := c.Query("materialId"); v != "" {
		f.MaterialID = &v
	}
	if v := c.Query("stockAreaId"); v != "" {
		f.StockAreaID = &v
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "from: invalid RFC3339 timestamp"})
			return
		}
		f.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, app.H{"error": "to: invalid RFC3339 timestamp"})
			return
		}
		f.To = &t
	}

	fingerprint := levelFingerprint(scope, f)
	if payload, ok := sc.Cache.Get(c.Request.Context(), scope.OrgID, scope.CrossOrg, fingerprint); ok {
		c.Data(http.StatusOK, "application/json", payload)
		return
	}

	levels, err := sc.Repo.GetStockLevels(c.Request.Context(), scope, f)
	if err != nil {
		sc.writeErr(c, err)
		return
	}
	body, err := json.Marshal(app.H{"items": levels})
	if err != nil {
		sc.writeErr(c, err)
		return
	}
	sc.Cache.Set(c.Request.Context(), scope.OrgID, scope.CrossOrg, fingerprint, body)
	c.Data(http.StatusOK, "application/json", body)
}

// Available lists ledger units currently available for allocation, FIFO.
func (sc *StockController) Available(c *gin.Context) {
	materialID := c.Query("materialId")
	if materialID == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "materialId: required"})
		return
	}
	var areaID *string
	if v := c.Query("stockAreaId"); v != "" {
		areaID = &v
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	units, err := sc.Repo.FindAvailableUnits(c.Request.Context(), app.Scope(c), materialID, areaID, limit)
	if err != nil {
		sc.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": units})
}

// PersonStock lists what a technician currently holds.
func (sc *StockController) PersonStock(c *gin.Context) {
	units, err := sc.Repo.ListPersonStock(c.Request.Context(), app.Scope(c), c.Param("userId"))
	if err != nil {
		sc.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": units})
}

// UnitBySerial resolves one serial to its ledger row.
func (sc *StockController) UnitBySerial(c *gin.Context) {
	u, err := sc.Repo.FindUnitBySerial(c.Request.Context(), app.Scope(c), c.Param("serial"))
	if err != nil {
		sc.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func levelFingerprint(scope db.OrgScope, f db.StockLevelFilter) string {
	return fmt.Sprintf("%v|%v|%v|%v|%v|%v",
		deref(f.MaterialID), deref(f.StockAreaID),
		fmtTime(f.From), fmtTime(f.To),
		f.IncludeDraftReceipts, scope.CrossOrg)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func fmtTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
