package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldstock/app"
	"fieldstock/db"
)

type ReceiptController struct{ *Srv }

func NewReceiptController(s *Srv) *ReceiptController { return &ReceiptController{Srv: s} }

// Submit records an inward receipt in draft; no stock appears yet.
func (rc *ReceiptController) Submit(c *gin.Context) {
	var in db.SubmitReceiptInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	scope := app.Scope(c)
	rec, err := rc.Repo.SubmitReceipt(c.Request.Context(), scope, in)
	if err != nil {
		rc.writeErr(c, err)
		return
	}
	rc.invalidated(c, scope)
	c.JSON(http.StatusCreated, rec)
}

// Complete materializes the receipt's ledger units; safe to retry.
func (rc *ReceiptController) Complete(c *gin.Context) {
	scope := app.Scope(c)
	rec, unitIDs, err := rc.Repo.CompleteReceipt(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		rc.writeErr(c, err)
		return
	}
	rc.invalidated(c, scope)
	c.JSON(http.StatusOK, app.H{"receipt": rec, "unitIds": unitIDs})
}

func (rc *ReceiptController) Get(c *gin.Context) {
	rec, err := rc.Repo.GetReceipt(c.Request.Context(), app.Scope(c), c.Param("id"))
	if err != nil {
		rc.writeErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}
