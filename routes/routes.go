package routes

import (
	"fieldstock/app"
	"fieldstock/controllers"
)

func RegisterRoutes(a *app.App) {
	r := a.Router
	s := controllers.GetSrv(a)

	authCtl := controllers.NewAuthController(s)
	refCtl := controllers.NewRefDataController(s)
	receiptCtl := controllers.NewReceiptController(s)
	moveCtl := controllers.NewMovementController(s)
	returnCtl := controllers.NewReturnController(s)
	stockCtl := controllers.NewStockController(s)

	authMW := app.AuthRequired(a.Config.Auth.JWTSecret, s.Repo)
	adminMW := app.AdminOnly()

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })
	if a.Config.Metrics.Enabled {
		app.ExposeMetrics(r)
	}

	r.POST("/api/auth/login", authCtl.Login)

	// Master data (admin mutations, authenticated reads).
	ref := r.Group("/api", authMW)
	{
		ref.GET("/materials", refCtl.ListMaterials)
		ref.GET("/stock-areas", refCtl.ListStockAreas)
	}
	refAdmin := r.Group("/api", authMW, adminMW)
	{
		refAdmin.POST("/materials", refCtl.CreateMaterial)
		refAdmin.DELETE("/materials/:id", refCtl.DeactivateMaterial)
		refAdmin.POST("/stock-areas", refCtl.CreateStockArea)
		refAdmin.POST("/users", authCtl.CreateUser)
	}

	// Workflows.
	wf := r.Group("/api", authMW)
	{
		wf.POST("/receipts", receiptCtl.Submit)
		wf.POST("/receipts/:id/complete", receiptCtl.Complete)
		wf.GET("/receipts/:id", receiptCtl.Get)

		wf.POST("/transfers", moveCtl.SubmitTransfer)
		wf.POST("/consumptions", moveCtl.SubmitConsumption)

		wf.POST("/returns", returnCtl.Submit)
		wf.GET("/returns/:id", returnCtl.Get)
	}
	wfAdmin := r.Group("/api", authMW, adminMW)
	{
		wfAdmin.POST("/returns/:id/approve", returnCtl.Approve)
		wfAdmin.POST("/returns/:id/reject", returnCtl.Reject)
	}

	// Read side.
	stock := r.Group("/api/stock", authMW)
	{
		stock.GET("/levels", stockCtl.Levels)
		stock.GET("/available", stockCtl.Available)
		stock.GET("/person/:userId", stockCtl.PersonStock)
		stock.GET("/units/:serial", stockCtl.UnitBySerial)
	}
}
