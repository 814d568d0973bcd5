package db

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"fieldstock/models"
)

func testRepo(t *testing.T) *Repo {
	t.Helper()
	return NewRepo(NewTestDB(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testScope(t *testing.T, r *Repo) OrgScope {
	t.Helper()
	org := uuid.NewString()
	scope := OrgScope{OrgID: &org}
	u := &models.User{Username: "clerk-" + uuid.NewString()[:8], IsAdmin: true}
	if err := r.CreateUser(context.Background(), scope, u); err != nil {
		t.Fatalf("seeding clerk: %v", err)
	}
	scope.UserID = u.ID
	return scope
}

func seedMaterial(t *testing.T, r *Repo, scope OrgScope, code string) *models.Material {
	t.Helper()
	m, err := r.CreateMaterial(context.Background(), scope, code, "Material "+code, "equipment", "pcs")
	if err != nil {
		t.Fatalf("seeding material %s: %v", code, err)
	}
	return m
}

func seedArea(t *testing.T, r *Repo, scope OrgScope, name string) *models.StockArea {
	t.Helper()
	a, err := r.CreateStockArea(context.Background(), scope, name, "")
	if err != nil {
		t.Fatalf("seeding stock area %s: %v", name, err)
	}
	return a
}

func seedTech(t *testing.T, r *Repo, scope OrgScope, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, IsTechnician: true}
	if err := r.CreateUser(context.Background(), scope, u); err != nil {
		t.Fatalf("seeding technician %s: %v", username, err)
	}
	return u
}

// receiveStock submits and completes a receipt, returning the created units.
func receiveStock(t *testing.T, r *Repo, scope OrgScope, materialID, areaID string, qty int, serials []string) []string {
	t.Helper()
	rec, err := r.SubmitReceipt(context.Background(), scope, SubmitReceiptInput{
		StockAreaID: areaID,
		Lines:       []ReceiptLineInput{{MaterialID: materialID, Quantity: qty, SerialNumbers: serials}},
	})
	if err != nil {
		t.Fatalf("submitting receipt: %v", err)
	}
	_, unitIDs, err := r.CompleteReceipt(context.Background(), scope, rec.ID)
	if err != nil {
		t.Fatalf("completing receipt: %v", err)
	}
	return unitIDs
}

func availableCount(t *testing.T, r *Repo, scope OrgScope, materialID string, areaID *string) int {
	t.Helper()
	units, err := r.FindAvailableUnits(context.Background(), scope, materialID, areaID, 500)
	if err != nil {
		t.Fatalf("listing available units: %v", err)
	}
	return len(units)
}
