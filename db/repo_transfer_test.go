package db

import (
	"context"
	"errors"
	"testing"

	"fieldstock/models"
)

func TestTransferSerialToTechnician(t *testing.T) {
	r := testRepo(t)
	scope := testScope(t, r)
	ctx := context.Background()
	mat := seedMaterial(t, r, scope, "ONT-G2")
	area := seedArea(t, r, scope, "Central")
	tech := seedTech(t, r, scope, "tech-7")
	receiveStock(t, r, scope, mat.ID, area.ID, 0, []string{"SN-100", "SN-101"})

	ticket := "TKT-9"
	tr, err := r.SubmitTransfer(ctx, scope, SubmitTransferInput{
		SourceAreaID: area.ID,
		Dest:         Destination{Kind: models.DestPerson, UserID: &tech.ID},
		TicketID:     &ticket,
		Lines:        []TransferLineInput{{MaterialID: mat.ID, SerialNumbers: []string{"SN-100"}}},
	})
	if err != nil {
		t.Fatalf("submitting transfer: %v", err)
	}
	if len(tr.Lines) != 1 || len(tr.Lines[0].UnitIDs) != 1 {
		t.Fatalf("expected one resolved unit, got %+v", tr.Lines)
	}

	u, err := r.FindUnitBySerial(ctx, scope, "SN-100")
	if err != nil {
		t.Fatalf("looking up SN-100: %v", err)
	}
	if u.Status != models.UnitInTransit || u.LocationType != models.LocPerson {
		t.Errorf("expected in_transit at person, got %s at %s", u.Status, u.LocationType)
	}
	if u.LocationID == nil || *u.LocationID != tech.ID {
		t.Errorf("unit not held by technician: %v", u.LocationID)
	}
	if u.TicketID == nil || *u.TicketID != ticket {
		t.Errorf("ticket not stamped on unit: %v", u.TicketID)
	}
	if n := availableCount(t, r, scope, mat.ID, &area.ID); n != 1 {
		t.Errorf("expected 1 unit left in source area, got %d", n)
	}
}

func TestTransferBetweenWarehouses(t *testing.T) {
	r := testRepo(t)
	scope := testScope(t, r)
	ctx := context.Background()
	mat := seedMaterial(t, r, scope, "CBL-UTP")
	src := seedArea(t, r, scope, "Central")
	dst := seedArea(t, r, scope, "North")
	receiveStock(t, r, scope, mat.ID, src.ID, 5, nil)

	_, err := r.SubmitTransfer(ctx, scope, SubmitTransferInput{
		SourceAreaID: src.ID,
		Dest:         Destination{Kind: models.DestWarehouse, AreaID: &dst.ID},
		Lines:        []TransferLineInput{{MaterialID: mat.ID, Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("submitting transfer: %v", err)
	}
	if n := availableCount(t, r, scope, mat.ID, &src.ID); n != 2 {
		t.Errorf("expected 2 left at source, got %d", n)
	}
	if n := availableCount(t, r, scope, mat.ID, &dst.ID); n != 3 {
		t.Errorf("expected 3 at destination, got %d", n)
	}
}

func TestTransferShortfallRollsBack(t *testing.T) {
	r := testRepo(t)
	scope := testScope(t, r)
	ctx := context.Background()
	mat := seedMaterial(t, r, scope, "SPL-1x8")
	src := seedArea(t, r, scope, "Central")
	dst := seedArea(t, r, scope, "North")
	receiveStock(t, r, scope, mat.ID, src.ID, 2, nil)

	_, err := r.SubmitTransfer(ctx, scope, SubmitTransferInput{
		SourceAreaID: src.ID,
		Dest:         Destination{Kind: models.DestWarehouse, AreaID: &dst.ID},
		Lines: []TransferLineInput{
			{MaterialID: mat.ID, Quantity: 1},
			{MaterialID: mat.ID, Quantity: 5},
		},
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// Neither the first line's allocation nor the header may survive.
	if n := availableCount(t, r, scope, mat.ID, &src.ID); n != 2 {
		t.Errorf("expected all 2 units still at source, got %d", n)
	}
	var headers int64
	if err := r.DB.Model(&models.Transfer{}).Count(&headers).Error; err != nil {
		t.Fatalf("counting transfers: %v", err)
	}
	if headers != 0 {
		t.Errorf("expected no transfer header after rollback, got %d", headers)
	}
}

func TestTransferDestinationValidation(t *testing.T) {
	r := testRepo(t)
	scope := testScope(t, r)
	ctx := context.Background()
	mat := seedMaterial(t, r, scope, "RTR-1")
	area := seedArea(t, r, scope, "Central")
	receiveStock(t, r, scope, mat.ID, area.ID, 1, nil)

	cases := []struct {
		name string
		dest Destination
	}{
		{"unknown kind", Destination{Kind: "van"}},
		{"warehouse without area", Destination{Kind: models.DestWarehouse}},
		{"same area", Destination{Kind: models.DestWarehouse, AreaID: &area.ID}},
		{"person without user", Destination{Kind: models.DestPerson}},
	}
	for _, tc := range cases {
		_, err := r.SubmitTransfer(ctx, scope, SubmitTransferInput{
			SourceAreaID: area.ID,
			Dest:         tc.dest,
			Lines:        []TransferLineInput{{MaterialID: mat.ID, Quantity: 1}},
		})
		if !IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}
