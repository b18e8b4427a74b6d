package service

import (
	"testing"
	"time"

	"go-branch-stock-ws/internal/model"
)

func TestSweepOverdueTransfers(t *testing.T) {
	env := newTestEnv(t)

	overdue := time.Now().Add(-24 * time.Hour)
	transfer, err := env.transferSvc.CreateTransfer(&CreateTransferRequest{
		FromBranchID:     env.source.ID,
		ToBranchID:       env.dest.ID,
		ExpectedDelivery: &overdue,
		Items: []CreateTransferItemRequest{
			{ProductID: env.rice.ID, QuantitySent: 10},
		},
	}, env.admin)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.transferSvc.Dispatch(transfer.ID, env.sourceMgr); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	created, err := env.alertSvc.SweepOverdueTransfers()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if created != 1 {
		t.Fatalf("first sweep created %d alerts, want 1", created)
	}

	alerts, err := env.alertSvc.ListAlerts(env.dest.ID, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert at destination, got %d", len(alerts))
	}
	if alerts[0].AlertType != model.AlertTransferOverdue {
		t.Errorf("alert type = %s, want transfer_overdue", alerts[0].AlertType)
	}

	// Repeat sweeps must not stack duplicates.
	created, err = env.alertSvc.SweepOverdueTransfers()
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if created != 0 {
		t.Errorf("second sweep created %d alerts, want 0", created)
	}
}

func TestSweepIgnoresPendingAndOnTime(t *testing.T) {
	env := newTestEnv(t)

	// Pending transfer past its expected delivery: not dispatched, not overdue.
	past := time.Now().Add(-24 * time.Hour)
	if _, err := env.transferSvc.CreateTransfer(&CreateTransferRequest{
		FromBranchID:     env.source.ID,
		ToBranchID:       env.dest.ID,
		ExpectedDelivery: &past,
		Items:            []CreateTransferItemRequest{{ProductID: env.rice.ID, QuantitySent: 5}},
	}, env.admin); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Dispatched transfer still inside its window.
	onTime := env.newTransfer(t, 5)
	if _, err := env.transferSvc.Dispatch(onTime.ID, env.sourceMgr); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	created, err := env.alertSvc.SweepOverdueTransfers()
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if created != 0 {
		t.Errorf("sweep created %d alerts, want 0", created)
	}
}

func TestResolvedAlertDropsFromUnresolvedList(t *testing.T) {
	env := newTestEnv(t)
	_, query := raiseShortageQuery(t, env)
	_ = query

	alerts, err := env.alertSvc.ListAlerts(env.dest.ID, true)
	if err != nil || len(alerts) != 1 {
		t.Fatalf("expected 1 unresolved alert, got %d (err %v)", len(alerts), err)
	}

	if err := env.alertSvc.MarkResolved(alerts[0].ID, env.destMgr); err != nil {
		t.Fatalf("resolve alert: %v", err)
	}

	alerts, err = env.alertSvc.ListAlerts(env.dest.ID, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("resolved alert still listed as unresolved")
	}
}
