package service

import (
	"testing"

	"go-branch-stock-ws/internal/model"
)

func confirmedTransfer(t *testing.T, env *testEnv, qty int) *model.StockTransfer {
	t.Helper()
	transfer := env.deliveredTransfer(t, qty)
	confirmed, err := env.receiptSvc.ConfirmReceipt(transfer.ID, &ConfirmReceiptRequest{
		ConfirmationType: ConfirmAcceptAll,
	}, env.destMgr)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	return confirmed
}

func TestReconciliationShortCountAdjustsStock(t *testing.T) {
	env := newTestEnv(t)
	transfer := confirmedTransfer(t, env, 100)

	rec, err := env.reconSvc.CreateReconciliation(transfer.ID, &CreateReconciliationRequest{
		Notes: "monthly count",
		Items: []ReconciliationItemRequest{
			{ProductID: env.rice.ID, SystemQuantity: 100, PhysicalQuantity: 95, Reason: "torn bags discarded"},
		},
	}, env.destMgr)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(rec.Items) != 1 {
		t.Fatalf("expected 1 reconciliation item, got %d", len(rec.Items))
	}
	if rec.Items[0].Variance() != -5 {
		t.Errorf("variance = %d, want -5", rec.Items[0].Variance())
	}

	if got := env.stockAt(t, env.dest.ID, env.rice.ID); got != 95 {
		t.Errorf("destination stock = %d, want 95", got)
	}

	// The confirmed receipt numbers are never rewritten.
	reloaded, _ := env.transferRepo.FindByID(transfer.ID)
	item := reloaded.Items[0]
	if item.QuantityReceived == nil || *item.QuantityReceived != 100 {
		t.Error("reconciliation must not rewrite quantity_received")
	}
}

func TestReconciliationOverCountAddsStock(t *testing.T) {
	env := newTestEnv(t)
	transfer := confirmedTransfer(t, env, 100)

	_, err := env.reconSvc.CreateReconciliation(transfer.ID, &CreateReconciliationRequest{
		Items: []ReconciliationItemRequest{
			{ProductID: env.rice.ID, SystemQuantity: 100, PhysicalQuantity: 103, Reason: "bags found behind racking"},
		},
	}, env.destMgr)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := env.stockAt(t, env.dest.ID, env.rice.ID); got != 103 {
		t.Errorf("destination stock = %d, want 103", got)
	}
}

func TestReconciliationZeroVarianceNoMovement(t *testing.T) {
	env := newTestEnv(t)
	transfer := confirmedTransfer(t, env, 100)

	before := env.stockAt(t, env.dest.ID, env.rice.ID)
	if _, err := env.reconSvc.CreateReconciliation(transfer.ID, &CreateReconciliationRequest{
		Items: []ReconciliationItemRequest{
			{ProductID: env.rice.ID, SystemQuantity: 100, PhysicalQuantity: 100},
		},
	}, env.destMgr); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if got := env.stockAt(t, env.dest.ID, env.rice.ID); got != before {
		t.Errorf("zero variance changed stock from %d to %d", before, got)
	}
}

func TestReconciliationRequiresConfirmed(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.deliveredTransfer(t, 100)

	_, err := env.reconSvc.CreateReconciliation(transfer.ID, &CreateReconciliationRequest{
		Items: []ReconciliationItemRequest{
			{ProductID: env.rice.ID, SystemQuantity: 100, PhysicalQuantity: 95},
		},
	}, env.destMgr)
	if !IsInvalidState(err) {
		t.Errorf("reconciling an unconfirmed transfer: got %v, want state violation", err)
	}
}

func TestReconciliationRejectsForeignProduct(t *testing.T) {
	env := newTestEnv(t)
	transfer := confirmedTransfer(t, env, 100)

	_, err := env.reconSvc.CreateReconciliation(transfer.ID, &CreateReconciliationRequest{
		Items: []ReconciliationItemRequest{
			{ProductID: env.milk.ID, SystemQuantity: 10, PhysicalQuantity: 8},
		},
	}, env.destMgr)
	if err == nil {
		t.Fatal("a product outside the transfer must be rejected")
	}
}
