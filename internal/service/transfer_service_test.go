package service

import (
	"testing"

	"go-branch-stock-ws/internal/model"
)

func TestCreateTransferRejectsSameBranch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.transferSvc.CreateTransfer(&CreateTransferRequest{
		FromBranchID: env.source.ID,
		ToBranchID:   env.source.ID,
		Items: []CreateTransferItemRequest{
			{ProductID: env.rice.ID, QuantitySent: 10},
		},
	}, env.admin)
	if err == nil {
		t.Fatal("same-branch transfer must be rejected")
	}
}

func TestDispatchMovesSourceStock(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.newTransfer(t, 100)

	if transfer.Status != model.TransferPending {
		t.Fatalf("new transfer status = %s, want pending", transfer.Status)
	}

	dispatched, err := env.transferSvc.Dispatch(transfer.ID, env.sourceMgr)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if dispatched.Status != model.TransferDispatched {
		t.Errorf("status = %s, want dispatched", dispatched.Status)
	}
	if dispatched.DispatchDate == nil {
		t.Error("dispatch date not set")
	}
	if got := env.stockAt(t, env.source.ID, env.rice.ID); got != 900 {
		t.Errorf("source stock = %d, want 900", got)
	}

	var movements []model.StockMovement
	if err := env.db.Where("transfer_id = ?", transfer.ID).Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 1 || movements[0].Type != model.MovementOut || movements[0].Quantity != 100 {
		t.Errorf("expected one OUT movement of 100, got %+v", movements)
	}
}

func TestDispatchOnlyFromPending(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.newTransfer(t, 10)

	if _, err := env.transferSvc.Dispatch(transfer.ID, env.sourceMgr); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	_, err := env.transferSvc.Dispatch(transfer.ID, env.sourceMgr)
	if !IsInvalidState(err) {
		t.Errorf("second dispatch should be a state violation, got %v", err)
	}
	if got := env.stockAt(t, env.source.ID, env.rice.ID); got != 990 {
		t.Errorf("stock deducted twice: %d", got)
	}
}

func TestDispatchForbiddenForDestinationManager(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.newTransfer(t, 10)

	if _, err := env.transferSvc.Dispatch(transfer.ID, env.destMgr); err != ErrForbidden {
		t.Errorf("destination manager dispatch: got %v, want ErrForbidden", err)
	}
}

func TestMarkDeliveredRequiresDispatched(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.newTransfer(t, 10)

	_, err := env.transferSvc.MarkDelivered(transfer.ID, &MarkDeliveredRequest{}, env.destMgr)
	if !IsInvalidState(err) {
		t.Errorf("deliver before dispatch: got %v, want state violation", err)
	}
}

func TestCancelAfterDispatchReturnsStock(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.newTransfer(t, 100)
	if _, err := env.transferSvc.Dispatch(transfer.ID, env.sourceMgr); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	cancelled, err := env.transferSvc.Cancel(transfer.ID, "truck breakdown", env.sourceMgr)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.TransferCancelled {
		t.Errorf("status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.CancelReason != "truck breakdown" {
		t.Errorf("cancel reason = %q", cancelled.CancelReason)
	}
	if got := env.stockAt(t, env.source.ID, env.rice.ID); got != 1000 {
		t.Errorf("source stock after cancel = %d, want 1000", got)
	}
}

func TestCancelPendingLeavesStockAlone(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.newTransfer(t, 100)

	if _, err := env.transferSvc.Cancel(transfer.ID, "changed plans", env.sourceMgr); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := env.stockAt(t, env.source.ID, env.rice.ID); got != 1000 {
		t.Errorf("pending cancel touched stock: %d", got)
	}
	var movements []model.StockMovement
	env.db.Where("transfer_id = ?", transfer.ID).Find(&movements)
	if len(movements) != 0 {
		t.Errorf("pending cancel wrote %d movements", len(movements))
	}
}

func TestCancelConfirmedIsRejected(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.deliveredTransfer(t, 50)

	if _, err := env.receiptSvc.ConfirmReceipt(transfer.ID, &ConfirmReceiptRequest{
		ConfirmationType: ConfirmAcceptAll,
	}, env.destMgr); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	_, err := env.transferSvc.Cancel(transfer.ID, "too late", env.sourceMgr)
	if !IsInvalidState(err) {
		t.Errorf("cancelling a confirmed transfer: got %v, want state violation", err)
	}
}

func TestTransferNumberFormat(t *testing.T) {
	env := newTestEnv(t)
	first := env.newTransfer(t, 1)
	second := env.newTransfer(t, 2)

	if len(first.TransferNumber) != len("TRF-20060102-0001") {
		t.Errorf("transfer number %q has unexpected shape", first.TransferNumber)
	}
	if first.TransferNumber == second.TransferNumber {
		t.Error("transfer numbers must be unique")
	}
}
