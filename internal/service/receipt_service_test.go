package service

import (
	"testing"

	"go-branch-stock-ws/internal/model"
)

func TestConfirmAcceptAll(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.deliveredTransfer(t, 100)

	confirmed, err := env.receiptSvc.ConfirmReceipt(transfer.ID, &ConfirmReceiptRequest{
		ConfirmationType: ConfirmAcceptAll,
	}, env.destMgr)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != model.TransferConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}
	if confirmed.ConfirmedDate == nil {
		t.Error("confirmed date not set")
	}
	if got := env.stockAt(t, env.dest.ID, env.rice.ID); got != 100 {
		t.Errorf("destination stock = %d, want 100", got)
	}
	if queries := env.queriesFor(t, transfer.ID); len(queries) != 0 {
		t.Errorf("accept_all raised %d queries", len(queries))
	}

	item := confirmed.Items[0]
	if item.QuantityReceived == nil || *item.QuantityReceived != 100 {
		t.Errorf("quantity_received not recorded")
	}
	if item.Condition != model.ConditionGood {
		t.Errorf("condition = %s, want good", item.Condition)
	}
}

func TestConfirmRejectAll(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.deliveredTransfer(t, 100)

	confirmed, err := env.receiptSvc.ConfirmReceipt(transfer.ID, &ConfirmReceiptRequest{
		ConfirmationType: ConfirmRejectAll,
		RejectionNote:    "entire pallet water damaged",
	}, env.destMgr)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != model.TransferConfirmed {
		t.Errorf("status = %s, want confirmed", confirmed.Status)
	}
	if got := env.stockAt(t, env.dest.ID, env.rice.ID); got != 0 {
		t.Errorf("rejected goods must not enter destination stock, got %d", got)
	}
	if queries := env.queriesFor(t, transfer.ID); len(queries) != 0 {
		t.Errorf("reject_all raised %d queries, discrepancy detection must not run", len(queries))
	}

	item := confirmed.Items[0]
	if item.QuantityReceived == nil || *item.QuantityReceived != 0 {
		t.Errorf("rejected line should record zero received")
	}
}

func TestConfirmPartialShortageRaisesQuery(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.deliveredTransfer(t, 100)
	itemID := transfer.Items[0].ID

	_, err := env.receiptSvc.ConfirmReceipt(transfer.ID, &ConfirmReceiptRequest{
		ConfirmationType: ConfirmPartial,
		Items: []ReceiptLineRequest{
			{ItemID: itemID, QuantityReceived: intPtr(80), Condition: model.ConditionGood},
		},
	}, env.destMgr)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	queries := env.queriesFor(t, transfer.ID)
	if len(queries) != 1 {
		t.Fatalf("expected exactly 1 query, got %d", len(queries))
	}
	q := queries[0]
	if q.QueryType != model.QueryQuantityShortage {
		t.Errorf("type = %s, want quantity_shortage", q.QueryType)
	}
	if q.Priority != model.PriorityHigh {
		t.Errorf("priority = %s, want high (20%% variance)", q.Priority)
	}
	if q.Status != model.QueryOpen {
		t.Errorf("status = %s, want open", q.Status)
	}
	if q.ExpectedQuantity == nil || *q.ExpectedQuantity != 100 || q.ActualQuantity == nil || *q.ActualQuantity != 80 {
		t.Errorf("quantities not recorded on query")
	}

	if got := env.stockAt(t, env.dest.ID, env.rice.ID); got != 80 {
		t.Errorf("destination stock = %d, want the received 80", got)
	}

	// High priority queries surface as branch alerts.
	var alerts []model.StockAlert
	env.db.Where("branch_id = ?", env.dest.ID).Find(&alerts)
	if len(alerts) != 1 {
		t.Errorf("expected 1 alert on the destination branch, got %d", len(alerts))
	}
}

func TestConfirmPartialWithinTolerance(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.deliveredTransfer(t, 100)
	itemID := transfer.Items[0].ID

	_, err := env.receiptSvc.ConfirmReceipt(transfer.ID, &ConfirmReceiptRequest{
		ConfirmationType: ConfirmPartial,
		Items: []ReceiptLineRequest{
			{ItemID: itemID, QuantityReceived: intPtr(96)},
		},
	}, env.destMgr)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if queries := env.queriesFor(t, transfer.ID); len(queries) != 0 {
		t.Errorf("4%% variance raised %d queries, tolerance is 5%%", len(queries))
	}
}

func TestConfirmPartialDamagedFullCount(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.deliveredTransfer(t, 100)
	itemID := transfer.Items[0].ID

	_, err := env.receiptSvc.ConfirmReceipt(transfer.ID, &ConfirmReceiptRequest{
		ConfirmationType: ConfirmPartial,
		Items: []ReceiptLineRequest{
			{ItemID: itemID, QuantityReceived: intPtr(100), Condition: model.ConditionDamaged},
		},
	}, env.destMgr)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	queries := env.queriesFor(t, transfer.ID)
	if len(queries) != 1 {
		t.Fatalf("expected exactly 1 query for damaged full count, got %d", len(queries))
	}
	if queries[0].QueryType != model.QueryDamagedGoods || queries[0].Priority != model.PriorityHigh {
		t.Errorf("got %s/%s, want damaged_goods/high", queries[0].QueryType, queries[0].Priority)
	}
}

func TestConfirmPartialUnknownItemFailsWhole(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.deliveredTransfer(t, 100)
	other := env.deliveredTransfer(t, 50)
	foreignItem := other.Items[0].ID

	_, err := env.receiptSvc.ConfirmReceipt(transfer.ID, &ConfirmReceiptRequest{
		ConfirmationType: ConfirmPartial,
		Items: []ReceiptLineRequest{
			{ItemID: foreignItem, QuantityReceived: intPtr(50)},
		},
	}, env.destMgr)
	if err == nil {
		t.Fatal("a line for a foreign item must fail the whole confirmation")
	}

	reloaded, _ := env.transferRepo.FindByID(transfer.ID)
	if reloaded.Status != model.TransferDelivered {
		t.Errorf("transfer moved to %s despite failed confirmation", reloaded.Status)
	}
	if queries := env.queriesFor(t, transfer.ID); len(queries) != 0 {
		t.Errorf("failed confirmation persisted %d queries", len(queries))
	}
}

func TestConfirmPartialDuplicateItemFailsWhole(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.deliveredTransfer(t, 100)
	itemID := transfer.Items[0].ID

	_, err := env.receiptSvc.ConfirmReceipt(transfer.ID, &ConfirmReceiptRequest{
		ConfirmationType: ConfirmPartial,
		Items: []ReceiptLineRequest{
			{ItemID: itemID, QuantityReceived: intPtr(80)},
			{ItemID: itemID, QuantityReceived: intPtr(80)},
		},
	}, env.destMgr)
	if err == nil {
		t.Fatal("a repeated line for the same item must fail the whole confirmation")
	}

	reloaded, _ := env.transferRepo.FindByID(transfer.ID)
	if reloaded.Status != model.TransferDelivered {
		t.Errorf("transfer moved to %s despite failed confirmation", reloaded.Status)
	}
	if got := env.stockAt(t, env.dest.ID, env.rice.ID); got != 0 {
		t.Errorf("destination stock = %d, duplicate lines must not reach the ledger", got)
	}
}

func TestConfirmRequiresDelivered(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.newTransfer(t, 10)

	_, err := env.receiptSvc.ConfirmReceipt(transfer.ID, &ConfirmReceiptRequest{
		ConfirmationType: ConfirmAcceptAll,
	}, env.destMgr)
	if !IsInvalidState(err) {
		t.Errorf("confirming a pending transfer: got %v, want state violation", err)
	}
}

func TestConfirmForbiddenForSourceManager(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.deliveredTransfer(t, 10)

	_, err := env.receiptSvc.ConfirmReceipt(transfer.ID, &ConfirmReceiptRequest{
		ConfirmationType: ConfirmAcceptAll,
	}, env.sourceMgr)
	if err != ErrForbidden {
		t.Errorf("source manager confirmation: got %v, want ErrForbidden", err)
	}
}

func TestRecordInspectionPoorRating(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.deliveredTransfer(t, 100)
	itemID := transfer.Items[0].ID

	queries, err := env.receiptSvc.RecordInspection(itemID, &InspectionRequest{
		QualityRating: model.RatingPoor,
		Notes:         "packaging crushed",
	}, env.destMgr)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if len(queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(queries))
	}
	if queries[0].QueryType != model.QueryQualityIssue || queries[0].Priority != model.PriorityHigh {
		t.Errorf("got %s/%s, want quality_issue/high", queries[0].QueryType, queries[0].Priority)
	}

	item, _ := env.transferRepo.FindItem(itemID)
	if item.QualityRating != model.RatingPoor {
		t.Errorf("quality rating not stored")
	}
	if item.InspectedAt == nil {
		t.Error("inspection timestamp not stored")
	}
}

func TestRecordInspectionDedupesActiveQuery(t *testing.T) {
	env := newTestEnv(t)
	transfer := env.deliveredTransfer(t, 100)
	itemID := transfer.Items[0].ID

	first, err := env.receiptSvc.RecordInspection(itemID, &InspectionRequest{QualityRating: model.RatingPoor}, env.destMgr)
	if err != nil {
		t.Fatalf("first inspect: %v", err)
	}
	second, err := env.receiptSvc.RecordInspection(itemID, &InspectionRequest{QualityRating: model.RatingPoor}, env.destMgr)
	if err != nil {
		t.Fatalf("second inspect: %v", err)
	}
	if len(first) != 1 || len(second) != 0 {
		t.Errorf("duplicate active query created: first=%d second=%d", len(first), len(second))
	}
}
