package service

import (
	"testing"

	"go-branch-stock-ws/internal/model"

	"github.com/shopspring/decimal"
)

// raiseShortageQuery confirms a short receipt so one open query exists.
func raiseShortageQuery(t *testing.T, env *testEnv) (*model.StockTransfer, model.StockTransferQuery) {
	t.Helper()
	transfer := env.deliveredTransfer(t, 100)
	_, err := env.receiptSvc.ConfirmReceipt(transfer.ID, &ConfirmReceiptRequest{
		ConfirmationType: ConfirmPartial,
		Items: []ReceiptLineRequest{
			{ItemID: transfer.Items[0].ID, QuantityReceived: intPtr(80)},
		},
	}, env.destMgr)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	queries := env.queriesFor(t, transfer.ID)
	if len(queries) != 1 {
		t.Fatalf("expected 1 query, got %d", len(queries))
	}
	return transfer, queries[0]
}

func TestQueryNumberFormat(t *testing.T) {
	env := newTestEnv(t)
	_, query := raiseShortageQuery(t, env)

	if len(query.QueryNumber) != len("QRY-20060102-0001") {
		t.Errorf("query number %q has unexpected shape", query.QueryNumber)
	}
}

func TestQueryLifecycleHappyPath(t *testing.T) {
	env := newTestEnv(t)
	_, query := raiseShortageQuery(t, env)

	assigned, err := env.querySvc.AssignQuery(query.ID, env.destMgr.ID, env.admin)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assigned.AssignedToID == nil || *assigned.AssignedToID != env.destMgr.ID {
		t.Error("assignee not recorded")
	}
	if assigned.Status != model.QueryOpen {
		t.Errorf("assignment changed status to %s", assigned.Status)
	}

	started, err := env.querySvc.StartProgress(query.ID, env.destMgr)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != model.QueryInProgress {
		t.Errorf("status = %s, want in_progress", started.Status)
	}

	if _, err := env.querySvc.AddResponse(query.ID, &AddResponseRequest{
		Message: "supplier confirmed the short pick",
	}, env.destMgr); err != nil {
		t.Fatalf("respond: %v", err)
	}

	resolved, err := env.querySvc.ResolveQuery(query.ID, &ResolveQueryRequest{
		Resolution: "credit note issued for 20 bags",
	}, env.admin)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != model.QueryResolved {
		t.Errorf("status = %s, want resolved", resolved.Status)
	}
	if resolved.ResolvedAt == nil {
		t.Error("resolved_at not set")
	}
	if len(resolved.Responses) == 0 {
		t.Error("responses not loaded with the query")
	}
}

func TestResolveRejectedQueryFails(t *testing.T) {
	env := newTestEnv(t)
	_, query := raiseShortageQuery(t, env)

	if _, err := env.querySvc.RejectQuery(query.ID, "recount found all bags", env.admin); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err := env.querySvc.ResolveQuery(query.ID, &ResolveQueryRequest{Resolution: "n/a"}, env.admin)
	if !IsInvalidState(err) {
		t.Errorf("resolving a rejected query: got %v, want state violation", err)
	}
}

func TestEscalatedQueryCanStillResolve(t *testing.T) {
	env := newTestEnv(t)
	_, query := raiseShortageQuery(t, env)

	escalated, err := env.querySvc.EscalateQuery(query.ID, "no supplier response in 3 days", env.destMgr)
	if err != nil {
		t.Fatalf("escalate: %v", err)
	}
	if escalated.Status != model.QueryEscalated {
		t.Errorf("status = %s, want escalated", escalated.Status)
	}

	// Escalation is recorded on the thread.
	found := false
	for _, r := range escalated.Responses {
		if r.Message == "Escalated: no supplier response in 3 days" {
			found = true
		}
	}
	if !found {
		t.Error("escalation reason not recorded as a response")
	}

	if _, err := env.querySvc.EscalateQuery(query.ID, "again", env.destMgr); !IsInvalidState(err) {
		t.Errorf("double escalation: got %v, want state violation", err)
	}

	resolved, err := env.querySvc.ResolveQuery(query.ID, &ResolveQueryRequest{Resolution: "regional manager approved write-off"}, env.admin)
	if err != nil {
		t.Fatalf("resolve from escalated: %v", err)
	}
	if resolved.Status != model.QueryResolved {
		t.Errorf("status = %s, want resolved", resolved.Status)
	}
}

func TestResolveWithDerivedImpact(t *testing.T) {
	env := newTestEnv(t)
	_, query := raiseShortageQuery(t, env)

	if _, err := env.querySvc.ResolveQuery(query.ID, &ResolveQueryRequest{
		Resolution: "20 bags written off",
		Impact:     &ImpactInput{ImpactType: model.ImpactLoss},
	}, env.admin); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	var impacts []model.StockFinancialImpact
	if err := env.db.Where("impactable_id = ?", query.ID).Find(&impacts).Error; err != nil {
		t.Fatalf("load impacts: %v", err)
	}
	if len(impacts) != 1 {
		t.Fatalf("expected 1 impact, got %d", len(impacts))
	}
	// 20 missing bags at 12 each.
	want := decimal.NewFromInt(240)
	if !impacts[0].Amount.Equal(want) {
		t.Errorf("amount = %s, want %s", impacts[0].Amount, want)
	}
	if impacts[0].BranchID != env.dest.ID {
		t.Error("impact not booked against the destination branch")
	}
}

func TestManualQueryDuplicateGuard(t *testing.T) {
	env := newTestEnv(t)
	transfer, query := raiseShortageQuery(t, env)

	_, err := env.querySvc.CreateQuery(&CreateQueryRequest{
		StockTransferID:     transfer.ID,
		StockTransferItemID: query.StockTransferItemID,
		QueryType:           model.QueryQuantityShortage,
		Title:               "duplicate shortage report",
	}, env.destMgr)
	if err == nil {
		t.Fatal("second active query of the same type on one item must be rejected")
	}

	// A different type on the same item is fine.
	created, err := env.querySvc.CreateQuery(&CreateQueryRequest{
		StockTransferID:     transfer.ID,
		StockTransferItemID: query.StockTransferItemID,
		QueryType:           model.QueryOther,
		Title:               "pallet label mismatch",
	}, env.destMgr)
	if err != nil {
		t.Fatalf("different-type query: %v", err)
	}
	if created.Priority != model.PriorityMedium {
		t.Errorf("default priority = %s, want medium", created.Priority)
	}
}

func TestRejectQueryRecordsReasonWithStatus(t *testing.T) {
	env := newTestEnv(t)
	_, query := raiseShortageQuery(t, env)

	rejected, err := env.querySvc.RejectQuery(query.ID, "recount found all bags", env.admin)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != model.QueryRejected {
		t.Errorf("status = %s, want rejected", rejected.Status)
	}

	responses, err := env.queryRepo.FindResponses(query.ID)
	if err != nil {
		t.Fatalf("find responses: %v", err)
	}
	found := false
	for _, r := range responses {
		if r.Message == "Rejected: recount found all bags" {
			found = true
		}
	}
	if !found {
		t.Error("rejection reason not recorded as a response")
	}
}

func TestRejectQueryRequiresReason(t *testing.T) {
	env := newTestEnv(t)
	_, query := raiseShortageQuery(t, env)

	if _, err := env.querySvc.RejectQuery(query.ID, "", env.admin); err == nil {
		t.Error("rejection without a reason must fail")
	}
}
