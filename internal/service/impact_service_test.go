package service

import (
	"testing"

	"go-branch-stock-ws/internal/model"

	"github.com/shopspring/decimal"
)

func recordImpact(t *testing.T, env *testEnv, amount int64, recoverable bool) *model.StockFinancialImpact {
	t.Helper()
	transfer := confirmedTransfer(t, env, 10)
	impact, err := env.impactSvc.RecordImpact(&RecordImpactRequest{
		BranchID:       env.dest.ID,
		ImpactableType: model.ImpactableTransfer,
		ImpactableID:   transfer.ID,
		ImpactType:     model.ImpactDamage,
		Amount:         decimal.NewFromInt(amount),
		IsRecoverable:  recoverable,
		Description:    "forklift damage",
	}, env.admin)
	if err != nil {
		t.Fatalf("record impact: %v", err)
	}
	return impact
}

func TestRecordImpactAndTotals(t *testing.T) {
	env := newTestEnv(t)
	impact := recordImpact(t, env, 150, false)

	if !impact.Amount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("amount = %s, want 150", impact.Amount)
	}
	if !impact.Outstanding().Equal(decimal.NewFromInt(150)) {
		t.Errorf("outstanding = %s, want 150", impact.Outstanding())
	}

	totals, err := env.impactSvc.Totals(&env.dest.ID)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.TotalAmount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("total = %s, want 150", totals.TotalAmount)
	}
	if !totals.Outstanding.Equal(decimal.NewFromInt(150)) {
		t.Errorf("outstanding = %s, want 150", totals.Outstanding)
	}
}

func TestRecordRecoveryCapsAtAmount(t *testing.T) {
	env := newTestEnv(t)
	impact := recordImpact(t, env, 100, true)

	updated, err := env.impactSvc.RecordRecovery(impact.ID, decimal.NewFromInt(60), env.admin)
	if err != nil {
		t.Fatalf("first recovery: %v", err)
	}
	if !updated.RecoveredAmount.Equal(decimal.NewFromInt(60)) {
		t.Errorf("recovered = %s, want 60", updated.RecoveredAmount)
	}

	// Recovering more than remains caps at the impact amount.
	updated, err = env.impactSvc.RecordRecovery(impact.ID, decimal.NewFromInt(90), env.admin)
	if err != nil {
		t.Fatalf("second recovery: %v", err)
	}
	if !updated.RecoveredAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("recovered = %s, want capped at 100", updated.RecoveredAmount)
	}
	if !updated.Outstanding().IsZero() {
		t.Errorf("outstanding = %s, want 0", updated.Outstanding())
	}
}

func TestRecordRecoveryRequiresRecoverable(t *testing.T) {
	env := newTestEnv(t)
	impact := recordImpact(t, env, 100, false)

	if _, err := env.impactSvc.RecordRecovery(impact.ID, decimal.NewFromInt(10), env.admin); err == nil {
		t.Error("recovery on a non-recoverable impact must fail")
	}
}

func TestRecordImpactRejectsNegativeAmount(t *testing.T) {
	env := newTestEnv(t)
	transfer := confirmedTransfer(t, env, 10)

	_, err := env.impactSvc.RecordImpact(&RecordImpactRequest{
		BranchID:       env.dest.ID,
		ImpactableType: model.ImpactableTransfer,
		ImpactableID:   transfer.ID,
		ImpactType:     model.ImpactLoss,
		Amount:         decimal.NewFromInt(-5),
	}, env.admin)
	if err == nil {
		t.Error("negative impact amount must be rejected")
	}
}
