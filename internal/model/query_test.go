package model

import "testing"

func TestQueryStatusLifecycle(t *testing.T) {
	tests := []struct {
		status      QueryStatus
		active      bool
		canProgress bool
		canEscalate bool
		canReject   bool
		canResolve  bool
	}{
		{QueryOpen, true, true, true, true, true},
		{QueryInProgress, true, false, true, true, true},
		{QueryEscalated, false, false, false, false, true},
		{QueryResolved, false, false, false, false, false},
		{QueryRejected, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
			if got := tt.status.CanStartProgress(); got != tt.canProgress {
				t.Errorf("CanStartProgress() = %v, want %v", got, tt.canProgress)
			}
			if got := tt.status.CanEscalate(); got != tt.canEscalate {
				t.Errorf("CanEscalate() = %v, want %v", got, tt.canEscalate)
			}
			if got := tt.status.CanReject(); got != tt.canReject {
				t.Errorf("CanReject() = %v, want %v", got, tt.canReject)
			}
			if got := tt.status.CanResolve(); got != tt.canResolve {
				t.Errorf("CanResolve() = %v, want %v", got, tt.canResolve)
			}
		})
	}
}

func TestQueryTypeValid(t *testing.T) {
	valid := []QueryType{
		QueryWeightDifference, QueryQuantityShortage, QueryQualityIssue,
		QueryDamagedGoods, QueryExpiredGoods, QueryMissingItems, QueryOther,
	}
	for _, qt := range valid {
		if !qt.Valid() {
			t.Errorf("%s should be valid", qt)
		}
	}
	if QueryType("wrong_color").Valid() {
		t.Error("unknown query type must be invalid")
	}
}
