package model

import (
	"testing"

	"github.com/google/uuid"
)

func TestTransferStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from TransferStatus
		to   TransferStatus
		want bool
	}{
		{"pending to dispatched", TransferPending, TransferDispatched, true},
		{"dispatched to delivered", TransferDispatched, TransferDelivered, true},
		{"delivered to confirmed", TransferDelivered, TransferConfirmed, true},
		{"pending to cancelled", TransferPending, TransferCancelled, true},
		{"dispatched to cancelled", TransferDispatched, TransferCancelled, true},
		{"delivered to cancelled", TransferDelivered, TransferCancelled, true},

		{"pending skips to delivered", TransferPending, TransferDelivered, false},
		{"pending skips to confirmed", TransferPending, TransferConfirmed, false},
		{"dispatched skips to confirmed", TransferDispatched, TransferConfirmed, false},
		{"delivered back to dispatched", TransferDelivered, TransferDispatched, false},
		{"confirmed to cancelled", TransferConfirmed, TransferCancelled, false},
		{"cancelled to dispatched", TransferCancelled, TransferDispatched, false},
		{"cancelled to cancelled", TransferCancelled, TransferCancelled, false},
		{"confirmed to delivered", TransferConfirmed, TransferDelivered, false},
		{"unknown target", TransferPending, TransferStatus("lost"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestTransferStatusIsTerminal(t *testing.T) {
	terminal := map[TransferStatus]bool{
		TransferPending:    false,
		TransferDispatched: false,
		TransferDelivered:  false,
		TransferConfirmed:  true,
		TransferCancelled:  true,
	}
	for status, want := range terminal {
		if got := status.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", status, got, want)
		}
	}
}

func TestCanActOnTransfer(t *testing.T) {
	fromBranch := uuid.New()
	toBranch := uuid.New()
	otherBranch := uuid.New()

	transfer := &StockTransfer{
		FromBranchID: fromBranch,
		ToBranchID:   toBranch,
	}

	userAt := func(roleCode string, branchID *uuid.UUID) *User {
		return &User{
			Role:     &Role{Code: roleCode},
			BranchID: branchID,
		}
	}

	tests := []struct {
		name string
		user *User
		side TransferSide
		want bool
	}{
		{"super admin any side", userAt(RoleSuperAdmin, nil), SideSource, true},
		{"admin any side", userAt(RoleAdmin, nil), SideDestination, true},
		{"source manager on source", userAt(RoleBranchManager, &fromBranch), SideSource, true},
		{"source manager on destination", userAt(RoleBranchManager, &fromBranch), SideDestination, false},
		{"destination manager on destination", userAt(RoleBranchManager, &toBranch), SideDestination, true},
		{"destination manager on source", userAt(RoleBranchManager, &toBranch), SideSource, false},
		{"unrelated branch manager", userAt(RoleBranchManager, &otherBranch), SideDestination, false},
		{"manager without branch", userAt(RoleBranchManager, nil), SideSource, false},
		{"nil user", nil, SideSource, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanActOnTransfer(tt.user, transfer, tt.side); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if CanActOnTransfer(userAt(RoleSuperAdmin, nil), nil, SideSource) {
		t.Error("nil transfer must never be actionable")
	}
}
