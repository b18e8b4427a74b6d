package jwt

import (
	"testing"

	"github.com/google/uuid"
)

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()
	branchID := uuid.New()
	tokenVersion := uuid.New().String()

	token, err := GenerateToken(userID, "manager@example.com", "Branch Manager", "BRANCH_MANAGER", &branchID, []string{"transfer:view", "receipt:confirm"}, tokenVersion)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user_id = %s, want %s", claims.UserID, userID)
	}
	if claims.BranchID == nil || *claims.BranchID != branchID {
		t.Error("branch_id claim not round-tripped")
	}
	if claims.RoleCode != "BRANCH_MANAGER" {
		t.Errorf("role_code = %s", claims.RoleCode)
	}
	if claims.TokenVersion != tokenVersion {
		t.Error("token_version claim not round-tripped")
	}
	if len(claims.Privileges) != 2 {
		t.Errorf("privileges = %v", claims.Privileges)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Error("garbage token must fail validation")
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	token, err := GenerateToken(uuid.New(), "a@example.com", "A", "ADMIN", nil, nil, "v1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	tampered := token[:len(token)-2] + "xx"
	if _, err := ValidateToken(tampered); err == nil {
		t.Error("tampered signature must fail validation")
	}
}
