package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "transfer:dispatch"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Dispatch Transfer"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Branch management
	{Code: "branch:view", Name: "View Branch"},
	{Code: "branch:create", Name: "Create Branch"},
	{Code: "branch:update", Name: "Update Branch"},
	// Product management
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	// Transfers
	{Code: "transfer:view", Name: "View Transfer"},
	{Code: "transfer:create", Name: "Create Transfer"},
	{Code: "transfer:dispatch", Name: "Dispatch Transfer"},
	{Code: "transfer:deliver", Name: "Mark Transfer Delivered"},
	{Code: "transfer:cancel", Name: "Cancel Transfer"},
	// Receipts
	{Code: "receipt:confirm", Name: "Confirm Receipt"},
	{Code: "receipt:inspect", Name: "Record Quality Inspection"},
	// Discrepancy queries
	{Code: "query:view", Name: "View Query"},
	{Code: "query:create", Name: "Create Query"},
	{Code: "query:assign", Name: "Assign Query"},
	{Code: "query:respond", Name: "Respond To Query"},
	{Code: "query:escalate", Name: "Escalate Query"},
	{Code: "query:resolve", Name: "Resolve Query"},
	// Reconciliation and financials
	{Code: "reconciliation:create", Name: "Create Reconciliation"},
	{Code: "impact:view", Name: "View Financial Impact"},
	{Code: "impact:create", Name: "Record Financial Impact"},
	// Alerts and dashboard
	{Code: "alert:view", Name: "View Alerts"},
	{Code: "alert:manage", Name: "Manage Alerts"},
	{Code: "dashboard:view", Name: "View Dashboard"},
}

// BranchManagerPrivilegeCodes are the privileges seeded onto the
// BRANCH_MANAGER role: everything receipt-side, nothing administrative.
var BranchManagerPrivilegeCodes = []string{
	"branch:view", "product:view",
	"transfer:view", "transfer:deliver",
	"receipt:confirm", "receipt:inspect",
	"query:view", "query:create", "query:respond", "query:escalate",
	"reconciliation:create",
	"impact:view",
	"alert:view", "alert:manage",
	"dashboard:view",
}
