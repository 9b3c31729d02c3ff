package domain

import "time"

// Role enumerates the organizational roles taking part in the workflow.
type Role string

const (
	RoleApplicant       Role = "applicant"
	RoleBusinessManager Role = "business_manager"
	RoleTechSupport     Role = "tech_support"
	RoleAfterSalesClerk Role = "after_sales_clerk"
	RoleRepairTech      Role = "repair_tech"
	RoleTechDept        Role = "tech_dept"
	RoleMarketDept      Role = "market_dept"
	RoleInternalAffairs Role = "internal_affairs"
)

// AllRoles lists every recognized role.
var AllRoles = []Role{
	RoleApplicant,
	RoleBusinessManager,
	RoleTechSupport,
	RoleAfterSalesClerk,
	RoleRepairTech,
	RoleTechDept,
	RoleMarketDept,
	RoleInternalAffairs,
}

// KnownRole reports whether r is a recognized role.
func KnownRole(r Role) bool {
	for _, role := range AllRoles {
		if role == r {
			return true
		}
	}
	return false
}

// User is an internal account. Department is meaningful only for business
// managers (ticket-department matching); Region only for tech support
// (department-to-region matching).
type User struct {
	Username     string
	Name         string
	Role         Role
	Department   string
	Region       string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
