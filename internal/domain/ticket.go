package domain

import "time"

// TicketStatus enumerates lifecycle states for repair tickets. Each pending
// state is owned by exactly one role; the workflow service enforces that
// ownership on every transition.
type TicketStatus string

const (
	TicketStatusDraft                  TicketStatus = "DRAFT"
	TicketStatusPendingBusinessReview  TicketStatus = "PENDING_BUSINESS_REVIEW"
	TicketStatusPendingTechSupport     TicketStatus = "PENDING_TECH_SUPPORT"
	TicketStatusPendingClerkReceive    TicketStatus = "PENDING_CLERK_RECEIVE"
	TicketStatusPendingRepair          TicketStatus = "PENDING_REPAIR"
	TicketStatusPendingTechDeptReview  TicketStatus = "PENDING_TECH_DEPT_REVIEW"
	TicketStatusPendingMarketWarranty  TicketStatus = "PENDING_MARKET_WARRANTY"
	TicketStatusPendingInternalAffairs TicketStatus = "PENDING_INTERNAL_AFFAIRS"
	TicketStatusPendingClerkShip       TicketStatus = "PENDING_CLERK_SHIP"
	TicketStatusPendingFinalClosure    TicketStatus = "PENDING_FINAL_CLOSURE"
	TicketStatusClosed                 TicketStatus = "CLOSED"
)

// AllStatuses lists every status in workflow order. Administrative
// reassignment may target any of these.
var AllStatuses = []TicketStatus{
	TicketStatusDraft,
	TicketStatusPendingBusinessReview,
	TicketStatusPendingTechSupport,
	TicketStatusPendingClerkReceive,
	TicketStatusPendingRepair,
	TicketStatusPendingTechDeptReview,
	TicketStatusPendingMarketWarranty,
	TicketStatusPendingInternalAffairs,
	TicketStatusPendingClerkShip,
	TicketStatusPendingFinalClosure,
	TicketStatusClosed,
}

// StatusLabels maps each status to its customer-facing display label.
var StatusLabels = map[TicketStatus]string{
	TicketStatusDraft:                  "草稿 (申请人)",
	TicketStatusPendingBusinessReview:  "待业务主管审核",
	TicketStatusPendingTechSupport:     "待技术支持诊断",
	TicketStatusPendingClerkReceive:    "待福士营业签收",
	TicketStatusPendingRepair:          "待维修员检测",
	TicketStatusPendingTechDeptReview:  "待技术部审核",
	TicketStatusPendingMarketWarranty:  "待市场部保修判定",
	TicketStatusPendingInternalAffairs: "待内务部收费确认",
	TicketStatusPendingClerkShip:       "待福士营业发货",
	TicketStatusPendingFinalClosure:    "待市场部结案",
	TicketStatusClosed:                 "已结案",
}

// KnownStatus reports whether s is a member of the status set.
func KnownStatus(s TicketStatus) bool {
	_, ok := StatusLabels[s]
	return ok
}

// Terminal reports whether no further workflow action can apply to s.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusClosed
}

// Label returns the display label for the status.
func (s TicketStatus) Label() string {
	return StatusLabels[s]
}

// Ticket is the aggregate for a repair request. The application record is
// written at creation; every other stage record is written exactly once by
// the role that owns the corresponding pending status. A stage record is
// present iff the ticket has passed that stage, except after an admin
// override which rewrites status without touching records.
type Ticket struct {
	ID              string
	Status          TicketStatus
	Application     Application
	BusinessReview  *BusinessReview
	TechDiagnosis   *TechDiagnosis
	ClerkReceive    *ClerkReceive
	Repair          *Repair
	TechDeptReview  *TechDeptReview
	MarketWarranty  *MarketWarranty
	InternalPayment *InternalPayment
	ClerkShip       *ClerkShip
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
