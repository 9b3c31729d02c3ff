package dto

import (
	"time"

	"github.com/spec-kit/repair-service/internal/domain"
)

// CreateTicketRequest mirrors the application form. Enumerated values are
// checked against their allowed sets by the ticket service.
type CreateTicketRequest struct {
	Department        string `json:"department" validate:"required"`
	Salesman          string `json:"salesman" validate:"required"`
	ContactPhone      string `json:"contact_phone" validate:"required"`
	ApplyDate         string `json:"apply_date"`
	EndUserName       string `json:"end_user_name" validate:"required"`
	EquipmentVendor   string `json:"equipment_vendor"`
	DistributorName   string `json:"distributor_name"`
	ContactPerson     string `json:"contact_person" validate:"required"`
	ContactPersonRole string `json:"contact_person_role" validate:"required"`

	ProductName       string `json:"product_name" validate:"required"`
	Model             string `json:"model"`
	SNCode            string `json:"sn_code" validate:"required"`
	Quantity          int    `json:"quantity"`
	DeliveryDate      string `json:"delivery_date"`
	MaintenanceRecord string `json:"maintenance_record" validate:"required"`
	WarrantyStatus    string `json:"warranty_status" validate:"required"`
	OtherInfo         string `json:"other_info"`

	FaultProductType   string `json:"fault_product_type"`
	ProductMaterial    string `json:"product_material"`
	TorqueUsed         string `json:"torque_used"`
	UsageMethod        string `json:"usage_method"`
	ScrewSpec          string `json:"screw_spec"`
	HasWasher          string `json:"has_washer"`
	ScrewType          string `json:"screw_type"`
	ScrewMaterial      string `json:"screw_material"`
	ScrewGrade         string `json:"screw_grade"`
	Frequency          string `json:"frequency"`
	DailyUsageHours    string `json:"daily_usage_hours"`
	TotalUsageHours    string `json:"total_usage_hours"`
	PreviouslyRepaired string `json:"previously_repaired"`
	SupplementaryDesc  string `json:"supplementary_desc"`
}

// Application converts the request into the domain form.
func (r CreateTicketRequest) Application() domain.Application {
	return domain.Application{
		Department:        r.Department,
		Salesman:          r.Salesman,
		ContactPhone:      r.ContactPhone,
		ApplyDate:         r.ApplyDate,
		EndUserName:       r.EndUserName,
		EquipmentVendor:   r.EquipmentVendor,
		DistributorName:   r.DistributorName,
		ContactPerson:     r.ContactPerson,
		ContactPersonRole: r.ContactPersonRole,

		ProductName:       r.ProductName,
		Model:             r.Model,
		SNCode:            r.SNCode,
		Quantity:          r.Quantity,
		DeliveryDate:      r.DeliveryDate,
		MaintenanceRecord: r.MaintenanceRecord,
		WarrantyStatus:    r.WarrantyStatus,
		OtherInfo:         r.OtherInfo,

		FaultProductType:   r.FaultProductType,
		ProductMaterial:    r.ProductMaterial,
		TorqueUsed:         r.TorqueUsed,
		UsageMethod:        r.UsageMethod,
		ScrewSpec:          r.ScrewSpec,
		HasWasher:          r.HasWasher,
		ScrewType:          r.ScrewType,
		ScrewMaterial:      r.ScrewMaterial,
		ScrewGrade:         r.ScrewGrade,
		Frequency:          r.Frequency,
		DailyUsageHours:    r.DailyUsageHours,
		TotalUsageHours:    r.TotalUsageHours,
		PreviouslyRepaired: r.PreviouslyRepaired,
		SupplementaryDesc:  r.SupplementaryDesc,
	}
}

// SubmitActionRequest carries a workflow action. Only the payload matching
// the action is consumed.
type SubmitActionRequest struct {
	Action          string                  `json:"action" validate:"required"`
	BusinessReview  *domain.BusinessReview  `json:"business_review,omitempty"`
	TechDiagnosis   *domain.TechDiagnosis   `json:"tech_diagnosis,omitempty"`
	ClerkReceive    *domain.ClerkReceive    `json:"clerk_receive,omitempty"`
	Repair          *domain.Repair          `json:"repair,omitempty"`
	TechDeptReview  *domain.TechDeptReview  `json:"tech_dept_review,omitempty"`
	MarketWarranty  *domain.MarketWarranty  `json:"market_warranty,omitempty"`
	InternalPayment *domain.InternalPayment `json:"internal_payment,omitempty"`
	ClerkShip       *domain.ClerkShip       `json:"clerk_ship,omitempty"`
}

// OverrideRequest targets an admin override. Target accepts a status name or
// the shorthands "draft" and "close".
type OverrideRequest struct {
	Target string `json:"target" validate:"required"`
}

// CreatedTicketResponse is returned to the (possibly unauthenticated)
// applicant; the id is their tracking handle.
type CreatedTicketResponse struct {
	ID        string              `json:"id"`
	Status    domain.TicketStatus `json:"status"`
	CreatedAt time.Time           `json:"created_at"`
}

// TicketSummary is the listing row.
type TicketSummary struct {
	ID          string              `json:"id"`
	Status      domain.TicketStatus `json:"status"`
	StatusLabel string              `json:"status_label"`
	Department  string              `json:"department"`
	Salesman    string              `json:"salesman"`
	ProductName string              `json:"product_name"`
	EndUserName string              `json:"end_user_name"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TicketDetailResponse provides the full ticket with all stage records
// written so far.
type TicketDetailResponse struct {
	ID              string                  `json:"id"`
	Status          domain.TicketStatus     `json:"status"`
	StatusLabel     string                  `json:"status_label"`
	Application     domain.Application      `json:"application"`
	BusinessReview  *domain.BusinessReview  `json:"business_review,omitempty"`
	TechDiagnosis   *domain.TechDiagnosis   `json:"tech_diagnosis,omitempty"`
	ClerkReceive    *domain.ClerkReceive    `json:"clerk_receive,omitempty"`
	Repair          *domain.Repair          `json:"repair,omitempty"`
	TechDeptReview  *domain.TechDeptReview  `json:"tech_dept_review,omitempty"`
	MarketWarranty  *domain.MarketWarranty  `json:"market_warranty,omitempty"`
	InternalPayment *domain.InternalPayment `json:"internal_payment,omitempty"`
	ClerkShip       *domain.ClerkShip       `json:"clerk_ship,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}
