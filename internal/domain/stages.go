package domain

// Application is the request form filled in by the salesman (or a guest
// applicant) when the ticket is opened. Free-form strings except the
// enumerated fields, whose allowed values are listed below.
type Application struct {
	Department        string `json:"department"`
	Salesman          string `json:"salesman"`
	ContactPhone      string `json:"contact_phone"`
	ApplyDate         string `json:"apply_date"`
	EndUserName       string `json:"end_user_name"`
	EquipmentVendor   string `json:"equipment_vendor,omitempty"`
	DistributorName   string `json:"distributor_name,omitempty"`
	ContactPerson     string `json:"contact_person"`
	ContactPersonRole string `json:"contact_person_role"`

	ProductName       string `json:"product_name"`
	Model             string `json:"model"`
	SNCode            string `json:"sn_code"`
	Quantity          int    `json:"quantity"`
	DeliveryDate      string `json:"delivery_date,omitempty"`
	MaintenanceRecord string `json:"maintenance_record"`
	WarrantyStatus    string `json:"warranty_status"`
	OtherInfo         string `json:"other_info,omitempty"`

	FaultProductType   string `json:"fault_product_type"`
	ProductMaterial    string `json:"product_material"`
	TorqueUsed         string `json:"torque_used"`
	UsageMethod        string `json:"usage_method"`
	ScrewSpec          string `json:"screw_spec"`
	HasWasher          string `json:"has_washer"`
	ScrewType          string `json:"screw_type"`
	ScrewMaterial      string `json:"screw_material"`
	ScrewGrade         string `json:"screw_grade,omitempty"`
	Frequency          string `json:"frequency,omitempty"`
	DailyUsageHours    string `json:"daily_usage_hours,omitempty"`
	TotalUsageHours    string `json:"total_usage_hours,omitempty"`
	PreviouslyRepaired string `json:"previously_repaired"`
	SupplementaryDesc  string `json:"supplementary_desc,omitempty"`
}

// BusinessReview is written by the business manager when approving.
type BusinessReview struct {
	ApprovalOpinion string `json:"approval_opinion"`
	Signature       string `json:"signature"`
	Date            string `json:"date"`
}

// TechDiagnosis is written by regional tech support. HandlingSuggestion
// decides whether the unit is sent back to the factory.
type TechDiagnosis struct {
	FaultCause         string `json:"fault_cause"`
	FaultDesc          string `json:"fault_desc"`
	HandlingSuggestion string `json:"handling_suggestion"`
	Signature          string `json:"signature"`
	Date               string `json:"date"`
}

// ClerkReceive is written by the after-sales clerk when the unit arrives at
// the factory (or is bounced back unrepaired after the waiting window).
type ClerkReceive struct {
	ReceiveDate        string `json:"receive_date"`
	RepairID           string `json:"repair_id"`
	ReturnedUnrepaired bool   `json:"returned_unrepaired"`
	Date               string `json:"date"`
}

// Repair is the repair technician's inspection result.
type Repair struct {
	FaultCause         string `json:"fault_cause"`
	ProductFaultDetail string `json:"product_fault_detail,omitempty"`
	HasTestReport      string `json:"has_test_report"`
}

// TechDeptReview is the engineering department's sign-off on the repair.
type TechDeptReview struct {
	ReviewOpinion string `json:"review_opinion"`
	Date          string `json:"date"`
}

// MarketWarranty is the market department's warranty judgment. WarrantyType
// decides whether billing goes through internal affairs.
type MarketWarranty struct {
	WarrantyType string `json:"warranty_type"`
	Date         string `json:"date"`
}

// InternalPayment is internal affairs' payment confirmation.
type InternalPayment struct {
	PaymentStatus string `json:"payment_status"`
	Date          string `json:"date"`
}

// ClerkShip is written by the after-sales clerk when shipping the unit back.
type ClerkShip struct {
	Status         string `json:"status"`
	StayDays       string `json:"stay_days,omitempty"`
	CourierCompany string `json:"courier_company,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Date           string `json:"date"`
}

// Branch-deciding values.
const (
	HandlingFactoryRepair = "要求返厂检查维修"
	WarrantyFreeRepair    = "保修期内免费维修"
)

// Allowed values for the enumerated form fields.
var (
	MaintenanceRecords = []string{"有维保过", "无维保过"}
	WarrantyStatuses   = []string{"保修期内", "已过保修期"}
	YesNoOptions       = []string{"有", "无"}

	FaultCauses         = []string{"使用问题", "生产问题", "设计问题"}
	HandlingSuggestions = []string{"电话/视频 远程已处理", "出差客户现场解决", HandlingFactoryRepair}

	RepairFaultCauses   = []string{"使用故障（人为）", "产品本身故障"}
	ProductFaultDetails = []string{"生产问题", "设计结构问题"}
	TestReportStates    = []string{"已出具", "未出具"}

	WarrantyTypes = []string{WarrantyFreeRepair, "保修期外收费维修", "人为故障收费维修", "特批免费维修"}

	PaymentStates = []string{"已收费（全额）", "已收费（特价）"}
	ShipStates    = []string{"已完成维修并检测寄回", "未维修滞留寄回"}
)

// OneOf reports whether v is a member of allowed.
func OneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
