package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-service/internal/domain"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

func newWorkflowFixture(t *testing.T) (*WorkflowService, *fakeTicketRepo) {
	t.Helper()
	repo := newFakeTicketRepo()
	svc := NewWorkflowService(WorkflowDependencies{
		TicketRepo: repo,
		Logger:     zap.NewNop(),
	})
	return svc, repo
}

func seedTicket(t *testing.T, repo *fakeTicketRepo, status domain.TicketStatus) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		ID:     "TK-20260901-ABCDEF",
		Status: status,
		Application: domain.Application{
			Department:  "上海办",
			Salesman:    "张三",
			ProductName: "定扭扳手",
			EndUserName: "某电力公司",
		},
	}
	require.NoError(t, repo.Create(context.Background(), ticket))
	return ticket
}

func userWithRole(role domain.Role) *domain.User {
	return &domain.User{Username: "actor", Name: "操作员", Role: role}
}

func requireDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	require.Equal(t, code, de.Code)
}

func TestWorkflowFactoryRepairPath(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ctx := context.Background()
	seedTicket(t, repo, domain.TicketStatusPendingBusinessReview)
	id := "TK-20260901-ABCDEF"

	ticket, err := svc.SubmitAction(ctx, userWithRole(domain.RoleBusinessManager), id, ActionApproveBusiness, ActionPayload{
		BusinessReview: &domain.BusinessReview{ApprovalOpinion: "同意返修", Signature: "李主管"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingTechSupport, ticket.Status)
	require.NotNil(t, ticket.BusinessReview)
	require.NotEmpty(t, ticket.BusinessReview.Date)

	ticket, err = svc.SubmitAction(ctx, userWithRole(domain.RoleTechSupport), id, ActionTechDiagnose, ActionPayload{
		TechDiagnosis: &domain.TechDiagnosis{
			FaultCause:         "生产问题",
			FaultDesc:          "扭矩偏差超标",
			HandlingSuggestion: domain.HandlingFactoryRepair,
			Signature:          "王工",
		},
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingClerkReceive, ticket.Status)

	ticket, err = svc.SubmitAction(ctx, userWithRole(domain.RoleAfterSalesClerk), id, ActionClerkReceive, ActionPayload{
		ClerkReceive: &domain.ClerkReceive{ReceiveDate: "2026-09-01"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingRepair, ticket.Status)
	require.True(t, strings.HasPrefix(ticket.ClerkReceive.RepairID, "R-"))
	require.Len(t, ticket.ClerkReceive.RepairID, 10)

	ticket, err = svc.SubmitAction(ctx, userWithRole(domain.RoleRepairTech), id, ActionRepairComplete, ActionPayload{
		Repair: &domain.Repair{
			FaultCause:         "产品本身故障",
			ProductFaultDetail: "生产问题",
			HasTestReport:      "已出具",
		},
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingTechDeptReview, ticket.Status)

	ticket, err = svc.SubmitAction(ctx, userWithRole(domain.RoleTechDept), id, ActionTechDeptReview, ActionPayload{
		TechDeptReview: &domain.TechDeptReview{ReviewOpinion: "维修合格"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingMarketWarranty, ticket.Status)

	ticket, err = svc.SubmitAction(ctx, userWithRole(domain.RoleMarketDept), id, ActionMarketWarranty, ActionPayload{
		MarketWarranty: &domain.MarketWarranty{WarrantyType: domain.WarrantyFreeRepair},
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingClerkShip, ticket.Status)

	ticket, err = svc.SubmitAction(ctx, userWithRole(domain.RoleAfterSalesClerk), id, ActionClerkShip, ActionPayload{
		ClerkShip: &domain.ClerkShip{Status: "已完成维修并检测寄回", CourierCompany: "顺丰", TrackingNumber: "SF123456"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingFinalClosure, ticket.Status)

	ticket, err = svc.SubmitAction(ctx, userWithRole(domain.RoleMarketDept), id, ActionFinalClose, ActionPayload{})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusClosed, ticket.Status)
	require.True(t, ticket.Status.Terminal())

	stored, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusClosed, stored.Status)
	require.NotNil(t, stored.BusinessReview)
	require.NotNil(t, stored.TechDiagnosis)
	require.NotNil(t, stored.ClerkReceive)
	require.NotNil(t, stored.Repair)
	require.NotNil(t, stored.TechDeptReview)
	require.NotNil(t, stored.MarketWarranty)
	require.Nil(t, stored.InternalPayment)
	require.NotNil(t, stored.ClerkShip)
}

func TestTechDiagnoseRemoteResolutionSkipsFactory(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ctx := context.Background()
	ticket := seedTicket(t, repo, domain.TicketStatusPendingTechSupport)

	updated, err := svc.SubmitAction(ctx, userWithRole(domain.RoleTechSupport), ticket.ID, ActionTechDiagnose, ActionPayload{
		TechDiagnosis: &domain.TechDiagnosis{
			FaultCause:         "使用问题",
			HandlingSuggestion: "电话/视频 远程已处理",
			Signature:          "王工",
		},
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingFinalClosure, updated.Status)
	require.Nil(t, updated.ClerkReceive)
}

func TestClerkReceiveReturnedUnrepaired(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ctx := context.Background()
	ticket := seedTicket(t, repo, domain.TicketStatusPendingClerkReceive)

	updated, err := svc.SubmitAction(ctx, userWithRole(domain.RoleAfterSalesClerk), ticket.ID, ActionClerkReceive, ActionPayload{
		ClerkReceive: &domain.ClerkReceive{ReturnedUnrepaired: true},
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingFinalClosure, updated.Status)
	// The repair order number is minted even when the unit bounces back.
	require.NotEmpty(t, updated.ClerkReceive.RepairID)
	require.NotEmpty(t, updated.ClerkReceive.ReceiveDate)
}

func TestChargeableWarrantyGoesThroughInternalAffairs(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ctx := context.Background()
	ticket := seedTicket(t, repo, domain.TicketStatusPendingMarketWarranty)

	updated, err := svc.SubmitAction(ctx, userWithRole(domain.RoleMarketDept), ticket.ID, ActionMarketWarranty, ActionPayload{
		MarketWarranty: &domain.MarketWarranty{WarrantyType: "保修期外收费维修"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingInternalAffairs, updated.Status)

	updated, err = svc.SubmitAction(ctx, userWithRole(domain.RoleInternalAffairs), ticket.ID, ActionInternalConfirm, ActionPayload{
		InternalPayment: &domain.InternalPayment{PaymentStatus: "已收费（全额）"},
	})
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingClerkShip, updated.Status)
	require.NotNil(t, updated.InternalPayment)
}

func TestSubmitActionUnknownAction(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ticket := seedTicket(t, repo, domain.TicketStatusPendingBusinessReview)

	_, err := svc.SubmitAction(context.Background(), userWithRole(domain.RoleBusinessManager), ticket.ID, "escalate", ActionPayload{})
	requireDomainErrorCode(t, err, "VALIDATION_FAILED")
}

func TestSubmitActionWrongStatus(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ctx := context.Background()
	ticket := seedTicket(t, repo, domain.TicketStatusPendingTechSupport)

	_, err := svc.SubmitAction(ctx, userWithRole(domain.RoleBusinessManager), ticket.ID, ActionApproveBusiness, ActionPayload{
		BusinessReview: &domain.BusinessReview{ApprovalOpinion: "同意"},
	})
	requireDomainErrorCode(t, err, "INVALID_TRANSITION")

	stored, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingTechSupport, stored.Status)
	require.Nil(t, stored.BusinessReview)
}

func TestSubmitActionWrongRole(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ctx := context.Background()
	ticket := seedTicket(t, repo, domain.TicketStatusPendingBusinessReview)

	_, err := svc.SubmitAction(ctx, userWithRole(domain.RoleRepairTech), ticket.ID, ActionApproveBusiness, ActionPayload{
		BusinessReview: &domain.BusinessReview{ApprovalOpinion: "同意"},
	})
	requireDomainErrorCode(t, err, "FORBIDDEN")

	stored, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingBusinessReview, stored.Status)
}

func TestSubmitActionMissingPayload(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ctx := context.Background()
	ticket := seedTicket(t, repo, domain.TicketStatusPendingBusinessReview)

	_, err := svc.SubmitAction(ctx, userWithRole(domain.RoleBusinessManager), ticket.ID, ActionApproveBusiness, ActionPayload{})
	requireDomainErrorCode(t, err, "VALIDATION_FAILED")

	stored, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusPendingBusinessReview, stored.Status)
}

func TestSubmitActionInvalidEnumValue(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ticket := seedTicket(t, repo, domain.TicketStatusPendingTechSupport)

	_, err := svc.SubmitAction(context.Background(), userWithRole(domain.RoleTechSupport), ticket.ID, ActionTechDiagnose, ActionPayload{
		TechDiagnosis: &domain.TechDiagnosis{
			FaultCause:         "其它",
			HandlingSuggestion: domain.HandlingFactoryRepair,
		},
	})
	requireDomainErrorCode(t, err, "VALIDATION_FAILED")
}

func TestSubmitActionIdempotentRejection(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ctx := context.Background()
	ticket := seedTicket(t, repo, domain.TicketStatusPendingBusinessReview)
	payload := ActionPayload{BusinessReview: &domain.BusinessReview{ApprovalOpinion: "同意", Signature: "李主管"}}

	_, err := svc.SubmitAction(ctx, userWithRole(domain.RoleBusinessManager), ticket.ID, ActionApproveBusiness, payload)
	require.NoError(t, err)

	// Resubmitting the same action fails because the ticket moved on.
	_, err = svc.SubmitAction(ctx, userWithRole(domain.RoleBusinessManager), ticket.ID, ActionApproveBusiness, payload)
	requireDomainErrorCode(t, err, "INVALID_TRANSITION")
}

func TestSubmitActionNotFound(t *testing.T) {
	svc, _ := newWorkflowFixture(t)

	_, err := svc.SubmitAction(context.Background(), userWithRole(domain.RoleBusinessManager), "TK-MISSING", ActionApproveBusiness, ActionPayload{
		BusinessReview: &domain.BusinessReview{ApprovalOpinion: "同意"},
	})
	requireDomainErrorCode(t, err, "NOT_FOUND")
}

// stalePhantomRepo reports an out-of-date status on read, emulating another
// actor winning the write race between this actor's read and write.
type stalePhantomRepo struct {
	*fakeTicketRepo
	reportStatus domain.TicketStatus
}

func (r *stalePhantomRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := r.fakeTicketRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket.Status = r.reportStatus
	return ticket, nil
}

func TestSubmitActionLostRaceSurfacesConflict(t *testing.T) {
	inner := newFakeTicketRepo()
	seedTicket(t, inner, domain.TicketStatusPendingTechSupport)
	svc := NewWorkflowService(WorkflowDependencies{
		TicketRepo: &stalePhantomRepo{fakeTicketRepo: inner, reportStatus: domain.TicketStatusPendingBusinessReview},
		Logger:     zap.NewNop(),
	})

	_, err := svc.SubmitAction(context.Background(), userWithRole(domain.RoleBusinessManager), "TK-20260901-ABCDEF", ActionApproveBusiness, ActionPayload{
		BusinessReview: &domain.BusinessReview{ApprovalOpinion: "同意"},
	})
	requireDomainErrorCode(t, err, "CONFLICT")
}

func TestAdminOverride(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ctx := context.Background()
	ticket := seedTicket(t, repo, domain.TicketStatusPendingRepair)

	updated, err := svc.AdminOverride(ctx, userWithRole(domain.RoleMarketDept), ticket.ID, domain.TicketStatusDraft)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusDraft, updated.Status)

	// Records are untouched; only the status moved.
	stored, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TicketStatusDraft, stored.Status)
	require.Nil(t, stored.Repair)

	// Pending-repair work against the reassigned ticket now bounces.
	_, err = svc.SubmitAction(ctx, userWithRole(domain.RoleRepairTech), ticket.ID, ActionRepairComplete, ActionPayload{
		Repair: &domain.Repair{FaultCause: "产品本身故障", HasTestReport: "已出具"},
	})
	requireDomainErrorCode(t, err, "INVALID_TRANSITION")
}

func TestAdminOverrideRequiresMarketDept(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ticket := seedTicket(t, repo, domain.TicketStatusPendingRepair)

	for _, role := range domain.AllRoles {
		if role == domain.RoleMarketDept {
			continue
		}
		_, err := svc.AdminOverride(context.Background(), userWithRole(role), ticket.ID, domain.TicketStatusClosed)
		requireDomainErrorCode(t, err, "FORBIDDEN")
	}
}

func TestAdminOverrideRejectsClosedTicket(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ticket := seedTicket(t, repo, domain.TicketStatusClosed)

	_, err := svc.AdminOverride(context.Background(), userWithRole(domain.RoleMarketDept), ticket.ID, domain.TicketStatusDraft)
	requireDomainErrorCode(t, err, "INVALID_TRANSITION")
}

func TestAdminOverrideRejectsUnknownStatus(t *testing.T) {
	svc, repo := newWorkflowFixture(t)
	ticket := seedTicket(t, repo, domain.TicketStatusPendingRepair)

	_, err := svc.AdminOverride(context.Background(), userWithRole(domain.RoleMarketDept), ticket.ID, domain.TicketStatus("ARCHIVED"))
	requireDomainErrorCode(t, err, "VALIDATION_FAILED")
}
