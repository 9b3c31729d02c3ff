package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/events"
	"github.com/spec-kit/repair-service/internal/repository"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// Action names accepted by SubmitAction.
const (
	ActionApproveBusiness = "approve_business"
	ActionTechDiagnose    = "tech_diagnose"
	ActionClerkReceive    = "clerk_receive"
	ActionRepairComplete  = "repair_complete"
	ActionTechDeptReview  = "tech_dept_review"
	ActionMarketWarranty  = "market_warranty"
	ActionInternalConfirm = "internal_confirm"
	ActionClerkShip       = "clerk_ship"
	ActionFinalClose      = "final_close"
)

// ActionPayload carries the stage data for whichever action is submitted.
// Exactly one field is consumed per action; the rest are ignored.
type ActionPayload struct {
	BusinessReview  *domain.BusinessReview
	TechDiagnosis   *domain.TechDiagnosis
	ClerkReceive    *domain.ClerkReceive
	Repair          *domain.Repair
	TechDeptReview  *domain.TechDeptReview
	MarketWarranty  *domain.MarketWarranty
	InternalPayment *domain.InternalPayment
	ClerkShip       *domain.ClerkShip
}

// transition ties an action to the status it may fire from, the role that
// owns it, and the function that writes the stage record and picks the next
// status.
type transition struct {
	status domain.TicketStatus
	role   domain.Role
	apply  func(ticket *domain.Ticket, payload ActionPayload, today string) (domain.TicketStatus, error)
}

var transitions = map[string]transition{
	ActionApproveBusiness: {
		status: domain.TicketStatusPendingBusinessReview,
		role:   domain.RoleBusinessManager,
		apply:  applyBusinessReview,
	},
	ActionTechDiagnose: {
		status: domain.TicketStatusPendingTechSupport,
		role:   domain.RoleTechSupport,
		apply:  applyTechDiagnosis,
	},
	ActionClerkReceive: {
		status: domain.TicketStatusPendingClerkReceive,
		role:   domain.RoleAfterSalesClerk,
		apply:  applyClerkReceive,
	},
	ActionRepairComplete: {
		status: domain.TicketStatusPendingRepair,
		role:   domain.RoleRepairTech,
		apply:  applyRepair,
	},
	ActionTechDeptReview: {
		status: domain.TicketStatusPendingTechDeptReview,
		role:   domain.RoleTechDept,
		apply:  applyTechDeptReview,
	},
	ActionMarketWarranty: {
		status: domain.TicketStatusPendingMarketWarranty,
		role:   domain.RoleMarketDept,
		apply:  applyMarketWarranty,
	},
	ActionInternalConfirm: {
		status: domain.TicketStatusPendingInternalAffairs,
		role:   domain.RoleInternalAffairs,
		apply:  applyInternalPayment,
	},
	ActionClerkShip: {
		status: domain.TicketStatusPendingClerkShip,
		role:   domain.RoleAfterSalesClerk,
		apply:  applyClerkShip,
	},
	ActionFinalClose: {
		status: domain.TicketStatusPendingFinalClosure,
		role:   domain.RoleMarketDept,
		apply: func(ticket *domain.Ticket, _ ActionPayload, _ string) (domain.TicketStatus, error) {
			return domain.TicketStatusClosed, nil
		},
	},
}

// WorkflowService drives tickets through the review/repair/shipping stages.
type WorkflowService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// WorkflowDependencies bundles collaborators for the workflow service.
type WorkflowDependencies struct {
	TicketRepo repository.TicketRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewWorkflowService constructs the service.
func NewWorkflowService(deps WorkflowDependencies) *WorkflowService {
	return &WorkflowService{
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// SubmitAction applies a workflow action on behalf of actor. The action is
// rejected without mutation unless the ticket sits in the action's required
// status and the actor holds the owning role. Status and stage record are
// persisted as one compare-and-set update; losing the race surfaces as a
// conflict the caller can retry after reloading.
func (s *WorkflowService) SubmitAction(ctx context.Context, actor *domain.User, ticketID, action string, payload ActionPayload) (*domain.Ticket, error) {
	tr, ok := transitions[action]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown action %q", action), nil)
	}
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}

	if ticket.Status != tr.status {
		return nil, apperrors.NewInvalidTransition(
			fmt.Sprintf("action %s requires status %s", action, tr.status),
			map[string]any{"current_status": ticket.Status},
		)
	}
	if actor.Role != tr.role {
		return nil, apperrors.NewForbidden(fmt.Sprintf("action %s requires role %s", action, tr.role))
	}

	previous := ticket.Status
	next, err := tr.apply(ticket, payload, today())
	if err != nil {
		return nil, err
	}
	ticket.Status = next

	if err := s.tickets.UpdateWorkflow(ctx, ticket, previous); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleTicket):
			return nil, apperrors.NewConflict("ticket was updated concurrently, reload and resubmit", nil)
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		default:
			return nil, err
		}
	}

	s.logger.Info("workflow action applied",
		zap.String("ticket_id", ticket.ID),
		zap.String("action", action),
		zap.String("actor", actor.Username),
		zap.String("old_status", string(previous)),
		zap.String("new_status", string(next)),
	)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventStageCompleted,
		TicketID: ticket.ID,
		Actor:    events.Actor{Username: actor.Username, Role: actor.Role},
		Payload: events.StageCompletedPayload{
			Action:    action,
			OldStatus: previous,
			NewStatus: next,
		},
	})
	return ticket, nil
}

// AdminOverride force-sets the ticket status outside normal transition
// rules. Market department only; any non-terminal ticket. Stage records are
// left untouched, so the status/record coupling is deliberately broken here.
func (s *WorkflowService) AdminOverride(ctx context.Context, actor *domain.User, ticketID string, target domain.TicketStatus) (*domain.Ticket, error) {
	if actor == nil || actor.Role != domain.RoleMarketDept {
		return nil, apperrors.NewForbidden("admin override requires the market department role")
	}
	if !domain.KnownStatus(target) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown target status %q", target), nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}
	if ticket.Status.Terminal() {
		return nil, apperrors.NewInvalidTransition("ticket is already closed", nil)
	}

	previous := ticket.Status
	if err := s.tickets.OverrideStatus(ctx, ticketID, target); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}
	ticket.Status = target

	s.logger.Warn("admin override applied",
		zap.String("ticket_id", ticket.ID),
		zap.String("actor", actor.Username),
		zap.String("old_status", string(previous)),
		zap.String("new_status", string(target)),
	)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventAdminOverride,
		TicketID: ticket.ID,
		Actor:    events.Actor{Username: actor.Username, Role: actor.Role},
		Payload: events.AdminOverridePayload{
			OldStatus: previous,
			NewStatus: target,
		},
	})
	return ticket, nil
}

func applyBusinessReview(ticket *domain.Ticket, payload ActionPayload, today string) (domain.TicketStatus, error) {
	if payload.BusinessReview == nil {
		return "", apperrors.NewValidationError("business review payload required", nil)
	}
	record := *payload.BusinessReview
	record.Date = today
	ticket.BusinessReview = &record
	return domain.TicketStatusPendingTechSupport, nil
}

func applyTechDiagnosis(ticket *domain.Ticket, payload ActionPayload, today string) (domain.TicketStatus, error) {
	if payload.TechDiagnosis == nil {
		return "", apperrors.NewValidationError("tech diagnosis payload required", nil)
	}
	record := *payload.TechDiagnosis
	if !domain.OneOf(record.FaultCause, domain.FaultCauses) {
		return "", apperrors.NewValidationError("invalid fault cause", map[string]any{"allowed": domain.FaultCauses})
	}
	if !domain.OneOf(record.HandlingSuggestion, domain.HandlingSuggestions) {
		return "", apperrors.NewValidationError("invalid handling suggestion", map[string]any{"allowed": domain.HandlingSuggestions})
	}
	record.Date = today
	ticket.TechDiagnosis = &record

	if record.HandlingSuggestion == domain.HandlingFactoryRepair {
		return domain.TicketStatusPendingClerkReceive, nil
	}
	return domain.TicketStatusPendingFinalClosure, nil
}

func applyClerkReceive(ticket *domain.Ticket, payload ActionPayload, today string) (domain.TicketStatus, error) {
	if payload.ClerkReceive == nil {
		return "", apperrors.NewValidationError("clerk receive payload required", nil)
	}
	record := *payload.ClerkReceive
	record.RepairID = newRepairOrderID()
	record.Date = today
	if record.ReceiveDate == "" {
		record.ReceiveDate = today
	}
	ticket.ClerkReceive = &record

	if record.ReturnedUnrepaired {
		return domain.TicketStatusPendingFinalClosure, nil
	}
	return domain.TicketStatusPendingRepair, nil
}

func applyRepair(ticket *domain.Ticket, payload ActionPayload, _ string) (domain.TicketStatus, error) {
	if payload.Repair == nil {
		return "", apperrors.NewValidationError("repair payload required", nil)
	}
	record := *payload.Repair
	if !domain.OneOf(record.FaultCause, domain.RepairFaultCauses) {
		return "", apperrors.NewValidationError("invalid fault cause", map[string]any{"allowed": domain.RepairFaultCauses})
	}
	if record.ProductFaultDetail != "" && !domain.OneOf(record.ProductFaultDetail, domain.ProductFaultDetails) {
		return "", apperrors.NewValidationError("invalid product fault detail", map[string]any{"allowed": domain.ProductFaultDetails})
	}
	if !domain.OneOf(record.HasTestReport, domain.TestReportStates) {
		return "", apperrors.NewValidationError("invalid test report state", map[string]any{"allowed": domain.TestReportStates})
	}
	ticket.Repair = &record
	return domain.TicketStatusPendingTechDeptReview, nil
}

func applyTechDeptReview(ticket *domain.Ticket, payload ActionPayload, today string) (domain.TicketStatus, error) {
	if payload.TechDeptReview == nil {
		return "", apperrors.NewValidationError("tech department review payload required", nil)
	}
	record := *payload.TechDeptReview
	record.Date = today
	ticket.TechDeptReview = &record
	return domain.TicketStatusPendingMarketWarranty, nil
}

func applyMarketWarranty(ticket *domain.Ticket, payload ActionPayload, today string) (domain.TicketStatus, error) {
	if payload.MarketWarranty == nil {
		return "", apperrors.NewValidationError("market warranty payload required", nil)
	}
	record := *payload.MarketWarranty
	if !domain.OneOf(record.WarrantyType, domain.WarrantyTypes) {
		return "", apperrors.NewValidationError("invalid warranty type", map[string]any{"allowed": domain.WarrantyTypes})
	}
	record.Date = today
	ticket.MarketWarranty = &record

	if record.WarrantyType == domain.WarrantyFreeRepair {
		return domain.TicketStatusPendingClerkShip, nil
	}
	return domain.TicketStatusPendingInternalAffairs, nil
}

func applyInternalPayment(ticket *domain.Ticket, payload ActionPayload, today string) (domain.TicketStatus, error) {
	if payload.InternalPayment == nil {
		return "", apperrors.NewValidationError("internal payment payload required", nil)
	}
	record := *payload.InternalPayment
	if !domain.OneOf(record.PaymentStatus, domain.PaymentStates) {
		return "", apperrors.NewValidationError("invalid payment status", map[string]any{"allowed": domain.PaymentStates})
	}
	record.Date = today
	ticket.InternalPayment = &record
	return domain.TicketStatusPendingClerkShip, nil
}

func applyClerkShip(ticket *domain.Ticket, payload ActionPayload, today string) (domain.TicketStatus, error) {
	if payload.ClerkShip == nil {
		return "", apperrors.NewValidationError("clerk ship payload required", nil)
	}
	record := *payload.ClerkShip
	if !domain.OneOf(record.Status, domain.ShipStates) {
		return "", apperrors.NewValidationError("invalid ship status", map[string]any{"allowed": domain.ShipStates})
	}
	record.Date = today
	ticket.ClerkShip = &record
	return domain.TicketStatusPendingFinalClosure, nil
}

func (s *WorkflowService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func today() string {
	return time.Now().Format("2006-01-02")
}

// newRepairOrderID mints the factory repair-order number assigned at clerk
// receive, distinct from the ticket id.
func newRepairOrderID() string {
	return "R-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
