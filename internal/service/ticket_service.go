package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/events"
	"github.com/spec-kit/repair-service/internal/persistence"
	"github.com/spec-kit/repair-service/internal/repository"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
)

// TicketService handles ticket intake, listing and the public progress lookup.
type TicketService struct {
	tickets    repository.TicketRepository
	cache      *persistence.Redis
	trackTTL   time.Duration
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Cache      *persistence.Redis
	TrackTTL   time.Duration
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	ttl := deps.TrackTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		cache:      deps.Cache,
		trackTTL:   ttl,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// requiredApplicationFields pairs each mandatory application field with its
// accessor, in form order.
var requiredApplicationFields = []struct {
	name  string
	value func(domain.Application) string
}{
	{"department", func(a domain.Application) string { return a.Department }},
	{"salesman", func(a domain.Application) string { return a.Salesman }},
	{"contact_phone", func(a domain.Application) string { return a.ContactPhone }},
	{"end_user_name", func(a domain.Application) string { return a.EndUserName }},
	{"product_name", func(a domain.Application) string { return a.ProductName }},
	{"sn_code", func(a domain.Application) string { return a.SNCode }},
	{"contact_person", func(a domain.Application) string { return a.ContactPerson }},
	{"contact_person_role", func(a domain.Application) string { return a.ContactPersonRole }},
}

// CreateTicket validates the application form and opens a new ticket in
// PENDING_BUSINESS_REVIEW. The returned ticket id is the applicant's only
// handle for tracking progress later.
func (s *TicketService) CreateTicket(ctx context.Context, application domain.Application) (*domain.Ticket, error) {
	missing := []string{}
	for _, field := range requiredApplicationFields {
		if strings.TrimSpace(field.value(application)) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}

	if !domain.OneOf(application.MaintenanceRecord, domain.MaintenanceRecords) {
		return nil, apperrors.NewValidationError("invalid maintenance record", map[string]any{"allowed": domain.MaintenanceRecords})
	}
	if !domain.OneOf(application.WarrantyStatus, domain.WarrantyStatuses) {
		return nil, apperrors.NewValidationError("invalid warranty status", map[string]any{"allowed": domain.WarrantyStatuses})
	}
	if application.HasWasher != "" && !domain.OneOf(application.HasWasher, domain.YesNoOptions) {
		return nil, apperrors.NewValidationError("invalid washer value", map[string]any{"allowed": domain.YesNoOptions})
	}
	if application.PreviouslyRepaired != "" && !domain.OneOf(application.PreviouslyRepaired, domain.YesNoOptions) {
		return nil, apperrors.NewValidationError("invalid previously-repaired value", map[string]any{"allowed": domain.YesNoOptions})
	}

	if application.ApplyDate == "" {
		application.ApplyDate = today()
	}

	ticket := &domain.Ticket{
		ID:          newTicketID(),
		Status:      domain.TicketStatusPendingBusinessReview,
		Application: application,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.logger.Info("ticket created",
		zap.String("ticket_id", ticket.ID),
		zap.String("department", application.Department),
	)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{Username: "", Role: domain.RoleApplicant},
		Payload: events.TicketCreatedPayload{
			Department:  application.Department,
			Salesman:    application.Salesman,
			ProductName: application.ProductName,
		},
	})
	return ticket, nil
}

// TrackResult is the public progress snapshot for a ticket. It exposes only
// an opaque status label, never stage data.
type TrackResult struct {
	ID          string              `json:"id"`
	ProductName string              `json:"product_name"`
	EndUserName string              `json:"end_user_name"`
	Status      domain.TicketStatus `json:"status"`
	StatusLabel string              `json:"status_label"`
}

// Track resolves the public progress lookup for a ticket id. Results are
// cached briefly, so a snapshot may trail the live status by up to the TTL.
func (s *TicketService) Track(ctx context.Context, ticketID string) (*TrackResult, error) {
	cacheKey := "track:" + ticketID
	if cached, ok := s.cache.GetString(ctx, cacheKey); ok {
		var result TrackResult
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}

	result := &TrackResult{
		ID:          ticket.ID,
		ProductName: ticket.Application.ProductName,
		EndUserName: ticket.Application.EndUserName,
		Status:      ticket.Status,
		StatusLabel: ticket.Status.Label(),
	}
	if encoded, err := json.Marshal(result); err == nil {
		s.cache.SetString(ctx, cacheKey, string(encoded), s.trackTTL)
	}
	return result, nil
}

// ListVisible returns the tickets the acting user is entitled to see.
func (s *TicketService) ListVisible(ctx context.Context, actor *domain.User) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx)
	if err != nil {
		return nil, err
	}
	return VisibleTickets(actor, tickets), nil
}

// GetForUser fetches one ticket, enforcing the same visibility rules as
// listing.
func (s *TicketService) GetForUser(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}
	if actor == nil || !userCanSeeTicket(actor, ticket) {
		return nil, apperrors.NewForbidden("ticket not accessible to this account")
	}
	return ticket, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
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

// newTicketID mints a date-prefixed ticket number, e.g. TK-20260901-3F7A2C.
func newTicketID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("TK-%s-%s", time.Now().Format("20060102"), suffix)
}
