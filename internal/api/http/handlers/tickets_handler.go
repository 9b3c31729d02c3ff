package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/repair-service/internal/api/dto"
	"github.com/spec-kit/repair-service/internal/auth"
	"github.com/spec-kit/repair-service/internal/domain"
	"github.com/spec-kit/repair-service/internal/service"
	apperrors "github.com/spec-kit/repair-service/pkg/util"
	"github.com/spec-kit/repair-service/pkg/validation"
)

// TicketsHandler exposes ticket intake, tracking and workflow endpoints.
type TicketsHandler struct {
	tickets   *service.TicketService
	workflow  *service.WorkflowService
	validator *validation.Validator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, workflow *service.WorkflowService, validator *validation.Validator) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, workflow: workflow, validator: validator}
}

// Create POST /tickets. Public: guests file repair requests without logging in.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), req.Application())
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CreatedTicketResponse{
		ID:        ticket.ID,
		Status:    ticket.Status,
		CreatedAt: ticket.CreatedAt,
	}})
}

// Track GET /tickets/track/:id. Public progress lookup by ticket number.
func (h *TicketsHandler) Track(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return apperrors.NewValidationError("ticket id required", nil)
	}
	result, err := h.tickets.Track(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// List GET /tickets. Returns the tickets visible to the acting role.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.tickets.ListVisible(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := h.tickets.GetForUser(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// SubmitAction POST /tickets/:id/actions.
func (h *TicketsHandler) SubmitAction(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SubmitActionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	payload := service.ActionPayload{
		BusinessReview:  req.BusinessReview,
		TechDiagnosis:   req.TechDiagnosis,
		ClerkReceive:    req.ClerkReceive,
		Repair:          req.Repair,
		TechDeptReview:  req.TechDeptReview,
		MarketWarranty:  req.MarketWarranty,
		InternalPayment: req.InternalPayment,
		ClerkShip:       req.ClerkShip,
	}
	ticket, err := h.workflow.SubmitAction(c.UserContext(), actor, c.Params("id"), req.Action, payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

// Override POST /tickets/:id/override. Market department only (route guard).
func (h *TicketsHandler) Override(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.OverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validator.Validate(req); err != nil {
		return err
	}

	target, err := parseOverrideTarget(req.Target)
	if err != nil {
		return err
	}
	ticket, err := h.workflow.AdminOverride(c.UserContext(), actor, c.Params("id"), target)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket)})
}

func parseOverrideTarget(target string) (domain.TicketStatus, error) {
	switch strings.ToLower(strings.TrimSpace(target)) {
	case "draft":
		return domain.TicketStatusDraft, nil
	case "close":
		return domain.TicketStatusClosed, nil
	}
	status := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(target)))
	if !domain.KnownStatus(status) {
		return "", apperrors.NewValidationError("unknown override target", map[string]any{"target": target})
	}
	return status, nil
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:          ticket.ID,
		Status:      ticket.Status,
		StatusLabel: ticket.Status.Label(),
		Department:  ticket.Application.Department,
		Salesman:    ticket.Application.Salesman,
		ProductName: ticket.Application.ProductName,
		EndUserName: ticket.Application.EndUserName,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		ID:              ticket.ID,
		Status:          ticket.Status,
		StatusLabel:     ticket.Status.Label(),
		Application:     ticket.Application,
		BusinessReview:  ticket.BusinessReview,
		TechDiagnosis:   ticket.TechDiagnosis,
		ClerkReceive:    ticket.ClerkReceive,
		Repair:          ticket.Repair,
		TechDeptReview:  ticket.TechDeptReview,
		MarketWarranty:  ticket.MarketWarranty,
		InternalPayment: ticket.InternalPayment,
		ClerkShip:       ticket.ClerkShip,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}
