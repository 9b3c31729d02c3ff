package service

import (
	"github.com/spec-kit/repair-service/internal/domain"
)

// VisibleTickets filters the full ticket set down to what user may see. It
// never mutates tickets; an unrecognized role sees nothing.
func VisibleTickets(user *domain.User, tickets []domain.Ticket) []domain.Ticket {
	if user == nil {
		return []domain.Ticket{}
	}

	result := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if userCanSeeTicket(user, &ticket) {
			result = append(result, ticket)
		}
	}
	return result
}

func userCanSeeTicket(user *domain.User, ticket *domain.Ticket) bool {
	switch user.Role {
	case domain.RoleMarketDept:
		// Super admin sees everything.
		return true

	case domain.RoleApplicant:
		// Matched by salesman display name, not a stable account id; a
		// carried-over quirk of the legacy data model.
		return ticket.Application.Salesman == user.Name

	case domain.RoleBusinessManager:
		return ticket.Application.Department == user.Department

	case domain.RoleTechSupport:
		region, ok := domain.RegionForDepartment(ticket.Application.Department)
		if !ok || region != user.Region {
			return false
		}
		// Legacy rule kept verbatim: once past draft, the ticket stays
		// visible to the serving region even after it leaves their stage.
		return ticket.Status == domain.TicketStatusPendingTechSupport ||
			ticket.Status != domain.TicketStatusDraft

	case domain.RoleAfterSalesClerk:
		return ticket.Status == domain.TicketStatusPendingClerkReceive ||
			ticket.Status == domain.TicketStatusPendingClerkShip ||
			ticket.ClerkReceive != nil

	case domain.RoleRepairTech:
		return ticket.Status == domain.TicketStatusPendingRepair

	case domain.RoleTechDept:
		return ticket.Status == domain.TicketStatusPendingTechDeptReview

	case domain.RoleInternalAffairs:
		return ticket.Status == domain.TicketStatusPendingInternalAffairs

	default:
		return false
	}
}
