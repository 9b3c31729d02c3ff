package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/repair-service/internal/domain"
)

func ticketAt(id, department, salesman string, status domain.TicketStatus) domain.Ticket {
	return domain.Ticket{
		ID:     id,
		Status: status,
		Application: domain.Application{
			Department: department,
			Salesman:   salesman,
		},
	}
}

func visibleIDs(user *domain.User, tickets []domain.Ticket) []string {
	visible := VisibleTickets(user, tickets)
	ids := make([]string, 0, len(visible))
	for _, t := range visible {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestVisibilityMarketDeptSeesEverything(t *testing.T) {
	tickets := []domain.Ticket{
		ticketAt("t1", "上海办", "张三", domain.TicketStatusDraft),
		ticketAt("t2", "北京办", "李四", domain.TicketStatusPendingRepair),
		ticketAt("t3", "深圳办", "王五", domain.TicketStatusClosed),
	}
	admin := &domain.User{Username: "market", Role: domain.RoleMarketDept}
	require.Equal(t, []string{"t1", "t2", "t3"}, visibleIDs(admin, tickets))
}

func TestVisibilityApplicantMatchedBySalesmanName(t *testing.T) {
	tickets := []domain.Ticket{
		ticketAt("mine", "上海办", "张三", domain.TicketStatusPendingBusinessReview),
		ticketAt("theirs", "上海办", "李四", domain.TicketStatusPendingBusinessReview),
	}
	applicant := &domain.User{Username: "zhang", Name: "张三", Role: domain.RoleApplicant}
	require.Equal(t, []string{"mine"}, visibleIDs(applicant, tickets))

	other := &domain.User{Username: "li", Name: "李四", Role: domain.RoleApplicant}
	require.Equal(t, []string{"theirs"}, visibleIDs(other, tickets))
}

func TestVisibilityBusinessManagerScopedToDepartment(t *testing.T) {
	tickets := []domain.Ticket{
		ticketAt("sh", "上海办", "张三", domain.TicketStatusPendingBusinessReview),
		ticketAt("bj", "北京办", "李四", domain.TicketStatusPendingBusinessReview),
	}
	manager := &domain.User{Username: "mgr", Role: domain.RoleBusinessManager, Department: "上海办"}
	require.Equal(t, []string{"sh"}, visibleIDs(manager, tickets))
}

func TestVisibilityTechSupportScopedToRegion(t *testing.T) {
	tickets := []domain.Ticket{
		// 上海办 and 苏州办 both route to husu.
		ticketAt("sh", "上海办", "张三", domain.TicketStatusPendingTechSupport),
		ticketAt("sz", "苏州办", "李四", domain.TicketStatusPendingRepair),
		ticketAt("bj", "北京办", "王五", domain.TicketStatusPendingTechSupport),
		ticketAt("draft", "上海办", "赵六", domain.TicketStatusDraft),
	}
	support := &domain.User{Username: "ts", Role: domain.RoleTechSupport, Region: "husu"}

	// The region keeps seeing its tickets after they leave the diagnosis
	// stage; drafts stay hidden.
	require.Equal(t, []string{"sh", "sz"}, visibleIDs(support, tickets))
}

func TestVisibilityClerkSeesReceiveShipAndHandledTickets(t *testing.T) {
	handled := ticketAt("handled", "上海办", "张三", domain.TicketStatusPendingRepair)
	handled.ClerkReceive = &domain.ClerkReceive{RepairID: "R-AAAA1111"}

	tickets := []domain.Ticket{
		ticketAt("receive", "上海办", "张三", domain.TicketStatusPendingClerkReceive),
		ticketAt("ship", "北京办", "李四", domain.TicketStatusPendingClerkShip),
		handled,
		ticketAt("elsewhere", "深圳办", "王五", domain.TicketStatusPendingBusinessReview),
	}
	clerk := &domain.User{Username: "clerk", Role: domain.RoleAfterSalesClerk}
	require.Equal(t, []string{"receive", "ship", "handled"}, visibleIDs(clerk, tickets))
}

func TestVisibilitySingleStageRoles(t *testing.T) {
	tickets := []domain.Ticket{
		ticketAt("repair", "上海办", "张三", domain.TicketStatusPendingRepair),
		ticketAt("review", "上海办", "张三", domain.TicketStatusPendingTechDeptReview),
		ticketAt("payment", "上海办", "张三", domain.TicketStatusPendingInternalAffairs),
	}

	cases := []struct {
		role domain.Role
		want []string
	}{
		{domain.RoleRepairTech, []string{"repair"}},
		{domain.RoleTechDept, []string{"review"}},
		{domain.RoleInternalAffairs, []string{"payment"}},
	}
	for _, tc := range cases {
		user := &domain.User{Username: "u", Role: tc.role}
		require.Equal(t, tc.want, visibleIDs(user, tickets), "role %s", tc.role)
	}
}

func TestVisibilityFailsClosed(t *testing.T) {
	tickets := []domain.Ticket{
		ticketAt("t1", "上海办", "张三", domain.TicketStatusPendingBusinessReview),
	}

	unknown := &domain.User{Username: "ghost", Role: domain.Role("auditor")}
	require.Empty(t, VisibleTickets(unknown, tickets))
	require.Empty(t, VisibleTickets(nil, tickets))
}
