package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/repair-service/internal/domain"
)

// ErrStaleTicket signals a lost compare-and-set: the ticket status changed
// between read and write. The caller must reload and resubmit.
var ErrStaleTicket = errors.New("ticket status changed concurrently")

// TicketRepository encapsulates ticket persistence. Workflow writes go
// through UpdateWorkflow, which serializes concurrent actions per ticket by
// matching the status the actor read; OverrideStatus is the unguarded
// administrative path.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
	UpdateWorkflow(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error
	OverrideStatus(ctx context.Context, id string, status domain.TicketStatus) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, status, application, business_review, tech_diagnosis, clerk_receive,
               repair, tech_dept_review, market_warranty, internal_payment, clerk_ship,
               created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, status, application)
        VALUES ($1, $2, $3)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.ID,
		ticket.Status,
		ticket.Application,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Status,
		&ticket.Application,
		&ticket.BusinessReview,
		&ticket.TechDiagnosis,
		&ticket.ClerkReceive,
		&ticket.Repair,
		&ticket.TechDeptReview,
		&ticket.MarketWarranty,
		&ticket.InternalPayment,
		&ticket.ClerkShip,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	const query = `SELECT ` + ticketColumns + ` FROM tickets ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

// UpdateWorkflow persists the stage records and new status in one statement,
// guarded by the status the actor observed. Zero rows affected means either
// the ticket vanished or another actor moved it first.
func (r *ticketRepository) UpdateWorkflow(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus) error {
	const query = `
        UPDATE tickets SET status=$1, business_review=$2, tech_diagnosis=$3, clerk_receive=$4,
            repair=$5, tech_dept_review=$6, market_warranty=$7, internal_payment=$8,
            clerk_ship=$9, updated_at=NOW()
        WHERE id=$10 AND status=$11`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Status,
		ticket.BusinessReview,
		ticket.TechDiagnosis,
		ticket.ClerkReceive,
		ticket.Repair,
		ticket.TechDeptReview,
		ticket.MarketWarranty,
		ticket.InternalPayment,
		ticket.ClerkShip,
		ticket.ID,
		expected,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, ticket.ID).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrStaleTicket
		}
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) OverrideStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	const query = `UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Status,
			&ticket.Application,
			&ticket.BusinessReview,
			&ticket.TechDiagnosis,
			&ticket.ClerkReceive,
			&ticket.Repair,
			&ticket.TechDeptReview,
			&ticket.MarketWarranty,
			&ticket.InternalPayment,
			&ticket.ClerkShip,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
