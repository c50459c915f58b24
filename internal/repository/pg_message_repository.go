package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/portfolio/backend/internal/model"
)

// MessageRepository defines the persistence contract for contact messages.
// Every mutating call is durable before it returns; callers must treat an
// error as "final state unknown", not "definitely not stored".
type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	Get(ctx context.Context, id string) (*model.Message, error)
	List(ctx context.Context, opts model.ListOptions) ([]*model.Message, int, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Message, error)
	SetDeliveryResult(ctx context.Context, id string, sendErr error) error
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[model.Status]int, error)
}

// PgMessageRepository is the PostgreSQL implementation of MessageRepository.
type PgMessageRepository struct {
	pool *pgxpool.Pool
}

// NewPgMessageRepository creates a PgMessageRepository backed by the given pool.
func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

var _ MessageRepository = (*PgMessageRepository)(nil)

const messageSelectCols = `id, name, email, COALESCE(subject, ''), message, status,
	COALESCE(ip, ''), COALESCE(user_agent, ''), COALESCE(delivery_error, ''), created_at, updated_at`

func scanMessage(scan func(...any) error) (*model.Message, error) {
	var m model.Message
	if err := scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Status,
		&m.IP, &m.UserAgent, &m.DeliveryError, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new messages row. The id is generated here so the caller
// sees it even if reading the row back later fails; created_at/updated_at
// come from the database RETURNING clause.
func (r *PgMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO messages (id, name, email, subject, message, status, ip, user_agent)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''), NULLIF($8, ''))
		 RETURNING created_at, updated_at`,
		msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.Status, msg.IP, msg.UserAgent,
	).Scan(&msg.CreatedAt, &msg.UpdatedAt)
}

// Get returns a single message by id, or ErrNotFound.
func (r *PgMessageRepository) Get(ctx context.Context, id string) (*model.Message, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+messageSelectCols+` FROM messages WHERE id = $1`, id)
	m, err := scanMessage(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// List returns messages newest-first, filtered by status and paginated by
// limit/offset, together with the total count matching the filter.
// Status "" or "all" returns all messages.
func (r *PgMessageRepository) List(ctx context.Context, opts model.ListOptions) ([]*model.Message, int, error) {
	var args []any
	where := ""

	status := strings.TrimSpace(opts.Status)
	if status != "" && status != "all" {
		args = append(args, status)
		where = "WHERE status = $1"
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitArg := strconv.Itoa(len(args) + 1)
	offsetArg := strconv.Itoa(len(args) + 2)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.pool.Query(ctx,
		`SELECT `+messageSelectCols+` FROM messages `+where+`
		 ORDER BY created_at DESC
		 LIMIT $`+limitArg+` OFFSET $`+offsetArg, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var messages []*model.Message
	for rows.Next() {
		m, err := scanMessage(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}

// UpdateStatus writes a new status and returns the updated row, or ErrNotFound.
// The delivery diagnostic only makes sense on a failed message, so moving to
// any other status clears it.
func (r *PgMessageRepository) UpdateStatus(ctx context.Context, id string, status model.Status) (*model.Message, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE messages SET status = $2,
		     delivery_error = CASE WHEN $2 = 'failed' THEN delivery_error ELSE NULL END,
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+messageSelectCols, id, status)
	m, err := scanMessage(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// SetDeliveryResult records the outcome of the background operator
// notification. Success clears any previous delivery error and leaves the
// triage status alone; failure moves the message to failed and stores the
// diagnostic for the admin panel.
func (r *PgMessageRepository) SetDeliveryResult(ctx context.Context, id string, sendErr error) error {
	if sendErr == nil {
		_, err := r.pool.Exec(ctx,
			`UPDATE messages SET delivery_error = NULL, updated_at = now() WHERE id = $1`, id)
		return err
	}
	diag := sendErr.Error()
	if len(diag) > 500 {
		diag = diag[:500]
	}
	_, err := r.pool.Exec(ctx,
		`UPDATE messages SET status = $2, delivery_error = $3, updated_at = now() WHERE id = $1`,
		id, model.StatusFailed, diag)
	return err
}

// Delete removes a message permanently, or returns ErrNotFound.
func (r *PgMessageRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns the number of messages per status. Statuses with no
// messages are absent from the map.
func (r *PgMessageRepository) CountByStatus(ctx context.Context) (map[model.Status]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM messages GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.Status]int)
	for rows.Next() {
		var status model.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
