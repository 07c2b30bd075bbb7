// Package inbox archives contact form submissions.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devfolio/portfolio/internal/email"
)

var ErrNotFound = errors.New("message not found")

// Status tracks whether the relay accepted the message.
type Status string

const (
	StatusReceived Status = "received"
	StatusSent     Status = "sent"
	StatusFailed   Status = "failed"
)

type Entry struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Message   string
	RemoteIP  string
	Status    Status
	CreatedAt time.Time
}

type Store interface {
	Save(ctx context.Context, msg email.ContactMessage, remoteIP string) (Entry, error)
	MarkStatus(ctx context.Context, id uuid.UUID, status Status) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS contact_messages (
	id         uuid PRIMARY KEY,
	name       text NOT NULL,
	email      text NOT NULL,
	message    text NOT NULL,
	remote_ip  text NOT NULL DEFAULT '',
	status     text NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
)`

type PG struct {
	db *pgxpool.Pool
}

var _ Store = (*PG)(nil)

func NewPG(db *pgxpool.Pool) *PG {
	return &PG{db: db}
}

// Migrate creates the table if it does not exist yet.
func (p *PG) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create contact_messages: %w", err)
	}
	return nil
}

func (p *PG) Save(ctx context.Context, msg email.ContactMessage, remoteIP string) (Entry, error) {
	const query = `
	INSERT INTO contact_messages (id, name, email, message, remote_ip, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING created_at
	`
	e := Entry{
		ID:       uuid.New(),
		Name:     msg.Name,
		Email:    msg.Email,
		Message:  msg.Message,
		RemoteIP: remoteIP,
		Status:   StatusReceived,
	}
	err := p.db.QueryRow(ctx, query, e.ID, e.Name, e.Email, e.Message, e.RemoteIP, string(e.Status)).Scan(&e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("insert contact message: %w", err)
	}
	return e, nil
}

func (p *PG) MarkStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := p.db.Exec(ctx, `UPDATE contact_messages SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return fmt.Errorf("update contact message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PG) Recent(ctx context.Context, limit int) ([]Entry, error) {
	const query = `
	SELECT id, name, email, message, remote_ip, status, created_at
	FROM contact_messages
	ORDER BY created_at DESC
	LIMIT $1
	`
	rows, err := p.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		var status string
		err := row.Scan(&e.ID, &e.Name, &e.Email, &e.Message, &e.RemoteIP, &status, &e.CreatedAt)
		e.Status = Status(status)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	return entries, nil
}
