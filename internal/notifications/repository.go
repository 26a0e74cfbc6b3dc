package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onco-erp/onco/internal/platform/db"
)

var (
	// ErrRecipientRequired indicates a log without target user.
	ErrRecipientRequired = errors.New("notifications: recipient required")
	// ErrDuplicate indicates an entry with the same id already exists.
	ErrDuplicate = errors.New("notifications: duplicate entry")
)

// Repository persists notification logs.
type Repository struct {
	pool  *pgxpool.Pool
	clock func() time.Time
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, clock: time.Now}
}

// Insert writes a single notification log and returns it with id and timestamp set.
func (r *Repository) Insert(ctx context.Context, log Log) (Log, error) {
	if log.ForUser == "" {
		return Log{}, ErrRecipientRequired
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.Type == "" {
		log.Type = TypeAlert
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = r.clock().UTC()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO notification_logs (id, subject, email_content, for_user, type, document_type, document_name, read, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		log.ID, log.Subject, log.EmailContent, log.ForUser, string(log.Type), log.DocumentType, log.DocumentName, log.Read, log.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Log{}, fmt.Errorf("%w: %s", ErrDuplicate, log.ID)
		}
		return Log{}, err
	}
	return log, nil
}

// ListForUser returns the most recent notifications addressed to user.
func (r *Repository) ListForUser(ctx context.Context, user string, limit int) ([]Log, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `SELECT id, subject, email_content, for_user, type, document_type, document_name, read, created_at
FROM notification_logs WHERE for_user=$1 ORDER BY created_at DESC LIMIT $2`, user, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []Log
	for rows.Next() {
		var l Log
		var typ string
		if err := rows.Scan(&l.ID, &l.Subject, &l.EmailContent, &l.ForUser, &typ, &l.DocumentType, &l.DocumentName, &l.Read, &l.CreatedAt); err != nil {
			return nil, err
		}
		l.Type = Type(typ)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
