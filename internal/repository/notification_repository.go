package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/ndewijer/Dividend-Distribution-Backend/internal/model"
)

type NotificationRepository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// WithTx returns a new NotificationRepository scoped to the provided transaction.
func (r *NotificationRepository) WithTx(tx *sql.Tx) *NotificationRepository {
	return &NotificationRepository{db: r.db, tx: tx}
}

func (r *NotificationRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// FindOrCreate records a notification for (recipient, round, kind) and reports
// whether this call created it. A false return means the notice was already
// sent and the caller must not dispatch again.
func (r *NotificationRepository) FindOrCreate(ctx context.Context, recipientID, roundID string, kind model.NotificationKind) (bool, error) {
	var existing string
	err := r.getQuerier().QueryRowContext(ctx,
		`SELECT id FROM notification WHERE recipient_id = ? AND round_id = ? AND kind = ?`,
		recipientID, roundID, string(kind)).Scan(&existing)
	if err == nil {
		return false, nil
	}
	if err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to query notification table: %w", err)
	}

	_, err = r.getQuerier().ExecContext(ctx,
		`INSERT INTO notification (id, recipient_id, round_id, kind) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), recipientID, roundID, string(kind))
	if err != nil {
		return false, fmt.Errorf("failed to insert notification: %w", err)
	}

	return true, nil
}

// ListByRound retrieves the notification records for a round.
func (r *NotificationRepository) ListByRound(roundID string) ([]model.Notification, error) {
	query := `
		SELECT id, recipient_id, round_id, kind, created_at
		FROM notification
		WHERE round_id = ?
		ORDER BY created_at ASC
	`

	rows, err := r.getQuerier().Query(query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notification table: %w", err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		var kindStr, createdAtStr string

		err := rows.Scan(&n.ID, &n.RecipientID, &n.RoundID, &kindStr, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}

		n.Kind, err = model.ParseNotificationKind(kindStr)
		if err != nil {
			return nil, err
		}

		n.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notification table: %w", err)
	}

	return notifications, nil
}
