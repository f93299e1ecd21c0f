package repository

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
)

type JobRepository struct {
	DB *sql.DB
}

func NewJobRepository(database *sql.DB) *JobRepository {
	return &JobRepository{DB: database}
}

// GetStalePendingPaymentIDs finds pending payments whose checkout was never
// completed before the cutoff.
func (r *JobRepository) GetStalePendingPaymentIDs(before time.Time) ([]int, error) {
	rows, err := r.DB.Query(`SELECT id FROM payments WHERE status = 'pending' AND created_at < $1`, before)
	if err != nil {
		return nil, fmt.Errorf("error querying stale pending payments: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning payment ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *JobRepository) DeletePayments(ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := r.DB.Exec(`DELETE FROM payments WHERE id = ANY($1) AND status = 'pending'`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error deleting stale payments: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Deleted %d stale pending payments", rowsAffected)
	}
	return nil
}

// GetExpiredSubscriptionIDs finds active, non-renewing subscriptions whose
// validity window has ended.
func (r *JobRepository) GetExpiredSubscriptionIDs(now time.Time) ([]int, error) {
	rows, err := r.DB.Query(`
		SELECT id FROM subscriptions
		WHERE status = 'active' AND auto_renew = FALSE AND valid_to < $1`, now)
	if err != nil {
		return nil, fmt.Errorf("error querying expired subscriptions: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning subscription ID: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *JobRepository) CancelSubscriptions(ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	result, err := r.DB.Exec(`
		UPDATE subscriptions SET status = 'canceled', updated_at = NOW() WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("error canceling expired subscriptions: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("Could not get rows affected: %v", err)
	} else {
		log.Printf("Canceled %d expired subscriptions", rowsAffected)
	}
	return nil
}
