package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"petroffparking/internal/db"
)

type SubscriptionRepository struct {
	DB *sql.DB
}

func NewSubscriptionRepository(database *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{DB: database}
}

const subscriptionColumns = `id, vehicle_id, plan_id, status, auto_renew, valid_from, valid_to, COALESCE(stripe_subscription_id, ''), created_at, updated_at`

func scanSubscription(row *sql.Row) (*db.Subscription, error) {
	var s db.Subscription
	err := row.Scan(&s.ID, &s.VehicleID, &s.PlanID, &s.Status, &s.AutoRenew,
		&s.ValidFrom, &s.ValidTo, &s.StripeSubscriptionID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SubscriptionRepository) Create(vehicleID, planID int, status db.SubscriptionStatus, autoRenew bool, validFrom, validTo time.Time) (*db.Subscription, error) {
	query := `
		INSERT INTO subscriptions (vehicle_id, plan_id, status, auto_renew, valid_from, valid_to)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + subscriptionColumns
	s, err := scanSubscription(r.DB.QueryRow(query, vehicleID, planID, status, autoRenew, validFrom, validTo))
	if err != nil {
		return nil, fmt.Errorf("error creating subscription: %w", err)
	}
	return s, nil
}

func (r *SubscriptionRepository) Get(subID int) (*db.Subscription, error) {
	s, err := scanSubscription(r.DB.QueryRow(`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, subID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying subscription %d: %w", subID, err)
	}
	return s, nil
}

func (r *SubscriptionRepository) ListByVehicle(vehicleID int) ([]db.Subscription, error) {
	rows, err := r.DB.Query(`SELECT `+subscriptionColumns+` FROM subscriptions WHERE vehicle_id = $1 ORDER BY id DESC`, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("error listing subscriptions for vehicle %d: %w", vehicleID, err)
	}
	defer rows.Close()

	var subs []db.Subscription
	for rows.Next() {
		var s db.Subscription
		if err := rows.Scan(&s.ID, &s.VehicleID, &s.PlanID, &s.Status, &s.AutoRenew,
			&s.ValidFrom, &s.ValidTo, &s.StripeSubscriptionID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

// HasOverlappingActive checks the requested [start, end) window against the
// vehicle's active subscriptions: window starting inside an existing one,
// an existing one starting inside the window, or full containment.
func (r *SubscriptionRepository) HasOverlappingActive(vehicleID int, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE vehicle_id = $1
			  AND status = 'active'
			  AND (
				(valid_from <= $2 AND valid_to > $2)
				OR (valid_from < $3 AND valid_to >= $3)
				OR (valid_from >= $2 AND valid_to <= $3)
			  )
		)`
	var exists bool
	if err := r.DB.QueryRow(query, vehicleID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking overlapping subscriptions: %w", err)
	}
	return exists, nil
}

func (r *SubscriptionRepository) HasSuccessfulPayment(subID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM payments WHERE subscription_id = $1 AND status = 'succeeded')`
	var exists bool
	if err := r.DB.QueryRow(query, subID).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking payments for subscription %d: %w", subID, err)
	}
	return exists, nil
}

// GetActivePlanForVehicleAt answers the exit-path question: which
// subscription plan, if any, covers this vehicle right now.
func (r *SubscriptionRepository) GetActivePlanForVehicleAt(vehicleID int, at time.Time) (*db.Plan, error) {
	query := `
		SELECT p.id, p.type, p.currency, p.period_price_cents, p.billing_period,
		       p.price_per_minute_cents, COALESCE(p.method, ''), COALESCE(p.stripe_price_id, ''), p.created_at
		FROM subscriptions s
		JOIN plans p ON p.id = s.plan_id
		WHERE s.vehicle_id = $1
		  AND s.status = 'active'
		  AND s.valid_from <= $2
		  AND s.valid_to > $2
		  AND p.type = 'subscription'
		ORDER BY s.id DESC
		LIMIT 1`
	p, err := scanPlan(r.DB.QueryRow(query, vehicleID, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying active subscription plan for vehicle %d: %w", vehicleID, err)
	}
	return p, nil
}

func (r *SubscriptionRepository) UpdateStatus(subID int, status db.SubscriptionStatus, autoRenew *bool) (*db.Subscription, error) {
	query := `
		UPDATE subscriptions
		SET status = $2, auto_renew = COALESCE($3, auto_renew), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + subscriptionColumns
	s, err := scanSubscription(r.DB.QueryRow(query, subID, status, autoRenew))
	if err != nil {
		return nil, fmt.Errorf("error updating subscription %d status: %w", subID, err)
	}
	return s, nil
}

// CancelAllActiveForVehicle hard-cancels every active subscription: valid_to
// forced to now, auto-renew off. Used by the blacklist cascade.
func (r *SubscriptionRepository) CancelAllActiveForVehicle(vehicleID int) (int64, error) {
	result, err := r.DB.Exec(`
		UPDATE subscriptions
		SET status = 'canceled', valid_to = NOW(), auto_renew = FALSE, updated_at = NOW()
		WHERE vehicle_id = $1 AND status = 'active'`, vehicleID)
	if err != nil {
		return 0, fmt.Errorf("error canceling subscriptions for vehicle %d: %w", vehicleID, err)
	}
	return result.RowsAffected()
}

// ResumePausedForVehicle is the explicit escape hatch used when an operator
// whitelists a vehicle and asks for its paused grants back.
func (r *SubscriptionRepository) ResumePausedForVehicle(vehicleID int) (int64, error) {
	result, err := r.DB.Exec(`
		UPDATE subscriptions
		SET status = 'active', updated_at = NOW()
		WHERE vehicle_id = $1 AND status = 'paused' AND valid_to > NOW()`, vehicleID)
	if err != nil {
		return 0, fmt.Errorf("error resuming subscriptions for vehicle %d: %w", vehicleID, err)
	}
	return result.RowsAffected()
}

func (r *SubscriptionRepository) SetStripeSubscriptionID(subID int, stripeSubID string) error {
	_, err := r.DB.Exec(`UPDATE subscriptions SET stripe_subscription_id = $2, updated_at = NOW() WHERE id = $1`, subID, stripeSubID)
	if err != nil {
		return fmt.Errorf("error storing provider subscription id on subscription %d: %w", subID, err)
	}
	return nil
}

func (r *SubscriptionRepository) GetByStripeSubscriptionID(stripeSubID string) (*db.Subscription, error) {
	s, err := scanSubscription(r.DB.QueryRow(
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE stripe_subscription_id = $1`, stripeSubID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying subscription by provider id: %w", err)
	}
	return s, nil
}

func (r *SubscriptionRepository) Delete(subID int) error {
	_, err := r.DB.Exec(`DELETE FROM subscriptions WHERE id = $1`, subID)
	if err != nil {
		return fmt.Errorf("error deleting subscription %d: %w", subID, err)
	}
	return nil
}
