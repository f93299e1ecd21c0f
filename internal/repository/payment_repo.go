package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"petroffparking/internal/db"
)

type PaymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(database *sql.DB) *PaymentRepository {
	return &PaymentRepository{DB: database}
}

const paymentColumns = `id, session_id, subscription_id, status, currency, amount_cents, COALESCE(method, ''), COALESCE(stripe_checkout_id, ''), COALESCE(stripe_payment_intent_id, ''), created_at`

func scanPayment(row *sql.Row) (*db.Payment, error) {
	var p db.Payment
	err := row.Scan(&p.ID, &p.SessionID, &p.SubscriptionID, &p.Status, &p.Currency,
		&p.AmountCents, &p.Method, &p.StripeCheckoutID, &p.StripePaymentIntentID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepository) Create(p *db.Payment) (*db.Payment, error) {
	query := `
		INSERT INTO payments (session_id, subscription_id, status, currency, amount_cents, method)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING ` + paymentColumns
	created, err := scanPayment(r.DB.QueryRow(query,
		p.SessionID, p.SubscriptionID, p.Status, p.Currency, p.AmountCents, p.Method))
	if err != nil {
		return nil, fmt.Errorf("error creating payment: %w", err)
	}
	return created, nil
}

func (r *PaymentRepository) Get(paymentID int) (*db.Payment, error) {
	p, err := scanPayment(r.DB.QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, paymentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying payment %d: %w", paymentID, err)
	}
	return p, nil
}

func (r *PaymentRepository) List(sessionID, subscriptionID *int, status string) ([]db.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE 1=1`
	args := []interface{}{}
	idx := 1

	if sessionID != nil {
		query += ` AND session_id = $` + strconv.Itoa(idx)
		args = append(args, *sessionID)
		idx++
	}
	if subscriptionID != nil {
		query += ` AND subscription_id = $` + strconv.Itoa(idx)
		args = append(args, *subscriptionID)
		idx++
	}
	if status != "" {
		query += ` AND status = $` + strconv.Itoa(idx)
		args = append(args, status)
		idx++
	}
	query += ` ORDER BY id DESC`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing payments: %w", err)
	}
	defer rows.Close()

	var payments []db.Payment
	for rows.Next() {
		var p db.Payment
		if err := rows.Scan(&p.ID, &p.SessionID, &p.SubscriptionID, &p.Status, &p.Currency,
			&p.AmountCents, &p.Method, &p.StripeCheckoutID, &p.StripePaymentIntentID, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *PaymentRepository) SetStatus(paymentID int, status db.PaymentStatus) (*db.Payment, error) {
	query := `UPDATE payments SET status = $2 WHERE id = $1 RETURNING ` + paymentColumns
	p, err := scanPayment(r.DB.QueryRow(query, paymentID, status))
	if err != nil {
		return nil, fmt.Errorf("error updating payment %d status: %w", paymentID, err)
	}
	return p, nil
}

func (r *PaymentRepository) Delete(paymentID int) error {
	_, err := r.DB.Exec(`DELETE FROM payments WHERE id = $1`, paymentID)
	if err != nil {
		return fmt.Errorf("error deleting payment %d: %w", paymentID, err)
	}
	return nil
}

// GetPendingForSession returns the newest pending payment for a session, so a
// repeated checkout request reuses the same ledger row.
func (r *PaymentRepository) GetPendingForSession(sessionID int) (*db.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE session_id = $1 AND status = 'pending'
		ORDER BY id DESC
		LIMIT 1`
	p, err := scanPayment(r.DB.QueryRow(query, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying pending payment for session %d: %w", sessionID, err)
	}
	return p, nil
}

func (r *PaymentRepository) GetPendingForSubscription(subscriptionID int) (*db.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE subscription_id = $1 AND status = 'pending'
		ORDER BY id DESC
		LIMIT 1`
	p, err := scanPayment(r.DB.QueryRow(query, subscriptionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying pending payment for subscription %d: %w", subscriptionID, err)
	}
	return p, nil
}

func (r *PaymentRepository) AttachStripeIDs(paymentID int, checkoutID, paymentIntentID string) error {
	_, err := r.DB.Exec(`
		UPDATE payments
		SET stripe_checkout_id = COALESCE(NULLIF($2, ''), stripe_checkout_id),
		    stripe_payment_intent_id = COALESCE(NULLIF($3, ''), stripe_payment_intent_id)
		WHERE id = $1`, paymentID, checkoutID, paymentIntentID)
	if err != nil {
		return fmt.Errorf("error attaching provider ids to payment %d: %w", paymentID, err)
	}
	return nil
}

func (r *PaymentRepository) GetByCheckoutID(checkoutID string) (*db.Payment, error) {
	p, err := scanPayment(r.DB.QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE stripe_checkout_id = $1`, checkoutID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying payment by checkout id: %w", err)
	}
	return p, nil
}

func (r *PaymentRepository) GetByPaymentIntentID(paymentIntentID string) (*db.Payment, error) {
	p, err := scanPayment(r.DB.QueryRow(`SELECT `+paymentColumns+` FROM payments WHERE stripe_payment_intent_id = $1`, paymentIntentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying payment by payment intent id: %w", err)
	}
	return p, nil
}
