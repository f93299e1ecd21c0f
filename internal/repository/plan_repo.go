package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"petroffparking/internal/db"
)

type PlanRepository struct {
	DB *sql.DB
}

func NewPlanRepository(database *sql.DB) *PlanRepository {
	return &PlanRepository{DB: database}
}

const planColumns = `id, type, currency, period_price_cents, billing_period, price_per_minute_cents, COALESCE(method, ''), COALESCE(stripe_price_id, ''), created_at`

func scanPlan(row *sql.Row) (*db.Plan, error) {
	var p db.Plan
	var billingPeriod *string
	err := row.Scan(&p.ID, &p.Type, &p.Currency, &p.PeriodPriceCents, &billingPeriod,
		&p.PricePerMinuteCents, &p.Method, &p.StripePriceID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	if billingPeriod != nil {
		bp := db.BillingPeriod(*billingPeriod)
		p.BillingPeriod = &bp
	}
	return &p, nil
}

func (r *PlanRepository) Create(p *db.Plan) (*db.Plan, error) {
	query := `
		INSERT INTO plans (type, currency, period_price_cents, billing_period, price_per_minute_cents, method, stripe_price_id)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
		RETURNING ` + planColumns
	created, err := scanPlan(r.DB.QueryRow(query,
		p.Type, p.Currency, p.PeriodPriceCents, billingPeriodArg(p.BillingPeriod),
		p.PricePerMinuteCents, p.Method, p.StripePriceID))
	if err != nil {
		return nil, fmt.Errorf("error creating plan: %w", err)
	}
	return created, nil
}

func (r *PlanRepository) Get(planID int) (*db.Plan, error) {
	p, err := scanPlan(r.DB.QueryRow(`SELECT `+planColumns+` FROM plans WHERE id = $1`, planID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying plan %d: %w", planID, err)
	}
	return p, nil
}

func (r *PlanRepository) List(planType string) ([]db.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans`
	args := []interface{}{}
	if planType != "" {
		query += ` WHERE type = $1`
		args = append(args, planType)
	}
	query += ` ORDER BY id`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing plans: %w", err)
	}
	defer rows.Close()

	var plans []db.Plan
	for rows.Next() {
		var p db.Plan
		var billingPeriod *string
		if err := rows.Scan(&p.ID, &p.Type, &p.Currency, &p.PeriodPriceCents, &billingPeriod,
			&p.PricePerMinuteCents, &p.Method, &p.StripePriceID, &p.CreatedAt); err != nil {
			return nil, err
		}
		if billingPeriod != nil {
			bp := db.BillingPeriod(*billingPeriod)
			p.BillingPeriod = &bp
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *PlanRepository) Update(p *db.Plan) (*db.Plan, error) {
	query := `
		UPDATE plans
		SET type = $2, currency = $3, period_price_cents = $4, billing_period = $5,
		    price_per_minute_cents = $6, method = NULLIF($7, ''), stripe_price_id = NULLIF($8, '')
		WHERE id = $1
		RETURNING ` + planColumns
	updated, err := scanPlan(r.DB.QueryRow(query,
		p.ID, p.Type, p.Currency, p.PeriodPriceCents, billingPeriodArg(p.BillingPeriod),
		p.PricePerMinuteCents, p.Method, p.StripePriceID))
	if err != nil {
		return nil, fmt.Errorf("error updating plan %d: %w", p.ID, err)
	}
	return updated, nil
}

func (r *PlanRepository) Delete(planID int) error {
	_, err := r.DB.Exec(`DELETE FROM plans WHERE id = $1`, planID)
	if err != nil {
		return fmt.Errorf("error deleting plan %d: %w", planID, err)
	}
	return nil
}

// GetDefaultVisitorPlan returns the visitor plan used to quote pay-per-use
// exits. With several visitor plans configured the oldest one wins.
func (r *PlanRepository) GetDefaultVisitorPlan() (*db.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE type = 'visitor' ORDER BY id LIMIT 1`
	p, err := scanPlan(r.DB.QueryRow(query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying default visitor plan: %w", err)
	}
	return p, nil
}

func billingPeriodArg(bp *db.BillingPeriod) interface{} {
	if bp == nil {
		return nil
	}
	return string(*bp)
}
