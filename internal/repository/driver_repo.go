package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"petroffparking/internal/db"
	apperrors "petroffparking/internal/errors"
)

type DriverRepository struct {
	DB *sql.DB
}

func NewDriverRepository(database *sql.DB) *DriverRepository {
	return &DriverRepository{DB: database}
}

func (r *DriverRepository) Create(name, email, phone string) (*db.Driver, error) {
	var d db.Driver
	query := `
		INSERT INTO drivers (name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id, name, email, COALESCE(phone, ''), created_at`
	err := r.DB.QueryRow(query, name, email, phone).Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("driver with this email already exists")
		}
		return nil, fmt.Errorf("error creating driver: %w", err)
	}
	return &d, nil
}

func (r *DriverRepository) GetByEmail(email string) (*db.Driver, error) {
	var d db.Driver
	query := `SELECT id, name, email, COALESCE(phone, ''), created_at FROM drivers WHERE email = $1`
	err := r.DB.QueryRow(query, email).Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying driver by email: %w", err)
	}
	return &d, nil
}

func (r *DriverRepository) GetByID(driverID int) (*db.Driver, error) {
	var d db.Driver
	query := `SELECT id, name, email, COALESCE(phone, ''), created_at FROM drivers WHERE id = $1`
	err := r.DB.QueryRow(query, driverID).Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying driver %d: %w", driverID, err)
	}
	return &d, nil
}

func (r *DriverRepository) List() ([]db.Driver, error) {
	rows, err := r.DB.Query(`SELECT id, name, email, COALESCE(phone, ''), created_at FROM drivers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing drivers: %w", err)
	}
	defer rows.Close()

	var drivers []db.Driver
	for rows.Next() {
		var d db.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.Phone, &d.CreatedAt); err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
