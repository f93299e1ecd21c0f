package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"petroffparking/internal/db"
	apperrors "petroffparking/internal/errors"
)

type VehicleRepository struct {
	DB *sql.DB
}

func NewVehicleRepository(database *sql.DB) *VehicleRepository {
	return &VehicleRepository{DB: database}
}

const vehicleColumns = `id, driver_id, region_code, plate_text, is_blacklisted, created_at`

func (r *VehicleRepository) Create(driverID int, regionCode, plateText string) (*db.Vehicle, error) {
	var v db.Vehicle
	query := `
		INSERT INTO vehicles (driver_id, region_code, plate_text)
		VALUES ($1, $2, $3)
		RETURNING ` + vehicleColumns
	err := r.DB.QueryRow(query, driverID, normalizePlatePart(regionCode), normalizePlatePart(plateText)).
		Scan(&v.ID, &v.DriverID, &v.RegionCode, &v.PlateText, &v.IsBlacklisted, &v.CreatedAt)
	if err != nil {
		// The unique index on (region_code, plate_text) closes the
		// concurrent-registration race; report it as a conflict.
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("vehicle already registered")
		}
		return nil, fmt.Errorf("error creating vehicle: %w", err)
	}
	return &v, nil
}

func (r *VehicleRepository) GetByID(vehicleID int) (*db.Vehicle, error) {
	var v db.Vehicle
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	err := r.DB.QueryRow(query, vehicleID).
		Scan(&v.ID, &v.DriverID, &v.RegionCode, &v.PlateText, &v.IsBlacklisted, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying vehicle %d: %w", vehicleID, err)
	}
	return &v, nil
}

func (r *VehicleRepository) GetByPlate(regionCode, plateText string) (*db.Vehicle, error) {
	var v db.Vehicle
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE region_code = $1 AND plate_text = $2`
	err := r.DB.QueryRow(query, normalizePlatePart(regionCode), normalizePlatePart(plateText)).
		Scan(&v.ID, &v.DriverID, &v.RegionCode, &v.PlateText, &v.IsBlacklisted, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying vehicle by plate: %w", err)
	}
	return &v, nil
}

func (r *VehicleRepository) ListByDriver(driverID int) ([]db.Vehicle, error) {
	rows, err := r.DB.Query(`SELECT `+vehicleColumns+` FROM vehicles WHERE driver_id = $1 ORDER BY id DESC`, driverID)
	if err != nil {
		return nil, fmt.Errorf("error listing vehicles for driver %d: %w", driverID, err)
	}
	defer rows.Close()

	var vehicles []db.Vehicle
	for rows.Next() {
		var v db.Vehicle
		if err := rows.Scan(&v.ID, &v.DriverID, &v.RegionCode, &v.PlateText, &v.IsBlacklisted, &v.CreatedAt); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *VehicleRepository) SetBlacklist(vehicleID int, blacklisted bool) (*db.Vehicle, error) {
	var v db.Vehicle
	query := `
		UPDATE vehicles SET is_blacklisted = $2
		WHERE id = $1
		RETURNING ` + vehicleColumns
	err := r.DB.QueryRow(query, vehicleID, blacklisted).
		Scan(&v.ID, &v.DriverID, &v.RegionCode, &v.PlateText, &v.IsBlacklisted, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error updating blacklist flag for vehicle %d: %w", vehicleID, err)
	}
	return &v, nil
}

// DeleteIfBlacklisted removes the vehicle only while the flag is still set.
// Sessions and subscriptions go with it via ON DELETE CASCADE.
func (r *VehicleRepository) DeleteIfBlacklisted(vehicleID int) (bool, error) {
	result, err := r.DB.Exec(`DELETE FROM vehicles WHERE id = $1 AND is_blacklisted = TRUE`, vehicleID)
	if err != nil {
		return false, fmt.Errorf("error deleting blacklisted vehicle %d: %w", vehicleID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func normalizePlatePart(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
