package service

import (
	"log"

	"petroffparking/internal/db"
	apperrors "petroffparking/internal/errors"
)

type AccessVehicleStore interface {
	GetByID(vehicleID int) (*db.Vehicle, error)
	SetBlacklist(vehicleID int, blacklisted bool) (*db.Vehicle, error)
	DeleteIfBlacklisted(vehicleID int) (bool, error)
}

type AccessSubscriptionStore interface {
	CancelAllActiveForVehicle(vehicleID int) (int64, error)
	ResumePausedForVehicle(vehicleID int) (int64, error)
}

type AuditStore interface {
	Insert(adminID, vehicleID *int, action, reason string) (*db.AuditEvent, error)
	ListByVehicle(vehicleID int) ([]db.AuditEvent, error)
}

// AccessListService flips the entry-time deny flag. Blacklisting is a hard
// cancel: any active subscriptions for the vehicle are terminated, and
// whitelisting later does not bring them back.
type AccessListService struct {
	vehicles AccessVehicleStore
	subs     AccessSubscriptionStore
	audit    AuditStore
}

func NewAccessListService(vehicles AccessVehicleStore, subs AccessSubscriptionStore, audit AuditStore) *AccessListService {
	return &AccessListService{vehicles: vehicles, subs: subs, audit: audit}
}

func (s *AccessListService) Blacklist(vehicleID int, adminID *int, reason string) (*db.Vehicle, error) {
	vehicle, err := s.vehicles.SetBlacklist(vehicleID, true)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle not found")
	}

	canceled, err := s.subs.CancelAllActiveForVehicle(vehicleID)
	if err != nil {
		return nil, err
	}
	if canceled > 0 {
		log.Printf("Blacklist of vehicle %d canceled %d active subscription(s)", vehicleID, canceled)
	}

	if _, err := s.audit.Insert(adminID, &vehicle.ID, "vehicle.blacklist", reason); err != nil {
		return nil, err
	}
	return vehicle, nil
}

// Whitelist clears the flag. resumeSubscriptions is the explicit escape
// hatch for grants that were paused (not canceled) while the flag was set.
func (s *AccessListService) Whitelist(vehicleID int, adminID *int, reason string, resumeSubscriptions bool) (*db.Vehicle, error) {
	vehicle, err := s.vehicles.SetBlacklist(vehicleID, false)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle not found")
	}

	if resumeSubscriptions {
		resumed, err := s.subs.ResumePausedForVehicle(vehicleID)
		if err != nil {
			return nil, err
		}
		if resumed > 0 {
			log.Printf("Whitelist of vehicle %d resumed %d paused subscription(s)", vehicleID, resumed)
		}
	}

	if _, err := s.audit.Insert(adminID, &vehicle.ID, "vehicle.whitelist", reason); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *AccessListService) AuditTrail(vehicleID int) ([]db.AuditEvent, error) {
	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle not found")
	}
	return s.audit.ListByVehicle(vehicleID)
}

// DeleteBlacklisted purges a blacklisted vehicle. The audit event is written
// first so the trail survives the row.
func (s *AccessListService) DeleteBlacklisted(vehicleID int, adminID *int, reason string) error {
	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return err
	}
	if vehicle == nil {
		return apperrors.NotFound("vehicle not found")
	}
	if !vehicle.IsBlacklisted {
		return apperrors.Conflict("vehicle is not blacklisted")
	}

	if _, err := s.audit.Insert(adminID, &vehicle.ID, "vehicle.delete_blacklisted", reason); err != nil {
		return err
	}
	deleted, err := s.vehicles.DeleteIfBlacklisted(vehicleID)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.Conflict("vehicle is not blacklisted")
	}
	return nil
}
