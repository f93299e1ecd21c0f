package entities

import (
	"time"

	"petroffparking/internal/db"
)

type VehicleRegisterRequest struct {
	DriverID   int    `json:"driver_id"`
	RegionCode string `json:"region_code"`
	PlateText  string `json:"plate_text"`
}

type AccessListRequest struct {
	Reason string `json:"reason"`
	// Only honored on whitelist requests.
	ResumeSubscriptions bool `json:"resume_subscriptions"`
}

type VehicleResponse struct {
	ID            int       `json:"id"`
	DriverID      int       `json:"driver_id"`
	RegionCode    string    `json:"region_code"`
	PlateText     string    `json:"plate_text"`
	IsBlacklisted bool      `json:"is_blacklisted"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewVehicleResponse(v *db.Vehicle) VehicleResponse {
	return VehicleResponse{
		ID:            v.ID,
		DriverID:      v.DriverID,
		RegionCode:    v.RegionCode,
		PlateText:     v.PlateText,
		IsBlacklisted: v.IsBlacklisted,
		CreatedAt:     v.CreatedAt,
	}
}

type AuditEventResponse struct {
	ID        int       `json:"id"`
	AdminID   *int      `json:"admin_id,omitempty"`
	VehicleID *int      `json:"vehicle_id,omitempty"`
	Action    string    `json:"action"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func NewAuditEventResponse(e *db.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		ID:        e.ID,
		AdminID:   e.AdminID,
		VehicleID: e.VehicleID,
		Action:    e.Action,
		Reason:    e.Reason,
		CreatedAt: e.CreatedAt,
	}
}

type DriverRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type DriverResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func NewDriverResponse(d *db.Driver) DriverResponse {
	return DriverResponse{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		CreatedAt: d.CreatedAt,
	}
}
