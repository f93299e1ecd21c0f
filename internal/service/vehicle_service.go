package service

import (
	"strings"

	"petroffparking/internal/db"
	"petroffparking/internal/entities"
	apperrors "petroffparking/internal/errors"
)

type VehicleStore interface {
	Create(driverID int, regionCode, plateText string) (*db.Vehicle, error)
	GetByID(vehicleID int) (*db.Vehicle, error)
	GetByPlate(regionCode, plateText string) (*db.Vehicle, error)
	ListByDriver(driverID int) ([]db.Vehicle, error)
}

type DriverStore interface {
	Create(name, email, phone string) (*db.Driver, error)
	GetByID(driverID int) (*db.Driver, error)
	GetByEmail(email string) (*db.Driver, error)
	List() ([]db.Driver, error)
}

// VehicleService is plate registration for known drivers. Visitor plates are
// provisioned by the gate, not here.
type VehicleService struct {
	vehicles VehicleStore
	drivers  DriverStore
}

func NewVehicleService(vehicles VehicleStore, drivers DriverStore) *VehicleService {
	return &VehicleService{vehicles: vehicles, drivers: drivers}
}

func (s *VehicleService) Register(req entities.VehicleRegisterRequest) (*db.Vehicle, error) {
	if strings.TrimSpace(req.RegionCode) == "" || strings.TrimSpace(req.PlateText) == "" {
		return nil, apperrors.Validation("region_code and plate_text are required")
	}
	driver, err := s.drivers.GetByID(req.DriverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, apperrors.NotFound("driver not found")
	}
	return s.vehicles.Create(req.DriverID, req.RegionCode, req.PlateText)
}

func (s *VehicleService) Get(vehicleID int) (*db.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(vehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle not found")
	}
	return vehicle, nil
}

func (s *VehicleService) GetByPlate(regionCode, plateText string) (*db.Vehicle, error) {
	vehicle, err := s.vehicles.GetByPlate(regionCode, plateText)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, apperrors.NotFound("vehicle not found")
	}
	return vehicle, nil
}

func (s *VehicleService) ListForDriver(driverID int) ([]db.Vehicle, error) {
	return s.vehicles.ListByDriver(driverID)
}

type DriverService struct {
	drivers DriverStore
}

func NewDriverService(drivers DriverStore) *DriverService {
	return &DriverService{drivers: drivers}
}

func (s *DriverService) Create(req entities.DriverRequest) (*db.Driver, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return nil, apperrors.Validation("name and email are required")
	}
	return s.drivers.Create(req.Name, strings.ToLower(strings.TrimSpace(req.Email)), req.Phone)
}

func (s *DriverService) Get(driverID int) (*db.Driver, error) {
	driver, err := s.drivers.GetByID(driverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, apperrors.NotFound("driver not found")
	}
	return driver, nil
}

func (s *DriverService) List() ([]db.Driver, error) {
	return s.drivers.List()
}
