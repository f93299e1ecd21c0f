package service

import (
	"log"
	"strings"
	"time"

	"petroffparking/internal/config"
	"petroffparking/internal/db"
	"petroffparking/internal/entities"
	apperrors "petroffparking/internal/errors"
)

const (
	visitorDriverEmail = "visitor@system.local"
	visitorDriverName  = "Visitor"

	// Window within which a duplicate exit scan is answered with the quote
	// already stored on the awaiting-payment session.
	requoteWindow = 5 * time.Minute
)

type GateVehicleStore interface {
	GetByPlate(regionCode, plateText string) (*db.Vehicle, error)
	Create(driverID int, regionCode, plateText string) (*db.Vehicle, error)
}

type GateDriverStore interface {
	GetByEmail(email string) (*db.Driver, error)
	Create(name, email, phone string) (*db.Driver, error)
}

type GateSessionStore interface {
	Create(vehicleID int, startedAt time.Time) (*db.Session, error)
	GetOpenForVehicle(vehicleID int) (*db.Session, error)
	LatestAwaitingPaymentForVehicle(vehicleID int, endedAfter time.Time) (*db.Session, error)
	Close(sessionID int, endedAt time.Time) (*db.Session, error)
	MarkAwaitingPayment(sessionID int, endedAt time.Time, planID int, durationMin int, amountCents int64) (*db.Session, error)
}

type GateSubscriptionStore interface {
	GetActivePlanForVehicleAt(vehicleID int, at time.Time) (*db.Plan, error)
}

type GatePlanStore interface {
	GetDefaultVisitorPlan() (*db.Plan, error)
}

// GateService drives entry and exit scans: it resolves the plate to a
// vehicle, keeps the one-open-session rule, picks the subscriber or visitor
// exit path and signals the barrier.
type GateService struct {
	cfg      config.Config
	vehicles GateVehicleStore
	drivers  GateDriverStore
	sessions GateSessionStore
	subs     GateSubscriptionStore
	plans    GatePlanStore
	barrier  Barrier

	now func() time.Time
}

func NewGateService(cfg config.Config, vehicles GateVehicleStore, drivers GateDriverStore,
	sessions GateSessionStore, subs GateSubscriptionStore, plans GatePlanStore, barrier Barrier) *GateService {
	return &GateService{
		cfg:      cfg,
		vehicles: vehicles,
		drivers:  drivers,
		sessions: sessions,
		subs:     subs,
		plans:    plans,
		barrier:  barrier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *GateService) ensureVisitorDriver() (*db.Driver, error) {
	d, err := s.drivers.GetByEmail(visitorDriverEmail)
	if err != nil {
		return nil, err
	}
	if d != nil {
		return d, nil
	}
	return s.drivers.Create(visitorDriverName, visitorDriverEmail, "")
}

// resolveVehicle normalizes the plate and looks the vehicle up. With
// autoProvision set, unknown plates are registered under the visitor driver.
func (s *GateService) resolveVehicle(regionCode, plateText string, autoProvision bool) (*db.Vehicle, error) {
	regionCode = strings.ToUpper(strings.TrimSpace(regionCode))
	plateText = strings.ToUpper(strings.TrimSpace(plateText))

	vehicle, err := s.vehicles.GetByPlate(regionCode, plateText)
	if err != nil {
		return nil, err
	}
	if vehicle != nil {
		return vehicle, nil
	}
	if !autoProvision {
		return nil, nil
	}
	visitorDriver, err := s.ensureVisitorDriver()
	if err != nil {
		return nil, err
	}
	vehicle, err = s.vehicles.Create(visitorDriver.ID, regionCode, plateText)
	if err != nil {
		// Lost the registration race to a concurrent scan; the row exists now.
		if apperrors.KindOf(err) == apperrors.KindConflict {
			return s.vehicles.GetByPlate(regionCode, plateText)
		}
		return nil, err
	}
	return vehicle, nil
}

// HandleEntryScan admits or denies a vehicle at the entry gate. Denials come
// back as forbidden errors; everything else opens the barrier.
func (s *GateService) HandleEntryScan(req entities.ScanRequest) (*entities.EntryScanResult, error) {
	now := s.now()

	vehicle, err := s.resolveVehicle(req.RegionCode, req.PlateText, s.cfg.VisitorModeEnabled)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		s.barrier.ForceClose()
		return nil, apperrors.Forbidden("not_allowed")
	}
	if vehicle.IsBlacklisted {
		s.barrier.ForceClose()
		return nil, apperrors.Forbidden("blacklisted")
	}

	// Duplicate scans and camera retries reuse the open session.
	open, err := s.sessions.GetOpenForVehicle(vehicle.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		s.barrier.PulseOpen(s.cfg.BarrierPulseSeconds)
		return &entities.EntryScanResult{
			SessionID:     open.ID,
			Status:        "open",
			Reason:        "existing_open_session",
			BarrierAction: "open",
			CreatedAtUTC:  open.StartedAt,
		}, nil
	}

	sess, err := s.sessions.Create(vehicle.ID, now)
	if err != nil {
		// A concurrent entry scan won the partial-index race; reuse its session.
		if apperrors.KindOf(err) == apperrors.KindConflict {
			if open, lookupErr := s.sessions.GetOpenForVehicle(vehicle.ID); lookupErr == nil && open != nil {
				s.barrier.PulseOpen(s.cfg.BarrierPulseSeconds)
				return &entities.EntryScanResult{
					SessionID:     open.ID,
					Status:        "open",
					Reason:        "existing_open_session",
					BarrierAction: "open",
					CreatedAtUTC:  open.StartedAt,
				}, nil
			}
		}
		return nil, err
	}

	log.Printf("Gate %s: opened session %d for %s/%s", req.GateID, sess.ID, vehicle.RegionCode, vehicle.PlateText)
	s.barrier.PulseOpen(s.cfg.BarrierPulseSeconds)
	return &entities.EntryScanResult{
		SessionID:     sess.ID,
		Status:        "open",
		Reason:        "created",
		BarrierAction: "open",
		CreatedAtUTC:  sess.StartedAt,
	}, nil
}

// HandleExitScan settles a stay at the exit gate. Subscribers leave at once;
// visitors get a quote and wait for payment. Problems come back inside the
// result so the gate UI can display them; only infrastructure failures are
// returned as errors.
func (s *GateService) HandleExitScan(req entities.ScanRequest) (*entities.ExitScanResult, error) {
	now := s.now()

	vehicle, err := s.resolveVehicle(req.RegionCode, req.PlateText, false)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		s.barrier.ForceClose()
		return &entities.ExitScanResult{
			Status:        "error",
			Detail:        "vehicle_not_found",
			BarrierAction: "hold",
		}, nil
	}

	open, err := s.sessions.GetOpenForVehicle(vehicle.ID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return s.requoteOrFail(vehicle, now)
	}
	// Concurrent exit already closed it: let the vehicle out.
	if open.EndedAt != nil {
		s.barrier.PulseOpen(s.cfg.BarrierPulseSeconds)
		return &entities.ExitScanResult{
			SessionID:     &open.ID,
			Status:        "closed",
			Detail:        "already_closed",
			BarrierAction: "open",
		}, nil
	}

	// Subscriber path: an active subscription covering now closes the stay
	// for free. Blacklist is an entry-time control and is not re-checked here.
	subPlan, err := s.subs.GetActivePlanForVehicleAt(vehicle.ID, now)
	if err != nil {
		return nil, err
	}
	if subPlan != nil {
		closed, err := s.sessions.Close(open.ID, now)
		if err != nil {
			return nil, err
		}
		s.barrier.PulseOpen(s.cfg.BarrierPulseSeconds)
		return &entities.ExitScanResult{
			SessionID:     &closed.ID,
			Status:        "closed",
			Detail:        "subscriber_exit",
			BarrierAction: "open",
		}, nil
	}

	return s.visitorExit(open, now)
}

func (s *GateService) requoteOrFail(vehicle *db.Vehicle, now time.Time) (*entities.ExitScanResult, error) {
	awaiting, err := s.sessions.LatestAwaitingPaymentForVehicle(vehicle.ID, now.Add(-requoteWindow))
	if err != nil {
		return nil, err
	}
	if awaiting != nil && awaiting.AmountCharged != nil {
		s.barrier.ForceClose()
		result := &entities.ExitScanResult{
			SessionID:       &awaiting.ID,
			Status:          "awaiting_payment",
			Detail:          "visitor_exit_payment_required",
			BarrierAction:   "hold",
			AmountCents:     awaiting.AmountCharged,
			MinutesBillable: awaiting.Duration,
			PlanID:          awaiting.PlanID,
		}
		if awaiting.PlanID != nil {
			if plan, planErr := s.plans.GetDefaultVisitorPlan(); planErr == nil && plan != nil {
				result.Currency = plan.Currency
			}
		}
		return result, nil
	}
	s.barrier.ForceClose()
	return &entities.ExitScanResult{
		Status:        "error",
		Detail:        "no_open_session_for_vehicle",
		BarrierAction: "hold",
	}, nil
}

func (s *GateService) visitorExit(open *db.Session, now time.Time) (*entities.ExitScanResult, error) {
	visitorPlan, err := s.plans.GetDefaultVisitorPlan()
	if err != nil {
		return nil, err
	}
	if visitorPlan == nil || visitorPlan.PricePerMinuteCents == nil {
		s.barrier.ForceClose()
		return &entities.ExitScanResult{
			SessionID:     &open.ID,
			Status:        "error",
			Detail:        "visitor_plan_not_configured",
			BarrierAction: "hold",
		}, nil
	}

	amountCents, minutes := ComputeAmountCents(open.StartedAt, now,
		*visitorPlan.PricePerMinuteCents, s.cfg.GraceMinutes, s.cfg.RoundUp)

	if amountCents == 0 && s.cfg.GraceAutoClose {
		closed, err := s.sessions.Close(open.ID, now)
		if err != nil {
			return nil, err
		}
		s.barrier.PulseOpen(s.cfg.BarrierPulseSeconds)
		return &entities.ExitScanResult{
			SessionID:     &closed.ID,
			Status:        "closed",
			Detail:        "grace_period_exit",
			BarrierAction: "open",
		}, nil
	}

	marked, err := s.sessions.MarkAwaitingPayment(open.ID, now, visitorPlan.ID, minutes, amountCents)
	if err != nil {
		return nil, err
	}
	s.barrier.ForceClose()
	return &entities.ExitScanResult{
		SessionID:       &marked.ID,
		Status:          "awaiting_payment",
		Detail:          "visitor_exit_payment_required",
		BarrierAction:   "hold",
		AmountCents:     &amountCents,
		Currency:        visitorPlan.Currency,
		MinutesBillable: &minutes,
		PlanID:          &visitorPlan.ID,
	}, nil
}
