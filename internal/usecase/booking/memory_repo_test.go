package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	domain "github.com/CityCareHQ/hospital-scheduler/internal/domain/booking"
	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
)

// memRepo is an in-memory domain.Repository for protocol tests. A single
// mutex stands in for the store's row-level atomicity: each method applies
// its documented condition and write as one critical section.
type memRepo struct {
	mu           sync.Mutex
	doctors      map[uint]*models.Doctor
	patients     map[uint]*models.Patient // keyed by user ID
	slots        map[domain.SlotKey]*models.SlotReservation
	appointments map[uint]*models.Appointment
	nextAppID    uint
}

func newMemRepo() *memRepo {
	return &memRepo{
		doctors:      make(map[uint]*models.Doctor),
		patients:     make(map[uint]*models.Patient),
		slots:        make(map[domain.SlotKey]*models.SlotReservation),
		appointments: make(map[uint]*models.Appointment),
	}
}

func (m *memRepo) GetDoctor(_ context.Context, id uint) (*models.Doctor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.doctors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memRepo) GetPatientByUser(_ context.Context, userID uint) (*models.Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.patients[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memRepo) UnavailableTimes(
	_ context.Context,
	doctorID uint,
	date string,
	now time.Time,
) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var times []string
	for key, row := range m.slots {
		if key.DoctorID != doctorID || key.Date != date {
			continue
		}
		if row.Unavailable(now) {
			times = append(times, key.Time)
		}
	}
	sort.Strings(times)
	return times, nil
}

func (m *memRepo) AcquireLock(
	_ context.Context,
	key domain.SlotKey,
	patientID uint,
	now time.Time,
	until time.Time,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.slots[key]
	if ok {
		sameHolder := row.PatientID != nil && *row.PatientID == patientID
		liveLock := row.LockedUntil != nil && row.LockedUntil.After(now)
		if row.Booked || (liveLock && !sameHolder) {
			return httperr.ErrBusiness("slot_unavailable")
		}
	} else {
		row = &models.SlotReservation{
			DoctorID: key.DoctorID,
			SlotDate: key.Date,
			SlotTime: key.Time,
		}
		m.slots[key] = row
	}

	pid := patientID
	row.PatientID = &pid
	u := until
	row.LockedUntil = &u
	return nil
}

func (m *memRepo) ConfirmBooking(
	_ context.Context,
	key domain.SlotKey,
	patientID uint,
	now time.Time,
	ap *models.Appointment,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.slots[key]
	holds := ok && !row.Booked &&
		row.PatientID != nil && *row.PatientID == patientID &&
		row.LockedUntil != nil && row.LockedUntil.After(now)
	if !holds {
		return httperr.ErrBusiness("lock_expired")
	}

	row.Booked = true
	row.LockedUntil = nil

	m.nextAppID++
	ap.ID = m.nextAppID
	cp := *ap
	m.appointments[ap.ID] = &cp
	return nil
}

func (m *memRepo) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ap, ok := m.appointments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ap
	return &cp, nil
}

func (m *memRepo) GetAppointmentForPatient(
	_ context.Context,
	id uint,
	patientID uint,
) (*models.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ap, ok := m.appointments[id]
	if !ok || ap.PatientID != patientID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ap
	return &cp, nil
}

func (m *memRepo) CancelBooking(_ context.Context, ap *models.Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *ap
	m.appointments[ap.ID] = &cp

	key := domain.SlotKey{DoctorID: ap.DoctorID, Date: ap.SlotDate, Time: ap.SlotTime}
	if row, ok := m.slots[key]; ok {
		row.Booked = false
		row.LockedUntil = nil
		row.PatientID = nil
	}
	return nil
}

func (m *memRepo) SweepExpiredLocks(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cleared int64
	for _, row := range m.slots {
		if row.Booked || row.LockedUntil == nil {
			continue
		}
		if !row.LockedUntil.After(now) {
			row.LockedUntil = nil
			row.PatientID = nil
			cleared++
		}
	}
	return cleared, nil
}

var _ domain.Repository = (*memRepo)(nil)
