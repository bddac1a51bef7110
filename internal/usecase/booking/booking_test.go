package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CityCareHQ/hospital-scheduler/internal/audit"
	domain "github.com/CityCareHQ/hospital-scheduler/internal/domain/booking"
	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/models"
)

const (
	testDoctorID = uint(1)

	aliceUserID  = uint(10)
	alicePatient = uint(100)
	bobUserID    = uint(11)
	bobPatient   = uint(101)

	// 2026-01-05 is a Monday.
	testDate = "2026-01-05"
	testTime = "10:00:00"
)

// t0 is the fixed "now" every test starts from: well before the first slot.
var t0 = time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

type testEnv struct {
	repo *memRepo

	list    *ListOpenSlots
	lock    *LockSlot
	confirm *ConfirmBooking
	cancel  *CancelBooking
	sweep   *SweepLocks
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := newMemRepo()
	repo.doctors[testDoctorID] = &models.Doctor{
		ID:              testDoctorID,
		AvailableDays:   `["Monday","Wednesday","Friday"]`,
		StartTime:       "09:00:00",
		EndTime:         "11:00:00",
		SlotMinutes:     30,
		ConsultationFee: 150,
	}
	repo.patients[aliceUserID] = &models.Patient{ID: alicePatient, UserID: aliceUserID, FullName: "Alice"}
	repo.patients[bobUserID] = &models.Patient{ID: bobPatient, UserID: bobUserID, FullName: "Bob"}

	dispatcher := audit.NewDispatcher(audit.New(nil))

	env := &testEnv{
		repo:    repo,
		list:    NewListOpenSlots(repo),
		lock:    NewLockSlot(repo, dispatcher),
		confirm: NewConfirmBooking(repo, dispatcher),
		cancel:  NewCancelBooking(repo, dispatcher),
		sweep:   NewSweepLocks(repo, dispatcher),
	}
	env.setNow(t0)
	return env
}

// setNow pins every use case clock to the same instant.
func (e *testEnv) setNow(now time.Time) {
	clock := func() time.Time { return now }
	e.list.now = clock
	e.lock.now = clock
	e.confirm.now = clock
	e.cancel.now = clock
	e.sweep.now = clock
}

func (e *testEnv) lockSlot(t *testing.T, userID uint) *LockSlotResult {
	t.Helper()
	res, err := e.lock.Execute(context.Background(), LockSlotInput{
		DoctorID: testDoctorID,
		Date:     testDate,
		Time:     testTime,
		UserID:   userID,
	})
	require.NoError(t, err)
	return res
}

func (e *testEnv) confirmSlot(t *testing.T, userID uint) *models.Appointment {
	t.Helper()
	ap, err := e.confirm.Execute(context.Background(), ConfirmBookingInput{
		DoctorID:   testDoctorID,
		Date:       testDate,
		Time:       testTime,
		UserID:     userID,
		PaymentRef: "pay_test_001",
	})
	require.NoError(t, err)
	return ap
}

func TestLockThenConfirm(t *testing.T) {
	env := newTestEnv(t)

	res := env.lockSlot(t, aliceUserID)
	assert.Equal(t, t0.Add(LockDuration), res.LockedUntil)
	assert.Equal(t, 300, res.LockDurationSeconds)

	env.setNow(t0.Add(2 * time.Minute))
	ap := env.confirmSlot(t, aliceUserID)

	assert.NotZero(t, ap.ID)
	assert.Equal(t, alicePatient, ap.PatientID)
	assert.Equal(t, string(domain.StatusConfirmed), ap.Status)
	assert.Equal(t, domain.PaymentPaid, ap.PaymentStatus)
	assert.Equal(t, 150.0, ap.ConsultationFee)

	row := env.repo.slots[domain.SlotKey{DoctorID: testDoctorID, Date: testDate, Time: testTime}]
	require.NotNil(t, row)
	assert.True(t, row.Booked)
	assert.Nil(t, row.LockedUntil)
}

func TestConfirmAfterLockExpiry(t *testing.T) {
	env := newTestEnv(t)
	env.lockSlot(t, aliceUserID)

	env.setNow(t0.Add(6 * time.Minute))
	_, err := env.confirm.Execute(context.Background(), ConfirmBookingInput{
		DoctorID:   testDoctorID,
		Date:       testDate,
		Time:       testTime,
		UserID:     aliceUserID,
		PaymentRef: "pay_late",
	})

	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "lock_expired"))
	assert.Empty(t, env.repo.appointments)
}

func TestConfirmWithoutLock(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.confirm.Execute(context.Background(), ConfirmBookingInput{
		DoctorID:   testDoctorID,
		Date:       testDate,
		Time:       testTime,
		UserID:     aliceUserID,
		PaymentRef: "pay_nolock",
	})

	assert.True(t, httperr.IsBusiness(err, "lock_expired"))
}

func TestConfirmRequiresPaymentRef(t *testing.T) {
	env := newTestEnv(t)
	env.lockSlot(t, aliceUserID)

	_, err := env.confirm.Execute(context.Background(), ConfirmBookingInput{
		DoctorID: testDoctorID,
		Date:     testDate,
		Time:     testTime,
		UserID:   aliceUserID,
	})

	assert.True(t, httperr.IsBusiness(err, "missing_payment_ref"))
}

func TestLockContention(t *testing.T) {
	env := newTestEnv(t)
	env.lockSlot(t, aliceUserID)

	// Bob cannot take the slot while Alice's lock is live.
	env.setNow(t0.Add(4 * time.Minute))
	_, err := env.lock.Execute(context.Background(), LockSlotInput{
		DoctorID: testDoctorID,
		Date:     testDate,
		Time:     testTime,
		UserID:   bobUserID,
	})
	require.Error(t, err)
	assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))

	// After expiry he can, with no sweep in between.
	env.setNow(t0.Add(6 * time.Minute))
	env.lockSlot(t, bobUserID)

	// Alice's confirm now fails: the lock changed hands.
	_, err = env.confirm.Execute(context.Background(), ConfirmBookingInput{
		DoctorID:   testDoctorID,
		Date:       testDate,
		Time:       testTime,
		UserID:     aliceUserID,
		PaymentRef: "pay_stale",
	})
	assert.True(t, httperr.IsBusiness(err, "lock_expired"))
}

func TestRelockByHolderExtends(t *testing.T) {
	env := newTestEnv(t)
	env.lockSlot(t, aliceUserID)

	env.setNow(t0.Add(3 * time.Minute))
	res := env.lockSlot(t, aliceUserID)

	assert.Equal(t, t0.Add(3*time.Minute).Add(LockDuration), res.LockedUntil)
}

func TestLockBookedSlot(t *testing.T) {
	env := newTestEnv(t)
	env.lockSlot(t, aliceUserID)
	env.confirmSlot(t, aliceUserID)

	_, err := env.lock.Execute(context.Background(), LockSlotInput{
		DoctorID: testDoctorID,
		Date:     testDate,
		Time:     testTime,
		UserID:   bobUserID,
	})

	assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))
}

func TestDoubleConfirm(t *testing.T) {
	env := newTestEnv(t)
	env.lockSlot(t, aliceUserID)
	env.confirmSlot(t, aliceUserID)

	_, err := env.confirm.Execute(context.Background(), ConfirmBookingInput{
		DoctorID:   testDoctorID,
		Date:       testDate,
		Time:       testTime,
		UserID:     aliceUserID,
		PaymentRef: "pay_again",
	})

	assert.True(t, httperr.IsBusiness(err, "lock_expired"))
	assert.Len(t, env.repo.appointments, 1)
}

func TestLockRejectsUnofferedTime(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		date string
		time string
		code string
	}{
		{"time off the grid", testDate, "10:15:00", "slot_not_offered"},
		{"outside the window", testDate, "12:00:00", "slot_not_offered"},
		{"unavailable weekday", "2026-01-06", testTime, "slot_not_offered"},
		{"malformed date", "05/01/2026", testTime, "invalid_date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.lock.Execute(context.Background(), LockSlotInput{
				DoctorID: testDoctorID,
				Date:     tc.date,
				Time:     tc.time,
				UserID:   aliceUserID,
			})
			require.Error(t, err)
			assert.True(t, httperr.IsBusiness(err, tc.code))
		})
	}
}

func TestListOpenSlots(t *testing.T) {
	env := newTestEnv(t)

	res, err := env.list.Execute(context.Background(), testDoctorID, testDate)
	require.NoError(t, err)
	assert.Equal(t, "Monday", res.DayName)
	assert.True(t, res.DayAvailable)
	require.Len(t, res.Slots, 4)
	assert.Equal(t, "09:00:00", res.Slots[0].Time)

	env.lockSlot(t, aliceUserID)

	// Locked slot disappears while the lock is live.
	env.setNow(t0.Add(4 * time.Minute))
	res, err = env.list.Execute(context.Background(), testDoctorID, testDate)
	require.NoError(t, err)
	assert.Len(t, res.Slots, 3)
	for _, s := range res.Slots {
		assert.NotEqual(t, testTime, s.Time)
	}

	// And reappears after expiry even though no sweep has run.
	env.setNow(t0.Add(6 * time.Minute))
	res, err = env.list.Execute(context.Background(), testDoctorID, testDate)
	require.NoError(t, err)
	assert.Len(t, res.Slots, 4)
}

func TestListOpenSlots_UnavailableDay(t *testing.T) {
	env := newTestEnv(t)

	// 2026-01-06 is a Tuesday.
	res, err := env.list.Execute(context.Background(), testDoctorID, "2026-01-06")

	require.NoError(t, err)
	assert.Equal(t, "Tuesday", res.DayName)
	assert.False(t, res.DayAvailable)
	assert.Empty(t, res.Slots)
}

func TestCancelFreesSlot(t *testing.T) {
	env := newTestEnv(t)
	env.lockSlot(t, aliceUserID)
	booked := env.confirmSlot(t, aliceUserID)

	cancelled, err := env.cancel.Execute(context.Background(), CancelBookingInput{
		AppointmentID: booked.ID,
		UserID:        aliceUserID,
		Role:          models.RolePatient,
		Reason:        "feeling better",
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), cancelled.Status)
	assert.Equal(t, models.RolePatient, cancelled.CancelledBy)
	assert.Equal(t, domain.PaymentRefunded, cancelled.PaymentStatus)
	assert.NotEmpty(t, cancelled.RefundRef)

	// The slot is immediately bookable again.
	env.lockSlot(t, bobUserID)
}

func TestCancelScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	env.lockSlot(t, aliceUserID)
	booked := env.confirmSlot(t, aliceUserID)

	_, err := env.cancel.Execute(context.Background(), CancelBookingInput{
		AppointmentID: booked.ID,
		UserID:        bobUserID,
		Role:          models.RolePatient,
	})
	assert.True(t, httperr.IsBusiness(err, "appointment_not_found"))

	_, err = env.cancel.Execute(context.Background(), CancelBookingInput{
		AppointmentID: booked.ID,
		UserID:        bobUserID,
		Role:          models.RoleDoctor,
	})
	assert.True(t, httperr.IsBusiness(err, "forbidden"))
}

func TestCancelByAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.lockSlot(t, aliceUserID)
	booked := env.confirmSlot(t, aliceUserID)

	adminUser := uint(1)
	cancelled, err := env.cancel.Execute(context.Background(), CancelBookingInput{
		AppointmentID: booked.ID,
		UserID:        adminUser,
		Role:          models.RoleAdmin,
	})

	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, cancelled.CancelledBy)
	assert.Equal(t, "Cancelled by admin", cancelled.CancellationReason)
}

func TestCancelTwice(t *testing.T) {
	env := newTestEnv(t)
	env.lockSlot(t, aliceUserID)
	booked := env.confirmSlot(t, aliceUserID)

	_, err := env.cancel.Execute(context.Background(), CancelBookingInput{
		AppointmentID: booked.ID,
		UserID:        aliceUserID,
		Role:          models.RolePatient,
	})
	require.NoError(t, err)

	_, err = env.cancel.Execute(context.Background(), CancelBookingInput{
		AppointmentID: booked.ID,
		UserID:        aliceUserID,
		Role:          models.RolePatient,
	})
	assert.True(t, httperr.IsBusiness(err, "invalid_state"))
}

func TestSweepClearsOnlyExpiredLocks(t *testing.T) {
	env := newTestEnv(t)

	// Expired lock on 09:00, live lock on 09:30, booked 10:00.
	mustLock := func(tm string, userID uint) {
		t.Helper()
		_, err := env.lock.Execute(context.Background(), LockSlotInput{
			DoctorID: testDoctorID,
			Date:     testDate,
			Time:     tm,
			UserID:   userID,
		})
		require.NoError(t, err)
	}

	mustLock("09:00:00", aliceUserID)
	env.setNow(t0.Add(4 * time.Minute))
	mustLock("09:30:00", bobUserID)
	env.lockSlot(t, aliceUserID)
	env.confirmSlot(t, aliceUserID)

	env.setNow(t0.Add(6 * time.Minute))
	cleared, err := env.sweep.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	expired := env.repo.slots[domain.SlotKey{DoctorID: testDoctorID, Date: testDate, Time: "09:00:00"}]
	assert.Nil(t, expired.LockedUntil)
	assert.Nil(t, expired.PatientID)

	live := env.repo.slots[domain.SlotKey{DoctorID: testDoctorID, Date: testDate, Time: "09:30:00"}]
	assert.NotNil(t, live.LockedUntil)

	booked := env.repo.slots[domain.SlotKey{DoctorID: testDoctorID, Date: testDate, Time: testTime}]
	assert.True(t, booked.Booked)

	// Idempotent: a second pass finds nothing.
	cleared, err = env.sweep.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, cleared)
}

func TestConcurrentLockSingleWinner(t *testing.T) {
	env := newTestEnv(t)

	const patients = 8
	for i := 0; i < patients; i++ {
		userID := uint(50 + i)
		env.repo.patients[userID] = &models.Patient{ID: uint(500 + i), UserID: userID}
	}

	var wg sync.WaitGroup
	results := make(chan error, patients)
	for i := 0; i < patients; i++ {
		userID := uint(50 + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.lock.Execute(context.Background(), LockSlotInput{
				DoctorID: testDoctorID,
				Date:     testDate,
				Time:     testTime,
				UserID:   userID,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.True(t, httperr.IsBusiness(err, "slot_unavailable"))
		}
	}
	assert.Equal(t, 1, wins)
}
