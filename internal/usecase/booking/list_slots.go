package booking

import (
	"context"
	"time"

	domain "github.com/CityCareHQ/hospital-scheduler/internal/domain/booking"
	"github.com/CityCareHQ/hospital-scheduler/internal/httperr"
	"github.com/CityCareHQ/hospital-scheduler/internal/timezone"
)

type SlotView struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

type SlotsResult struct {
	DayName      string     `json:"day_name"`
	DayAvailable bool       `json:"day_available"`
	Slots        []SlotView `json:"slots"`
}

type ListOpenSlots struct {
	repo domain.Repository
	now  func() time.Time
}

func NewListOpenSlots(repo domain.Repository) *ListOpenSlots {
	return &ListOpenSlots{
		repo: repo,
		now:  timezone.Now,
	}
}

func (uc *ListOpenSlots) Execute(
	ctx context.Context,
	doctorID uint,
	date string,
) (*SlotsResult, error) {

	doctor, err := uc.repo.GetDoctor(ctx, doctorID)
	if err != nil {
		return nil, httperr.ErrBusiness("doctor_not_found")
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	sched, err := domain.ScheduleFromDoctor(doctor)
	if err != nil {
		return nil, err
	}

	candidates, dayAvailable := sched.SlotTimes(day)
	result := &SlotsResult{
		DayName:      day.Weekday().String(),
		DayAvailable: dayAvailable,
		Slots:        []SlotView{},
	}
	if !dayAvailable {
		return result, nil
	}

	taken, err := uc.repo.UnavailableTimes(ctx, doctorID, date, uc.now())
	if err != nil {
		return nil, err
	}

	takenSet := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		takenSet[t] = struct{}{}
	}

	for _, t := range candidates {
		if _, ok := takenSet[t]; ok {
			continue
		}
		result.Slots = append(result.Slots, SlotView{Time: t, Available: true})
	}

	return result, nil
}
