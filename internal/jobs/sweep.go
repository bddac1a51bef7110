package jobs

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	ucBooking "github.com/CityCareHQ/hospital-scheduler/internal/usecase/booking"
)

// StartSweepScheduler runs the expired-lock sweep every minute. Expiry is
// enforced inline on every read, so a missed run costs nothing but table
// growth.
func StartSweepScheduler(sweepUC *ucBooking.SweepLocks) *cron.Cron {
	c := cron.New()

	c.AddFunc("* * * * *", func() {
		cleared, err := sweepUC.Execute(context.Background())
		if err != nil {
			log.Println("slot lock sweep failed:", err)
			return
		}
		if cleared > 0 {
			log.Printf("slot lock sweep cleared %d expired locks", cleared)
		}
	})

	c.Start()
	return c
}
