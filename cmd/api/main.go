package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CityCareHQ/hospital-scheduler/internal/audit"
	"github.com/CityCareHQ/hospital-scheduler/internal/cache"
	"github.com/CityCareHQ/hospital-scheduler/internal/config"
	dbpkg "github.com/CityCareHQ/hospital-scheduler/internal/db"
	infraRepo "github.com/CityCareHQ/hospital-scheduler/internal/infra/repository"
	"github.com/CityCareHQ/hospital-scheduler/internal/jobs"
	"github.com/CityCareHQ/hospital-scheduler/internal/middleware"
	"github.com/CityCareHQ/hospital-scheduler/internal/routes"
	ucBooking "github.com/CityCareHQ/hospital-scheduler/internal/usecase/booking"
)

func main() {

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)
	cc := cache.New(cfg.RedisAddr, cfg.RedisPassword)

	sweepUC := ucBooking.NewSweepLocks(
		infraRepo.NewBookingGormRepository(db),
		audit.NewDispatcher(audit.New(db)),
	)
	jobs.StartSweepScheduler(sweepUC)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg, cc, sweepUC)

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
