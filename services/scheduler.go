// services/scheduler.go
package services

import (
	"fmt"
	"log"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler owns the recurring jobs: weekly schedule generation,
// quarterly point expiration and daily exchange expiry.
type Scheduler struct {
	Checkin *CheckinService
	Expire  *PointExpireService
	Product *ProductService

	sched gocron.Scheduler
}

func NewScheduler(checkin *CheckinService, expire *PointExpireService, product *ProductService) *Scheduler {
	return &Scheduler{Checkin: checkin, Expire: expire, Product: product}
}

// Start registers every cron job and starts the scheduler.
func (s *Scheduler) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	s.sched = sched

	// Monday: regenerate the weekly check-in cycle pool.
	gen := fmt.Sprintf("%d %d * * 1", s.Checkin.Config.GenerateMinute, s.Checkin.Config.GenerateHour)
	if _, err := sched.NewJob(
		gocron.CronJob(gen, false),
		gocron.NewTask(func() {
			if err := s.Checkin.GenerateWeeklyCycles(); err != nil {
				log.Printf("❌ [Scheduler] weekly cycle generation failed: %v", err)
			}
		}),
	); err != nil {
		return fmt.Errorf("failed to schedule cycle generation: %w", err)
	}

	// Quarter ends: expire outstanding balances.
	if s.Expire.Config.AutoExpire {
		for _, d := range s.Expire.Config.Dates {
			expr := fmt.Sprintf("%d %d %d %d *", s.Expire.Config.Minute, s.Expire.Config.Hour, d.Day, d.Month)
			name := d.Name
			if _, err := sched.NewJob(
				gocron.CronJob(expr, false),
				gocron.NewTask(func() {
					log.Printf("⏰ [Scheduler] running %s point expiration", name)
					if _, err := s.Expire.Sweep(); err != nil {
						log.Printf("❌ [Scheduler] point expiration failed: %v", err)
					}
				}),
			); err != nil {
				return fmt.Errorf("failed to schedule %s expiration: %w", name, err)
			}
		}
	}

	// Midnight: expire overdue product exchanges.
	if _, err := sched.NewJob(
		gocron.CronJob("0 0 * * *", false),
		gocron.NewTask(func() {
			if _, err := s.Product.ExpireOverdueExchanges(); err != nil {
				log.Printf("❌ [Scheduler] exchange expiry failed: %v", err)
			}
		}),
	); err != nil {
		return fmt.Errorf("failed to schedule exchange expiry: %w", err)
	}

	sched.Start()
	log.Println("✅ Scheduler started")
	return nil
}

// Stop shuts the scheduler down, waiting for running jobs.
func (s *Scheduler) Stop() error {
	if s.sched == nil {
		return nil
	}
	return s.sched.Shutdown()
}
