package services

import (
	"context"
	"log"
	"time"
)

// Scheduler fires a task once per calendar day at a fixed wall-clock time.
type Scheduler struct {
	clock Clock
	at    TimeOfDay
	task  func(ctx context.Context)
}

func NewScheduler(clock Clock, at TimeOfDay, task func(ctx context.Context)) *Scheduler {
	return &Scheduler{clock: clock, at: at, task: task}
}

// Start runs the schedule loop in a goroutine until ctx is cancelled. Each
// iteration sleeps until the next occurrence of the configured time, then
// runs the task once.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		for {
			now := s.clock.Now()
			next := s.at.Next(now)
			timer := time.NewTimer(next.Sub(now))

			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				log.Printf("scheduler: daily fire at %s", s.clock.Now().Format("15:04:05"))
				s.task(ctx)
			}
		}
	}()
}
