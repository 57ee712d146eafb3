package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rosterhq/rostering-api/internal/services"
)

// Scheduler owns the background jobs that keep rostering state tidy. The only
// job today is the pending-invite expiry sweep.
type Scheduler struct {
	sched   gocron.Scheduler
	invites *services.InvitationService
}

func New(invites *services.InvitationService) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Scheduler{sched: sched, invites: invites}, nil
}

// Start registers the invite sweep at the given interval and begins running.
func (s *Scheduler) Start(sweepInterval time.Duration) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(s.sweepInvites),
	)
	if err != nil {
		return err
	}
	s.sched.Start()
	return nil
}

func (s *Scheduler) sweepInvites() {
	expired, err := s.invites.ExpireStale(time.Now())
	if err != nil {
		log.Printf("invite sweep failed: %v\n", err)
		return
	}
	if expired > 0 {
		log.Printf("invite sweep expired %d invites\n", expired)
	}
}

// Shutdown stops the scheduler and waits for running jobs.
func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
