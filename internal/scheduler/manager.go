package scheduler

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Manager owns the background job scheduler.
type Manager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	interval  time.Duration
}

// NewManager creates a scheduler manager.
func NewManager(db *gorm.DB, interval time.Duration) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Manager{scheduler: s, db: db, interval: interval}, nil
}

// Start registers all jobs and starts the scheduler. Returns a stop func.
func Start(db *gorm.DB, interval time.Duration) (func(), error) {
	m, err := NewManager(db, interval)
	if err != nil {
		return nil, err
	}
	if err := m.RegisterJobs(); err != nil {
		return nil, err
	}
	m.scheduler.Start()
	log.Info().Dur("interval", interval).Msg("Scheduler started")
	return func() { _ = m.scheduler.Shutdown() }, nil
}

// RegisterJobs registers all background jobs.
func (m *Manager) RegisterJobs() error {
	job := &StatsJob{db: m.db}
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.Name()),
	)
	return err
}
