package scheduler

import (
	"canopy-backend/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StatsJob periodically logs a snapshot of ledger activity. Read-only;
// operational visibility, not state.
type StatsJob struct {
	db *gorm.DB
}

func (j *StatsJob) Name() string {
	return "ledger_stats_snapshot"
}

// Snapshot is one stats reading.
type Snapshot struct {
	Projects    int64
	Issued      int64
	Circulating int64
	Retired     int64
	Trades      int64
}

// Collect computes the current snapshot.
func (j *StatsJob) Collect() (*Snapshot, error) {
	var snap Snapshot
	if err := j.db.Model(&models.Project{}).Count(&snap.Projects).Error; err != nil {
		return nil, err
	}
	if err := j.db.Model(&models.Project{}).
		Select("COALESCE(SUM(total_tons), 0)").Scan(&snap.Issued).Error; err != nil {
		return nil, err
	}
	if err := j.db.Model(&models.CreditBalance{}).
		Select("COALESCE(SUM(balance), 0)").Scan(&snap.Circulating).Error; err != nil {
		return nil, err
	}
	snap.Retired = snap.Issued - snap.Circulating
	if err := j.db.Model(&models.LedgerEvent{}).
		Where("type = ?", models.EventCreditTraded).Count(&snap.Trades).Error; err != nil {
		return nil, err
	}
	return &snap, nil
}

// Execute runs one snapshot and logs it.
func (j *StatsJob) Execute() {
	snap, err := j.Collect()
	if err != nil {
		log.Error().Err(err).Msg("Ledger stats snapshot failed")
		return
	}
	log.Info().
		Int64("projects", snap.Projects).
		Int64("issued_tons", snap.Issued).
		Int64("circulating_tons", snap.Circulating).
		Int64("retired_tons", snap.Retired).
		Int64("trades", snap.Trades).
		Msg("Ledger stats snapshot")
}
