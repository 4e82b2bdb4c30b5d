package app

import (
	"context"

	"canopy-backend/internal/config"
	"canopy-backend/internal/events"
	"canopy-backend/internal/ledger"
	"canopy-backend/internal/models"
	"canopy-backend/internal/token"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SeedDemoData populates an empty store with the demo inventory the original
// deploy script created: 1,000,000 mUSDC to the admin and two starter
// projects owned by the admin. No-op when any project already exists.
func SeedDemoData(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	var count int64
	if err := db.Model(&models.Project{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	eventsSvc := &events.Service{DB: db, Channel: cfg.EventChannel}
	tokenSvc := &token.Service{DB: db, Events: eventsSvc, Admin: cfg.AdminAddress}
	ledgerSvc := &ledger.Service{
		DB:          db,
		Events:      eventsSvc,
		FeePercent:  cfg.TradingFeePercent,
		Admin:       cfg.AdminAddress,
		MetadataURI: cfg.MetadataURI,
	}

	if _, err := tokenSvc.Mint(ctx, cfg.AdminAddress, cfg.AdminAddress, 1_000_000_000_000); err != nil {
		return err
	}

	seedProjects := []struct {
		name     string
		location string
		supply   int64
	}{
		{"Kenya Reforestation", "Kenya", 1000},
		{"India Methane Capture", "India", 500},
	}
	for _, p := range seedProjects {
		if _, _, err := ledgerSvc.MintNewProject(ctx, cfg.AdminAddress, p.name, p.location, p.supply, cfg.AdminAddress); err != nil {
			return err
		}
		log.Info().Str("name", p.name).Int64("supply", p.supply).Msg("Seeded project")
	}
	return nil
}
