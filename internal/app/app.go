package app

import (
	"canopy-backend/internal/config"
	"canopy-backend/internal/database"
	"canopy-backend/internal/events"
	"canopy-backend/internal/health"
	"canopy-backend/internal/ledger"
	"canopy-backend/internal/middleware"
	"canopy-backend/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration. Returns the DB and redis handles so the entrypoint can ping
// them and wire background jobs.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opt)
	}

	healthHandlers := &health.Handlers{DB: db, Rdb: rdb}
	app.Get("/health/json", healthHandlers.JSON)

	if db != nil {
		eventsSvc := &events.Service{DB: db, Rdb: rdb, Channel: cfg.EventChannel}

		tokenSvc := &token.Service{DB: db, Events: eventsSvc, Admin: cfg.AdminAddress}
		tokenHandlers := &token.Handlers{Service: tokenSvc}
		tokenGroup := app.Group("/api/v1/token")
		tokenGroup.Get("/meta", tokenHandlers.Meta)
		tokenGroup.Get("/balance/:address", tokenHandlers.BalanceOf)
		tokenGroup.Get("/allowance", tokenHandlers.Allowance)
		tokenGroup.Post("/mint", middleware.RequireCaller(), tokenHandlers.Mint)
		tokenGroup.Post("/transfer", middleware.RequireCaller(), tokenHandlers.Transfer)
		tokenGroup.Post("/approve", middleware.RequireCaller(), tokenHandlers.Approve)
		tokenGroup.Post("/transfer-from", middleware.RequireCaller(), tokenHandlers.TransferFrom)

		ledgerSvc := &ledger.Service{
			DB:          db,
			Events:      eventsSvc,
			FeePercent:  cfg.TradingFeePercent,
			Admin:       cfg.AdminAddress,
			MetadataURI: cfg.MetadataURI,
		}
		ledgerHandlers := &ledger.Handlers{Service: ledgerSvc, ChainID: cfg.ChainID}
		ledgerGroup := app.Group("/api/v1/ledger")
		ledgerGroup.Get("/meta", ledgerHandlers.Meta)
		ledgerGroup.Get("/balance/:address/:projectId", ledgerHandlers.BalanceOf)
		ledgerGroup.Get("/project/:projectId", ledgerHandlers.ProjectInfo)
		ledgerGroup.Get("/next-project-id", ledgerHandlers.NextProjectID)
		ledgerGroup.Get("/uri/:projectId", ledgerHandlers.URI)
		ledgerGroup.Get("/is-approved-for-all", ledgerHandlers.IsApprovedForAll)
		ledgerGroup.Post("/mint-new-project", middleware.RequireCaller(), ledgerHandlers.MintNewProject)
		ledgerGroup.Post("/buy-credits", middleware.RequireCaller(), ledgerHandlers.BuyCredits)
		ledgerGroup.Post("/retire-credits", middleware.RequireCaller(), ledgerHandlers.RetireCredits)
		ledgerGroup.Post("/set-approval-for-all", middleware.RequireCaller(), ledgerHandlers.SetApprovalForAll)

		eventHandlers := &events.Handlers{Service: eventsSvc}
		eventGroup := app.Group("/api/v1/events")
		eventGroup.Get("/", eventHandlers.GetEvents)
		eventGroup.Get("/:txHash", eventHandlers.GetEventByTxHash)
	}

	return app, db, rdb, nil
}
