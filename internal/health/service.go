package health

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Result is the /health/json shape.
type Result struct {
	Status        string               `json:"status"`
	UptimeSeconds int64                `json:"uptimeSeconds"`
	Dependencies  map[string]DepStatus `json:"dependencies"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

var startedAt = time.Now()

// Collect pings the database and redis and reports reachability.
func Collect(ctx context.Context, db *gorm.DB, rdb *redis.Client) Result {
	result := Result{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(startedAt).Seconds()),
		Dependencies:  make(map[string]DepStatus),
	}

	result.Dependencies["database"] = pingDB(db)
	result.Dependencies["redis"] = pingRedis(ctx, rdb)

	for _, dep := range result.Dependencies {
		if dep.Status != "connected" {
			result.Status = "degraded"
		}
	}
	return result
}

func pingDB(db *gorm.DB) DepStatus {
	if db == nil {
		return DepStatus{Status: "not configured", PingMs: nil}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return DepStatus{Status: "error", PingMs: nil}
	}
	start := time.Now()
	if err := sqlDB.Ping(); err != nil {
		return DepStatus{Status: "disconnected", PingMs: nil}
	}
	return DepStatus{Status: "connected", PingMs: time.Since(start).Milliseconds()}
}

func pingRedis(ctx context.Context, rdb *redis.Client) DepStatus {
	if rdb == nil {
		return DepStatus{Status: "not configured", PingMs: nil}
	}
	start := time.Now()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return DepStatus{Status: "disconnected", PingMs: nil}
	}
	return DepStatus{Status: "connected", PingMs: time.Since(start).Milliseconds()}
}
