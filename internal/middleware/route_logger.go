package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// RouteLogger logs each request entry and exit with duration and trace ID.
// Write routes also carry the admitted caller address, which is worth having
// next to the trace ID when reconstructing who moved what.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := GetTraceID(c)
		if traceID == "" {
			traceID = "no-trace-id"
		}
		entry := log.Info().Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path())
		if caller := c.Get(CallerHeader); caller != "" {
			entry = entry.Str("caller", caller)
		}
		start := time.Now()
		entry.Msg("Entering request")
		err := c.Next()
		ms := time.Since(start).Milliseconds()
		exit := log.Info().Str("trace_id", traceID).Str("method", c.Method()).Str("path", c.Path()).Int64("ms", ms)
		if caller := c.Get(CallerHeader); caller != "" {
			exit = exit.Str("caller", caller)
		}
		exit.Msg("Exiting request")
		return err
	}
}
