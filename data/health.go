package data

import (
	"context"
	"time"
)

// Health checks the database and redis connections
func (d *Data) Health(ctx context.Context) map[string]any {
	services := map[string]any{}
	healthy := true

	start := time.Now()
	err := d.DB.PingContext(ctx)
	services["database"] = map[string]any{
		"driver":      d.driver,
		"healthy":     err == nil,
		"response_ms": time.Since(start).Milliseconds(),
		"error":       errorString(err),
	}
	healthy = healthy && err == nil

	if d.Redis != nil {
		start = time.Now()
		err = d.Redis.Ping(ctx).Err()
		services["redis"] = map[string]any{
			"healthy":     err == nil,
			"response_ms": time.Since(start).Milliseconds(),
			"error":       errorString(err),
		}
		healthy = healthy && err == nil
	}

	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	return map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"services":  services,
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
