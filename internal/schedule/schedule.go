// Package schedule runs the import job on a cron expression (watch mode).
package schedule

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	appLog "calimport/internal/log"
)

// Job is one import run. Errors are logged; they do not stop the schedule,
// since a later run may succeed once the services are reachable again.
type Job func(ctx context.Context) error

// Watch runs job on the given cron spec (standard 5-field format) until ctx
// is canceled. The job is also run once immediately.
func Watch(ctx context.Context, spec string, job Job) error {
	if spec == "" {
		return fmt.Errorf("empty cron spec")
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := job(ctx); err != nil {
			appLog.Error("scheduled import failed", err, "cron", spec)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}

	appLog.Info("watch mode starting", "cron", spec)
	if err := job(ctx); err != nil {
		appLog.Error("initial import failed", err, "cron", spec)
	}

	c.Start()
	<-ctx.Done()

	// Let an in-flight run finish before returning.
	stopCtx := c.Stop()
	<-stopCtx.Done()
	appLog.Info("watch mode stopped")
	return nil
}
