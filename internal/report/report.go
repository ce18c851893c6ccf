// Package report is the seam for the external observability collaborator.
// The auth service records every failure through a Reporter; wiring an actual
// error-tracking client means implementing this one interface.
package report

import (
	"context"

	"github.com/crystalafinch/authentication/internal/logging"
)

// Reporter captures an error together with a named context payload. Callers
// are responsible for redaction: the payload may carry an email address but
// never a password or a password hash. Implementations must not block the
// caller's request path.
type Reporter interface {
	CaptureException(ctx context.Context, err error, contextName string, contextData map[string]any)
}

// LogReporter ships captures to the structured log. The capture happens on a
// separate goroutine so a slow sink cannot delay a response.
type LogReporter struct {
	log logging.Logger
}

func NewLogReporter(log logging.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) CaptureException(ctx context.Context, err error, contextName string, contextData map[string]any) {
	if err == nil {
		return
	}
	go func() {
		args := []any{"error", err.Error()}
		if contextName != "" {
			args = append(args, "context", contextName)
		}
		for k, v := range contextData {
			args = append(args, k, v)
		}
		r.log.Error(context.WithoutCancel(ctx), "captured exception", args...)
	}()
}

// Noop discards every capture. Useful in tests.
type Noop struct{}

func (Noop) CaptureException(context.Context, error, string, map[string]any) {}
