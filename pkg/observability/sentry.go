package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

var enabled bool

func InitSentry(dsn, environment, release string) error {
	if dsn == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
	}); err != nil {
		return err
	}
	enabled = true
	return nil
}

func Flush() {
	if enabled {
		sentry.Flush(2 * time.Second)
	}
}

// CaptureError reports err with request tags. No-op when sentry is not initialised.
func CaptureError(err error, tags map[string]string) {
	if !enabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}
