package obs

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns a tracer from the global provider. Without a configured
// provider this is a no-op tracer.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
