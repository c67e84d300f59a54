package jwtauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracer(t *testing.T) {
	t.Run("it names spans after the module", func(t *testing.T) {
		recorder := tracetest.NewSpanRecorder()
		provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

		_, span := Tracer(provider).Start(t.Context(), "CheckToken")
		span.End()

		spans := recorder.Ended()
		if assert.Len(t, spans, 1) {
			assert.Equal(t, InstrumentationName, spans[0].InstrumentationScope().Name)
		}
	})

	t.Run("it falls back to the global provider", func(t *testing.T) {
		assert.NotNil(t, Tracer(nil))
	})
}
