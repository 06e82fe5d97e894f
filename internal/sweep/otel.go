package sweep

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/apexsim/apexsim/internal/sweep"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
