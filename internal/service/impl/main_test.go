package impl

import (
	"os"
	"testing"

	"cleverspace/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	// The counters are curried with the service label at startup; do the
	// same here so label cardinality matches in tests.
	metrics.MustRegister("test")
	os.Exit(m.Run())
}
