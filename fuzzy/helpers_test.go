package fuzzy

import (
	"github.com/geoclust/fuzzyclust/logging"
)

func noopLogger() logging.Logger {
	return &logging.NoOpLogger{}
}
