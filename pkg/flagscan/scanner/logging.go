package scanner

import (
	"io"

	"github.com/idlab-discover/FlagScan-cli/internal/logging"
	"github.com/idlab-discover/FlagScan-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Scanner:", PrefixColor: ui.FgCyan}

// SetLogger sets an optional destination for scanner logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(flagKey string, format string, args ...any) {
	logger.Logf(flagKey, format, args...)
}
