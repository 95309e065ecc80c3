package repoinfo

import (
	"io"

	"github.com/idlab-discover/FlagScan-cli/internal/logging"
	"github.com/idlab-discover/FlagScan-cli/internal/ui"
)

var logger = &logging.Logger{PrefixText: "Repo:", PrefixColor: ui.FgCyan, OmitFlag: true}

// SetLogger sets the writer for repository resolution logs.
func SetLogger(w io.Writer) { logger.SetWriter(w) }

func logf(format string, args ...any) { logger.Logf("", format, args...) }
