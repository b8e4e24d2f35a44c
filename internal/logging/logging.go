// Package logging builds the structured logger shared by the service.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/samber/oops"
)

// Formats accepted by New.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// New creates a logger writing to w with timestamps at the given level
// ("debug", "info", "warn", "error") and format. A nil w writes to stderr.
func New(w io.Writer, level, format string) (*log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, oops.Code("LOG_INVALID_LEVEL").With("level", level).Wrap(err)
	}

	opts := log.Options{ReportTimestamp: true, Level: lvl}
	switch format {
	case FormatText, "":
		opts.Formatter = log.TextFormatter
	case FormatJSON:
		opts.Formatter = log.JSONFormatter
	case FormatLogfmt:
		opts.Formatter = log.LogfmtFormatter
	default:
		return nil, oops.Code("LOG_INVALID_FORMAT").With("format", format).Errorf("unknown log format %q", format)
	}
	return log.NewWithOptions(w, opts), nil
}
