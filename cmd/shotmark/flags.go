package main

import (
	"errors"
	"flag"
	"io"
)

// parseFlags parses args into fs and turns flag errors into usage errors
// for h.
func parseFlags(fs *flag.FlagSet, h HelpData, args []string) error {
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: h}
		}
		return usageErrorf(h, "%v", err)
	}
	return nil
}
