package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/vmunix/anisort/internal/events"
)

// watchProgress prints scan and organize progress on one status line of w
// until the returned stop function is called. Stop is idempotent.
func watchProgress(bus *events.Bus, w io.Writer) func() {
	sub := bus.Subscribe(64, events.EventScanProgress, events.EventOrganizeProgress)
	done := make(chan struct{})

	go func() {
		defer close(done)
		shown := false
		for e := range sub.C {
			line := progressLine(e)
			if line == "" {
				continue
			}
			fmt.Fprintf(w, "\r\033[K%s", line)
			shown = true
		}
		if shown {
			fmt.Fprint(w, "\r\033[K")
		}
	}()

	return sync.OnceFunc(func() {
		sub.Close()
		<-done
	})
}

func progressLine(e events.Event) string {
	switch e := e.(type) {
	case *events.ScanProgress:
		return fmt.Sprintf("Scanning: %s files  %s", humanize.Comma(int64(e.Processed)), truncate(filepath.Base(e.Path), 60))
	case *events.OrganizeProgress:
		return fmt.Sprintf("Organizing: [%d/%d] %s", e.Current, e.Total, truncate(filepath.Base(e.Path), 60))
	default:
		return ""
	}
}

// startProgress shows progress on stderr when it is a terminal and output
// is meant for humans.
func startProgress(a *app) func() {
	if jsonOutput || !isatty.IsTerminal(os.Stderr.Fd()) {
		return func() {}
	}
	return watchProgress(a.bus, os.Stderr)
}
