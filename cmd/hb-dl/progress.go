package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/hbdl/hb-downloader/internal/model"
)

const barWidth = 30

// barListener renders one task on a terminal progress bar
type barListener struct {
	out     io.Writer
	name    string
	bar     *progressbar.ProgressBar
	outcome model.Outcome
}

func newBarListener(out io.Writer, name string) *barListener {
	return &barListener{
		out:  out,
		name: name,
		bar: progressbar.NewOptions(100,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription(name),
			progressbar.OptionSetWidth(barWidth),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		),
	}
}

func (l *barListener) OnProgress(ev model.ProgressEvent) {
	_ = l.bar.Set(ev.Percent)
}

func (l *barListener) OnOutcome(o model.Outcome) {
	l.outcome = o
	_ = l.bar.Exit()

	switch o.Kind {
	case model.OutcomeSucceeded:
		target := o.OutputPath
		if target == "" {
			target = l.name
		}
		fmt.Fprintf(l.out, "done: %s\n", target)
	case model.OutcomeCancelled:
		fmt.Fprintf(l.out, "cancelled: %s\n", l.name)
	default:
		fmt.Fprintf(l.out, "failed: %s: %s\n", l.name, o.Message)
	}
}

// lockedWriter serializes writes from bars rendering in parallel
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}
