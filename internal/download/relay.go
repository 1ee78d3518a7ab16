package download

import "github.com/hbdl/hb-downloader/internal/model"

// Listener receives a task's progress and its single terminal outcome
type Listener interface {
	OnProgress(model.ProgressEvent)
	OnOutcome(model.Outcome)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Progress func(model.ProgressEvent)
	Outcome  func(model.Outcome)
}

func (f ListenerFuncs) OnProgress(ev model.ProgressEvent) {
	if f.Progress != nil {
		f.Progress(ev)
	}
}

func (f ListenerFuncs) OnOutcome(o model.Outcome) {
	if f.Outcome != nil {
		f.Outcome(o)
	}
}

// Relay drains events on the calling goroutine and hands each one to dispatch,
// which moves it onto the listener's goroutine (fyne.Do for the desktop UI).
// Order is preserved as long as dispatch runs functions in submission order.
// A nil dispatch invokes the listener directly. Relay returns after the outcome.
func Relay(events <-chan model.Event, l Listener, dispatch func(func())) {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	for ev := range events {
		switch {
		case ev.Progress != nil:
			p := *ev.Progress
			dispatch(func() { l.OnProgress(p) })
		case ev.Outcome != nil:
			o := *ev.Outcome
			dispatch(func() { l.OnOutcome(o) })
		}
	}
}
