package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick on the sub-presenters and invokes a scheduler callback.
// The zero value is usable (methods are nil-safe).
type Loop struct {
	Session  *SessionPresenter
	Frames   *FramePresenter
	Schedule func()
}

func NewLoop(sess *SessionPresenter, frames *FramePresenter, schedule func()) *Loop {
	return &Loop{Session: sess, Frames: frames, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	if l.Frames != nil {
		l.Frames.Tick()
	}
	if l.Session != nil {
		l.Session.Tick(now)
	}
	if l.Schedule != nil {
		l.Schedule()
	}
}
