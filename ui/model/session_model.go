package model

import (
	"time"

	"github.com/soocke/barcode-tracker-go/domain/capture"
)

// SessionModel tracks how long capture has been running and the rate at
// which the worker completes frames. Presenters feed it session stats on each
// tick and poll Values(). The zero value is ready to use. Not safe for
// concurrent use: it lives on the UI goroutine.
type SessionModel struct {
	active      bool
	runStart    time.Time
	runDuration time.Duration
	accumulated time.Duration

	lastTick      time.Time
	lastProcessed uint64
	fps           float64
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick folds in the session stats observed at now.
func (m *SessionModel) OnTick(st capture.SessionStats, now time.Time) {
	if m == nil {
		return
	}
	running := st.State == capture.StateRunning
	if running {
		if !m.active {
			m.active = true
			m.runStart = now
			m.runDuration = 0
			m.lastTick, m.lastProcessed, m.fps = now, st.Processed, 0
		}
		m.runDuration = now.Sub(m.runStart)
		if dt := now.Sub(m.lastTick); dt >= time.Second {
			// Processed restarts from zero on every run
			if st.Processed >= m.lastProcessed {
				m.fps = float64(st.Processed-m.lastProcessed) / dt.Seconds()
			}
			m.lastTick, m.lastProcessed = now, st.Processed
		}
	} else if m.active {
		m.runDuration = now.Sub(m.runStart)
		m.accumulated += m.runDuration
		m.active = false
		m.fps = 0
	}
}

// Values returns the current run duration, the total running time including
// the current run, and the measured processing rate.
func (m *SessionModel) Values() (run, total time.Duration, fps float64) {
	if m == nil {
		return 0, 0, 0
	}
	run = m.runDuration
	total = m.accumulated
	if m.active {
		total += run
	}
	return run, total, m.fps
}
