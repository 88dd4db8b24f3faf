package presenter

import (
	"time"

	"github.com/soocke/barcode-tracker-go/domain/capture"
	"github.com/soocke/barcode-tracker-go/ui/model"
)

// StatsSource reports pipeline counters.
type StatsSource interface{ Stats() capture.SessionStats }

// SessionView displays run durations, throughput and pipeline counters.
type SessionView interface {
	SetSession(run, total time.Duration, fps float64, st capture.SessionStats)
}

// SessionPresenter feeds session stats into the model and pushes the derived
// values to the view.
type SessionPresenter struct {
	sess  *model.SessionModel
	stats StatsSource
	view  SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, stats StatsSource, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, stats: stats, view: view}
}

// Tick advances the session model and pushes values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.stats == nil || p.view == nil {
		return
	}
	st := p.stats.Stats()
	p.sess.OnTick(st, now)
	run, total, fps := p.sess.Values()
	p.view.SetSession(run, total, fps, st)
}
