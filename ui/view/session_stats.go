package view

import (
	"fmt"
	"time"

	"github.com/soocke/barcode-tracker-go/domain/capture"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows capture durations, throughput and pipeline counters.
type SessionStats interface {
	SetSession(run, total time.Duration, fps float64, st capture.SessionStats)
}

type sessionStats struct {
	sessionLbl  *LabelWidget
	totalLbl    *LabelWidget
	pipelineLbl *LabelWidget
}

// NewSessionStats creates the session, total and pipeline labels in a grid
// layout starting at (row, startCol). If parent is nil, labels are positioned
// relative to the App root.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{sessionLbl: Label(Width(14)), totalLbl: Label(Width(14)), pipelineLbl: Label(Width(40), Anchor("w"))}
	for i, lbl := range []*LabelWidget{s.sessionLbl, s.totalLbl, s.pipelineLbl} {
		if parent != nil {
			Grid(lbl, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		} else {
			Grid(lbl, Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
		}
	}
	s.SetSession(0, 0, 0, capture.SessionStats{})
	return s
}

func (s *sessionStats) SetSession(run, total time.Duration, fps float64, st capture.SessionStats) {
	if s == nil || s.sessionLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Session: " + clock(run)))
	s.totalLbl.Configure(Txt("Total: " + clock(total)))
	s.pipelineLbl.Configure(Txt(fmt.Sprintf("%s %.1f fps | dropped %d | faults %d",
		st.State, fps, st.Mailbox.Dropped, st.Faults)))
}

func clock(d time.Duration) string {
	seconds := int(d.Seconds())
	min, sec := seconds/60, seconds%60
	return fmt.Sprintf("%02d:%02d", min, sec)
}
