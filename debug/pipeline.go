package debug

import (
	"log/slog"
	"time"

	"github.com/soocke/barcode-tracker-go/domain/capture"
)

// StatsSource reports capture pipeline counters.
type StatsSource interface {
	ID() string
	Stats() capture.SessionStats
}

// StartPipelineLogger logs the session's pipeline counters every interval
// while capture runs, until the returned func is called.
func StartPipelineLogger(interval time.Duration, logger *slog.Logger, src StatsSource) (stop func()) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return every(interval, func() { logPipeline(logger, src) })
}

func logPipeline(logger *slog.Logger, src StatsSource) {
	st := src.Stats()
	if st.State != capture.StateRunning {
		return
	}
	logger.Info("pipeline",
		slog.String("session", src.ID()),
		slog.Uint64("processed", st.Processed),
		slog.Uint64("detections", st.Detections),
		slog.Uint64("faults", st.Faults),
		slog.Uint64("last_frame", st.LastFrame),
		slog.Uint64("published", st.Mailbox.Published),
		slog.Uint64("dropped", st.Mailbox.Dropped),
		slog.Uint64("delivered", st.Pool.Delivered),
		slog.Uint64("returned", st.Pool.Returned),
		slog.Uint64("double_returns", st.Pool.DoubleReturns),
	)
}
