package job

import (
	"context"
	"errors"
	"time"

	reliabilitydomain "github.com/smallbiznis/voltway/internal/reliability/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Service reliabilitydomain.Service
	Config  Config `optional:"true"`
}

// Worker periodically recomputes every station through the same aggregation
// used by live writes.
type Worker struct {
	log     *zap.Logger
	service reliabilitydomain.Service
	cfg     Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:     p.Log.Named("reliability.job"),
		service: p.Service,
		cfg:     p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.log.Warn("reliability batch failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) (reliabilitydomain.BatchResult, error) {
	if w.service == nil {
		return reliabilitydomain.BatchResult{}, errors.New("reliability_worker_unavailable")
	}
	ctx, cancel := context.WithTimeout(ctx, w.cfg.RunTimeout)
	defer cancel()

	return w.service.RecomputeAll(ctx, w.cfg.Concurrency)
}
