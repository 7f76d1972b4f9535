package batch

import (
	"context"
	"time"

	"wa-bulk-sender/internal/config"
	"wa-bulk-sender/internal/contacts"
	"wa-bulk-sender/internal/dispatch"
	"wa-bulk-sender/internal/report"
	"wa-bulk-sender/pkg/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Sender delivers one message; *dispatch.Dispatcher is the real one.
type Sender interface {
	Send(ctx context.Context, req dispatch.Request) dispatch.Result
}

type Result struct {
	RunID       string
	Total       int
	Succeeded   int
	Failed      int
	Interrupted bool
	Started     time.Time
	Finished    time.Time
}

type Runner struct {
	sender   Sender
	reporter report.Reporter
	limiter  *rate.Limiter
	log      zerolog.Logger

	newID func() string
	now   func() time.Time
}

func NewRunner(s Sender, rep report.Reporter, cfg config.BatchConfig, log zerolog.Logger) *Runner {
	if rep == nil {
		rep = report.Multi()
	}
	r := &Runner{
		sender:   s,
		reporter: rep,
		log:      log.With().Str("comp", "batch").Logger(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	if cfg.MaxPerMinute > 0 {
		r.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.MaxPerMinute)), 1)
	}
	return r
}

// Run sends to every contact in order. Cancelling ctx stops the batch
// before the next contact; a send already in flight always completes.
func (r *Runner) Run(ctx context.Context, list []contacts.Contact) (res Result) {
	res = Result{RunID: r.newID(), Total: len(list), Started: r.now()}
	log := r.log.With().Str("run", res.RunID).Logger()

	summary := func(status models.BatchStatus, processed int) models.BatchSummary {
		s := models.BatchSummary{
			RunID:       res.RunID,
			Status:      status,
			Total:       res.Total,
			Processed:   processed,
			Succeeded:   res.Succeeded,
			Failed:      res.Failed,
			Interrupted: res.Interrupted,
			StartedAt:   res.Started,
		}
		if !res.Finished.IsZero() {
			finished := res.Finished
			s.FinishedAt = &finished
		}
		return s
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Int("succeeded", res.Succeeded).Msg("Batch aborted by panic")
			panic(p)
		}
	}()

	log.Info().Int("total", res.Total).Msg("Batch started")
	r.reporter.BatchStarted(summary(models.StatusRunning, 0))

	processed := 0
	for i, c := range list {
		if err := r.wait(ctx); err != nil {
			res.Interrupted = true
			log.Warn().Int("processed", processed).Msg("Batch interrupted")
			break
		}

		out := r.sender.Send(context.WithoutCancel(ctx), dispatch.Request{Contact: c})
		processed++
		if out.OK() {
			res.Succeeded++
		} else {
			res.Failed++
		}

		p := models.ContactProgress{
			RunID:    res.RunID,
			Index:    i + 1,
			Total:    res.Total,
			Name:     c.Name,
			Phone:    c.Phone,
			Sent:     out.OK(),
			Attempts: out.Attempts,
			At:       r.now(),
		}
		if out.Err != nil {
			p.Error = out.Err.Error()
		}
		r.reporter.ContactDone(summary(models.StatusRunning, processed), p)
	}

	res.Finished = r.now()
	status := models.StatusFinished
	if res.Interrupted {
		status = models.StatusInterrupted
	}
	log.Info().Int("succeeded", res.Succeeded).Int("failed", res.Failed).Int("total", res.Total).
		Dur("took", res.Finished.Sub(res.Started)).Msg("Batch finished")
	r.reporter.BatchFinished(summary(status, processed))
	return res
}

// wait is the only point where cancellation is observed.
func (r *Runner) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.limiter == nil {
		return nil
	}
	return r.limiter.Wait(ctx)
}
