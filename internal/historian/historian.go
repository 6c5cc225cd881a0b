// internal/historian/historian.go
package historian

import (
	"context"
	"time"

	"github.com/jason-s-yu/sweeper/internal/models"
	"github.com/sirupsen/logrus"
)

// Source yields queued game records. Pop returns (nil, nil) when timeout passes with
// nothing queued.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*models.GameRecord, error)
}

// Sink persists a batch of records atomically.
type Sink interface {
	InsertGameRecords(ctx context.Context, records []models.GameRecord) error
}

type Config struct {
	BatchSize  int           // flush once this many records are buffered
	FlushDelay time.Duration // flush at least this often while records are buffered
	PopTimeout time.Duration // how long a single Pop may block
	MaxPending int           // buffered records kept across failed flushes; older ones are dropped
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.FlushDelay <= 0 {
		c.FlushDelay = 500 * time.Millisecond
	}
	if c.PopTimeout <= 0 {
		c.PopTimeout = 3 * time.Second
	}
	if c.MaxPending < c.BatchSize {
		c.MaxPending = 50 * c.BatchSize
	}
	return c
}

// Service drains the record queue into the database in batches.
type Service struct {
	src Source
	dst Sink
	cfg Config
	log *logrus.Entry

	batch []models.GameRecord
}

func New(src Source, dst Sink, cfg Config, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	cfg = cfg.withDefaults()
	return &Service{
		src:   src,
		dst:   dst,
		cfg:   cfg,
		log:   logger.WithField("module", "historian"),
		batch: make([]models.GameRecord, 0, cfg.BatchSize),
	}
}

// Run pops records until ctx is cancelled, then flushes whatever is buffered.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.FlushDelay)
	defer ticker.Stop()

	s.log.Infof("historian started (batch %d, flush every %s)", s.cfg.BatchSize, s.cfg.FlushDelay)
	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			s.flush(flushCtx)
			cancel()
			s.log.Infof("historian stopped, %d records left unflushed", len(s.batch))
			return nil
		case <-ticker.C:
			s.flush(ctx)
			continue
		default:
		}

		rec, err := s.src.Pop(ctx, s.cfg.PopTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			s.log.WithError(err).Error("pop failed")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
			continue
		}
		if rec == nil {
			continue
		}

		s.batch = append(s.batch, *rec)
		if len(s.batch) >= s.cfg.BatchSize {
			s.flush(ctx)
		}
	}
}

// flush writes the buffered batch. On failure the records stay buffered for the next
// attempt, up to MaxPending.
func (s *Service) flush(ctx context.Context) {
	if len(s.batch) == 0 {
		return
	}
	if err := s.dst.InsertGameRecords(ctx, s.batch); err != nil {
		s.log.WithError(err).Errorf("flush of %d records failed", len(s.batch))
		if over := len(s.batch) - s.cfg.MaxPending; over > 0 {
			s.log.Warnf("dropping %d oldest records", over)
			s.batch = append(s.batch[:0], s.batch[over:]...)
		}
		return
	}
	s.log.Debugf("flushed %d records", len(s.batch))
	s.batch = make([]models.GameRecord, 0, s.cfg.BatchSize)
}
