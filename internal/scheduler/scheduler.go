package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/MenukaRanasinghe/SmartSL/internal/crowd"
	"github.com/MenukaRanasinghe/SmartSL/internal/metrics"
)

// Channel snapshots are published on.
const Channel = "smartsl:crowd"

// Capturer takes a snapshot of a region.
type Capturer interface {
	Capture(ctx context.Context, region string) crowd.SnapshotRecord
}

// Recorder keeps captured snapshots.
type Recorder interface {
	Save(rec crowd.SnapshotRecord)
}

// Publisher fans captured snapshots out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Scheduler periodically captures the crowd snapshot of configured regions.
type Scheduler struct {
	scheduler *gocron.Scheduler
	capturer  Capturer
	recorder  Recorder
	publisher Publisher
	regions   []string
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler. publisher may be nil.
func New(regions []string, interval time.Duration, capturer Capturer, recorder Recorder, publisher Publisher, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		capturer:  capturer,
		recorder:  recorder,
		publisher: publisher,
		regions:   regions,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first capture runs immediately.
func (s *Scheduler) Start() error {
	if len(s.regions) == 0 {
		s.logger.Info("scheduler: no regions configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		s.CaptureAll(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// CaptureAll captures every region concurrently, records the results and
// publishes them.
func (s *Scheduler) CaptureAll(ctx context.Context) {
	s.logger.Debug("scheduler: capturing snapshots", zap.Strings("regions", s.regions))

	var wg sync.WaitGroup
	for _, region := range s.regions {
		region := region
		wg.Add(1)
		go func() {
			defer wg.Done()

			rec := s.capturer.Capture(ctx, region)
			s.recorder.Save(rec)
			metrics.SetSnapshotLevels(region, countLevels(rec.Places), []string{
				crowd.LabelQuiet, crowd.LabelModerate, crowd.LabelBusy, crowd.LabelVeryBusy,
			})

			if s.publisher != nil {
				if err := s.publisher.Publish(ctx, Channel, rec); err != nil {
					s.logger.Warn("scheduler: publish failed", zap.String("region", region), zap.Error(err))
				}
			}
			s.logger.Info("scheduler: snapshot captured",
				zap.String("region", region),
				zap.String("id", rec.ID),
				zap.Int("places", len(rec.Places)))
		}()
	}
	wg.Wait()
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func countLevels(places []crowd.Snapshot) map[string]int {
	counts := make(map[string]int, 4)
	for _, p := range places {
		counts[p.BusyLevel]++
	}
	return counts
}
