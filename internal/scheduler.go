package internal

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// NewScheduler runs a batch conversion immediately, then again on every tick
// of the given interval.
func NewScheduler(cfg BatchConfig, every time.Duration) (gocron.Scheduler, error) {
	if every <= 0 {
		return nil, fmt.Errorf("invalid schedule interval %s", every)
	}

	if err := RunBatch(cfg); err != nil {
		return nil, fmt.Errorf("initial run of job failed: %w", err)
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(RunBatch, cfg),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	log.Printf("Scheduled batch conversion of %s every %s", cfg.InDir, every)
	scheduler.Start()
	return scheduler, nil
}

// RunBatch converts the files currently in cfg.InDir. An empty directory is
// not an error.
func RunBatch(cfg BatchConfig) error {
	p, err := NewProcessor(cfg)
	if errors.Is(err, ErrNoFiles) {
		return nil
	}
	if err != nil {
		return err
	}

	if errs := p.Run(); len(errs) > 0 {
		for _, err := range errs {
			log.Printf("Conversion error: %v", err)
		}
		return errors.Join(errs...)
	}
	return nil
}
