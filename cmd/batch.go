package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rm-hull/png-bitmap/internal"
)

// Batch converts a directory once, or keeps converting it on a schedule until
// interrupted when every is positive.
func Batch(cfg internal.BatchConfig, every time.Duration) error {
	if every <= 0 {
		return internal.RunBatch(cfg)
	}

	sched, err := internal.NewScheduler(cfg, every)
	if err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down scheduler")
	return sched.Shutdown()
}
