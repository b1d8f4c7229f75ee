package internal

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rm-hull/png-bitmap/internal/bitmap"
	"github.com/rm-hull/png-bitmap/internal/png"
)

var ErrNoFiles = errors.New("no files to process")

type BatchConfig struct {
	InDir    string
	OutDir   string
	PoolSize int
	Format   bitmap.Format
	Stages   []png.PipelineStage
	Adapter  *png.Adapter

	// MaxFiles caps how many files, in name order, a run converts. Zero or
	// less converts them all.
	MaxFiles int
}

// Processor normalizes every PNG in a directory through a bitmap of the
// configured format, writing the results to an output directory.
type Processor struct {
	startTime time.Time
	endTime   time.Time
	cfg       BatchConfig
	maxJobs   int
	jobs      chan string
	results   chan error
	files     []string
}

func NewProcessor(cfg BatchConfig) (*Processor, error) {
	if cfg.PoolSize < 1 {
		return nil, errors.New("pool size must be at least 1")
	}
	if !cfg.Format.Valid() {
		return nil, fmt.Errorf("%w: %s", png.ErrInvalidFormat, cfg.Format)
	}
	if cfg.Adapter == nil {
		cfg.Adapter = png.DefaultAdapter
	}

	startTime := time.Now()
	files, err := filepath.Glob(filepath.Join(cfg.InDir, "*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", cfg.InDir, err)
	}
	sort.Strings(files)

	log.Printf("Directory %s contains %d PNG files", cfg.InDir, len(files))
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	if err := os.MkdirAll(cfg.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	maxJobs := cfg.MaxFiles
	if maxJobs <= 0 {
		maxJobs = -1
	}

	return &Processor{
		startTime: startTime,
		cfg:       cfg,
		maxJobs:   maxJobs,
		jobs:      make(chan string),
		results:   make(chan error),
		files:     files,
	}, nil
}

// DispatchJobs sends files to the jobs channel for processing by workers.
// When maxJobs is greater than zero, it limits the number of jobs dispatched,
// otherwise it is -1 and every file is dispatched.
func (p *Processor) DispatchJobs() {

	go func() {
		for n, file := range p.files {
			if p.maxJobs > 0 && n >= p.maxJobs {
				break
			}
			p.jobs <- file
		}
		close(p.jobs)
	}()
}

func (p *Processor) StartWorkers() {
	log.Printf("Starting conversion with pool size: %d", p.cfg.PoolSize)

	for i := range p.cfg.PoolSize {
		go p.worker(i)
	}
}

func (p *Processor) worker(i int) {
	log.Printf("Worker %d started", i)
	for file := range p.jobs {
		p.results <- p.processFile(file)
	}
	log.Printf("Worker %d finished", i)
}

func (p *Processor) processFile(inFile string) error {
	filename := filepath.Join(p.cfg.OutDir, filepath.Base(inFile))

	// if the file already exists, skip processing
	if _, err := os.Stat(filename); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	bm, err := p.cfg.Adapter.Load(inFile, p.cfg.Format, p.cfg.Stages...)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", inFile, err)
	}
	defer p.cfg.Adapter.Free(bm)

	if err := p.cfg.Adapter.Write(filename, bm); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

func (p *Processor) Wait() []error {
	waitFor := p.maxJobs
	if waitFor < 0 || waitFor > len(p.files) {
		waitFor = len(p.files)
	}
	log.Printf("Waiting for %d files to be converted", waitFor)

	errors := make([]error, 0, 10)
	for range waitFor {
		err := <-p.results
		if err != nil {
			errors = append(errors, err)
		}
	}
	p.endTime = time.Now()
	elapsed := p.endTime.Sub(p.startTime)
	log.Printf("All files converted in %s (errors=%d)", elapsed, len(errors))
	return errors
}

func (p *Processor) Run() []error {
	p.StartWorkers()
	p.DispatchJobs()
	return p.Wait()
}
