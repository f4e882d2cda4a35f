package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/macrat/cfmon/internal/endpoint"
	"github.com/macrat/cfmon/internal/logger"
	"github.com/macrat/cfmon/internal/meta"
	"github.com/macrat/cfmon/internal/monitor"
	"github.com/robfig/cron/v3"
)

// Runner runs checks one at a time, and keeps the last report.
// It implements endpoint.Store.
type Runner struct {
	Monitor *monitor.Monitor

	schedule  string
	startedAt time.Time

	runLock sync.Mutex

	reportLock sync.RWMutex
	report     endpoint.Report
}

func NewRunner(m *monitor.Monitor, schedule string) *Runner {
	return &Runner{
		Monitor:   m,
		schedule:  schedule,
		startedAt: time.Now(),
	}
}

// Run runs a check.
// It waits for the running check if any, because the snapshot file must not be written concurrently.
func (r *Runner) Run(ctx context.Context) error {
	r.runLock.Lock()
	defer r.runLock.Unlock()

	result, err := r.Monitor.Run(ctx)

	r.reportLock.Lock()
	r.report = endpoint.Report{Result: result, Error: err}
	r.reportLock.Unlock()

	return err
}

// Job makes a cron.Job that runs a check.
func (r *Runner) Job(ctx context.Context) cron.Job {
	return cron.FuncJob(func() {
		r.Run(ctx)
	})
}

// Latest implements endpoint.Store.
func (r *Runner) Latest() endpoint.Report {
	r.reportLock.RLock()
	defer r.reportLock.RUnlock()

	return r.report
}

// Schedule implements endpoint.Store.
func (r *Runner) Schedule() string {
	return r.schedule
}

// StartedAt implements endpoint.Store.
func (r *Runner) StartedAt() time.Time {
	return r.startedAt
}

func (cmd *CfmonCommand) RunServer(ctx context.Context, l *logger.Logger) (exitCode int) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runner := NewRunner(cmd.NewMonitor(l), cmd.Schedule.String())
	job := runner.Job(ctx)

	listen := fmt.Sprintf("0.0.0.0:%d", cmd.ListenPort)
	l.Healthy("cfmon:server", "start cfmon server", map[string]interface{}{
		"url":      "http://" + listen,
		"schedule": cmd.Schedule.String(),
		"regions":  cmd.Config.Regions.Len(),
		"version":  fmt.Sprintf("%s (%s)", meta.Version, meta.Commit),
		"dry_run":  cmd.DryRun,
	})

	scheduler := cron.New()
	scheduler.Schedule(cmd.Schedule, cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(job))

	wg := &sync.WaitGroup{}

	if cmd.Schedule.RunOnStart() {
		wg.Add(1)
		go func() {
			job.Run()
			wg.Done()
		}()
	}

	scheduler.Start()

	srv := &http.Server{
		Addr:              listen,
		Handler:           endpoint.New(runner),
		ReadHeaderTimeout: 10 * time.Second,
	}

	wg.Add(1)
	go func() {
		<-ctx.Done()

		<-scheduler.Stop().Done()

		if err := srv.Shutdown(context.Background()); err != nil {
			l.Failure("cfmon:server", err.Error(), nil)
		}
		wg.Done()
	}()

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		l.Failure("cfmon:server", err.Error(), nil)
		exitCode = 1
	}
	cancel()

	wg.Wait()

	l.Aborted("cfmon:server", "stop cfmon server", nil)

	return exitCode
}
