package core

import (
	"context"
	"fmt"
	"time"
)

// JobIDModuleRenew identifies the queued job that re-provisions a module's
// staged credential material.
const JobIDModuleRenew = "secenv.module.renew"

// RenewalPlanner inspects the installed modules and enqueues renewal jobs
// for those that declare an upcoming renewal deadline. How a module renews
// is the module's own business; the planner only schedules.
type RenewalPlanner struct {
	enqueuer JobEnqueuer
	logger   Logger
	now      func() time.Time
}

type RenewalPlannerOption func(*RenewalPlanner)

func WithRenewalLogger(logger Logger) RenewalPlannerOption {
	return func(p *RenewalPlanner) {
		p.logger = logger
	}
}

func WithRenewalClock(now func() time.Time) RenewalPlannerOption {
	return func(p *RenewalPlanner) {
		if now != nil {
			p.now = now
		}
	}
}

func NewRenewalPlanner(enqueuer JobEnqueuer, options ...RenewalPlannerOption) (*RenewalPlanner, error) {
	if enqueuer == nil {
		return nil, fmt.Errorf("core: renewal job enqueuer is required")
	}
	planner := &RenewalPlanner{
		enqueuer: enqueuer,
		now:      time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(planner)
	}
	return planner, nil
}

// PlanRenewals enqueues a renewal job for every installed renewable module
// whose deadline falls within the window from now. A non-positive window
// schedules only modules that are already due. Returns the number of jobs
// enqueued; the first enqueue failure aborts planning.
func (p *RenewalPlanner) PlanRenewals(ctx context.Context, env *Environment, window time.Duration) (int, error) {
	if p == nil || p.enqueuer == nil {
		return 0, fmt.Errorf("core: renewal planner is not configured")
	}
	if env == nil {
		return 0, fmt.Errorf("core: environment is required")
	}

	now := p.now()
	horizon := now.Add(window)
	enqueued := 0
	for _, module := range env.InstalledModules() {
		renewable, ok := module.(RenewableModule)
		if !ok {
			continue
		}
		deadline := renewable.NextRenewal()
		if deadline.IsZero() || deadline.After(horizon) {
			continue
		}
		msg := &JobExecutionMessage{
			JobID: JobIDModuleRenew,
			Parameters: map[string]any{
				"module":   module.Name(),
				"renew_at": deadline.UTC().Format(time.RFC3339),
			},
			IdempotencyKey: fmt.Sprintf("%s:%s:%d", JobIDModuleRenew, module.Name(), deadline.Unix()),
		}
		if err := p.enqueuer.Enqueue(ctx, msg); err != nil {
			return enqueued, fmt.Errorf("core: enqueue renewal for module %q: %w", module.Name(), err)
		}
		enqueued++
		if p.logger != nil {
			p.logger.Debug("module renewal scheduled", "module", module.Name(), "renew_at", deadline)
		}
	}
	return enqueued, nil
}
