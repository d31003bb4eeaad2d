package gojob

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-secenv/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

func TestPlannedRenewalsFlowThroughQueueAdapters(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	renewAt := now.Add(20 * time.Minute)

	env := provisionRenewableEnvironment(t, &renewableModule{name: "keytab", renewAt: renewAt})

	backing := &memoryQueue{}
	planner, err := core.NewRenewalPlanner(
		NewEnqueuerAdapter(backing),
		core.WithRenewalClock(func() time.Time { return now }),
	)
	if err != nil {
		t.Fatalf("new planner: %v", err)
	}

	count, err := planner.PlanRenewals(ctx, env, time.Hour)
	if err != nil {
		t.Fatalf("plan renewals: %v", err)
	}
	if count != 1 || len(backing.items) != 1 {
		t.Fatalf("expected one queued renewal, got count=%d queued=%d", count, len(backing.items))
	}

	dequeuer := NewDequeuerAdapter(backing, DefaultRenewalRetryPolicy())
	delivery, err := dequeuer.Dequeue(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	msg := delivery.Message()
	if msg == nil || msg.JobID != core.JobIDModuleRenew {
		t.Fatalf("expected a renewal message, got %+v", msg)
	}
	if got := RenewalModuleName(msg); got != "keytab" {
		t.Fatalf("expected module keytab, got %q", got)
	}
	if got := RenewalDeadline(msg); !got.Equal(renewAt) {
		t.Fatalf("expected deadline %v, got %v", renewAt, got)
	}
	if msg.IdempotencyKey == "" {
		t.Fatalf("expected idempotency key on the queued renewal")
	}
	if err := delivery.Ack(ctx); err != nil {
		t.Fatalf("ack: %v", err)
	}
}

func TestRenewalMessageHelpersRejectOtherJobs(t *testing.T) {
	other := &core.JobExecutionMessage{
		JobID:      "secenv.other.job",
		Parameters: map[string]any{"module": "keytab", "renew_at": "2026-08-01T12:00:00Z"},
	}
	if got := RenewalModuleName(other); got != "" {
		t.Fatalf("expected no module for a non-renewal job, got %q", got)
	}
	if got := RenewalDeadline(other); !got.IsZero() {
		t.Fatalf("expected zero deadline for a non-renewal job, got %v", got)
	}

	malformed := &core.JobExecutionMessage{
		JobID:      core.JobIDModuleRenew,
		Parameters: map[string]any{"renew_at": "sometime soon"},
	}
	if got := RenewalDeadline(malformed); !got.IsZero() {
		t.Fatalf("expected zero deadline for a malformed timestamp, got %v", got)
	}
}

func TestRenewalRetryPolicyBoundaries(t *testing.T) {
	ctx := context.Background()
	raw := &memoryDelivery{
		msg: &job.ExecutionMessage{
			JobID:      core.JobIDModuleRenew,
			Parameters: map[string]any{"module": "keytab"},
		},
	}
	adapter := NewDeliveryAdapter(raw, RenewalRetryPolicy{
		MaxAttempts:     3,
		MaxDelay:        10 * time.Second,
		DeadLetterOnMax: true,
	})

	if err := adapter.NackForAttempt(ctx, core.JobNackOptions{
		Delay:   30 * time.Second,
		Requeue: true,
		Reason:  "keytab source unreadable",
	}, 1); err != nil {
		t.Fatalf("nack attempt 1: %v", err)
	}
	if raw.lastNack.Delay != 10*time.Second {
		t.Fatalf("expected delay bounded to 10s, got %s", raw.lastNack.Delay)
	}
	if !raw.lastNack.Requeue {
		t.Fatalf("expected requeue before max attempts")
	}

	if err := adapter.NackForAttempt(ctx, core.JobNackOptions{
		Delay:   time.Second,
		Requeue: true,
		Reason:  "keytab source still unreadable",
	}, 3); err != nil {
		t.Fatalf("nack max attempt: %v", err)
	}
	if raw.lastNack.Requeue {
		t.Fatalf("expected no requeue once max attempts is reached")
	}
	if !raw.lastNack.DeadLetter {
		t.Fatalf("expected dead letter on max attempts")
	}
}

func TestDefaultRenewalRetryPolicyDeadLetters(t *testing.T) {
	policy := DefaultRenewalRetryPolicy()
	out := policy.NormalizeAttempt(core.JobNackOptions{
		Delay:   time.Hour,
		Requeue: true,
		Reason:  "renewal handler crashed",
	}, policy.MaxAttempts)
	if out.Requeue || !out.DeadLetter {
		t.Fatalf("expected exhausted renewal to dead letter, got %+v", out)
	}
	if out.Delay != policy.MaxDelay {
		t.Fatalf("expected delay bounded to %s, got %s", policy.MaxDelay, out.Delay)
	}
}

func TestWorkerHookAdapterMapsRenewalEvents(t *testing.T) {
	hook := &renewalHookRecorder{}
	adapter := NewWorkerHookAdapter(hook)

	startedAt := time.Now().UTC().Add(-time.Second)
	adapter.OnRetry(context.Background(), worker.Event{
		Message: &job.ExecutionMessage{
			JobID:          core.JobIDModuleRenew,
			Parameters:     map[string]any{"module": "secrets"},
			IdempotencyKey: "renew-secrets-1",
		},
		Attempt:   2,
		Delay:     5 * time.Second,
		Err:       errors.New("provider unavailable"),
		StartedAt: startedAt,
		Duration:  250 * time.Millisecond,
	})

	event := hook.lastRetry
	if event.Message == nil || event.Message.JobID != core.JobIDModuleRenew {
		t.Fatalf("expected renewal message on the mapped event")
	}
	if got := RenewalModuleName(event.Message); got != "secrets" {
		t.Fatalf("expected module secrets, got %q", got)
	}
	if event.Attempt != 2 || event.Delay != 5*time.Second {
		t.Fatalf("expected attempt and delay mapping, got attempt=%d delay=%s", event.Attempt, event.Delay)
	}
	if event.StartedAt.IsZero() || event.Duration != 250*time.Millisecond {
		t.Fatalf("expected timing mapping, got started=%v duration=%s", event.StartedAt, event.Duration)
	}
	if event.Err == nil || event.Err.Error() != "provider unavailable" {
		t.Fatalf("expected error mapping, got %v", event.Err)
	}
}

func provisionRenewableEnvironment(t *testing.T, modules ...*renewableModule) *core.Environment {
	t.Helper()
	registry := core.NewFactoryRegistry()
	ids := make([]string, 0, len(modules))
	for _, module := range modules {
		factory := renewableFactory{module: module}
		if err := registry.RegisterModuleFactory(factory); err != nil {
			t.Fatalf("register factory: %v", err)
		}
		ids = append(ids, factory.ID())
	}
	env, err := core.NewEnvironment(core.Config{ModuleFactories: ids}, core.WithRegistry(registry))
	if err != nil {
		t.Fatalf("new environment: %v", err)
	}
	if err := env.Install(context.Background()); err != nil {
		t.Fatalf("install: %v", err)
	}
	return env
}

type renewableModule struct {
	name    string
	renewAt time.Time
}

func (m *renewableModule) Name() string { return m.name }

func (m *renewableModule) Install(context.Context) error { return nil }

func (m *renewableModule) Uninstall(context.Context) error { return nil }

func (m *renewableModule) NextRenewal() time.Time { return m.renewAt }

type renewableFactory struct {
	module *renewableModule
}

func (f renewableFactory) ID() string { return "renewtest.module." + f.module.name }

func (f renewableFactory) CreateModule(core.Config) (core.ModuleProvision, error) {
	return core.ProvisionModule(f.module), nil
}

type memoryQueue struct {
	items []*job.ExecutionMessage
}

func (q *memoryQueue) Enqueue(_ context.Context, msg *job.ExecutionMessage) error {
	q.items = append(q.items, msg)
	return nil
}

func (q *memoryQueue) Dequeue(context.Context) (queue.Delivery, error) {
	if len(q.items) == 0 {
		return nil, fmt.Errorf("gojob: queue is empty")
	}
	msg := q.items[0]
	q.items = q.items[1:]
	return &memoryDelivery{msg: msg}, nil
}

type memoryDelivery struct {
	msg      *job.ExecutionMessage
	acked    bool
	lastNack queue.NackOptions
}

func (d *memoryDelivery) Message() *job.ExecutionMessage { return d.msg }

func (d *memoryDelivery) Ack(context.Context) error {
	d.acked = true
	return nil
}

func (d *memoryDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	d.lastNack = opts
	return nil
}

type renewalHookRecorder struct {
	lastRetry core.JobWorkerEvent
}

func (h *renewalHookRecorder) OnStart(context.Context, core.JobWorkerEvent)   {}
func (h *renewalHookRecorder) OnSuccess(context.Context, core.JobWorkerEvent) {}
func (h *renewalHookRecorder) OnFailure(context.Context, core.JobWorkerEvent) {}
func (h *renewalHookRecorder) OnRetry(_ context.Context, event core.JobWorkerEvent) {
	h.lastRetry = event
}

var _ core.JobWorkerHook = (*renewalHookRecorder)(nil)
