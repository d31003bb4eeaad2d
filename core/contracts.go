package core

import (
	"context"
	"errors"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

// ErrUninstallNotSupported is returned by modules whose ambient changes
// cannot be reverted. The environment treats it as a successful no-op.
var ErrUninstallNotSupported = errors.New("core: module uninstall is not supported")

// SecurityModule configures ambient authentication material in the running
// process. A module value exists only after a successful construction; the
// environment tracks it only after Install returns nil.
type SecurityModule interface {
	Name() string
	Install(ctx context.Context) error
	Uninstall(ctx context.Context) error
}

type ModuleProvisionKind string

const (
	ModuleProvisioned   ModuleProvisionKind = "provisioned"
	ModuleNotApplicable ModuleProvisionKind = "not_applicable"
)

// ModuleProvision is the typed construction outcome of a module factory.
// "Not applicable in this runtime" is a first-class outcome, not an error
// and not a nil module.
type ModuleProvision struct {
	Outcome ModuleProvisionKind
	Module  SecurityModule
	Reason  string
}

func ProvisionModule(module SecurityModule) ModuleProvision {
	return ModuleProvision{Outcome: ModuleProvisioned, Module: module}
}

func SkipModule(reason string) ModuleProvision {
	return ModuleProvision{Outcome: ModuleNotApplicable, Reason: reason}
}

// ModuleFactory constructs a security module for a configuration. A factory
// returns SkipModule when the module does not apply to the current runtime;
// errors are reserved for genuine construction failures.
type ModuleFactory interface {
	ID() string
	CreateModule(cfg Config) (ModuleProvision, error)
}

// SecuredAction runs under the active security context's identity.
type SecuredAction func(ctx context.Context) error

// SecurityContext is the active privileged identity for the process.
type SecurityContext interface {
	Name() string
	RunSecured(ctx context.Context, action SecuredAction) error
}

// ContextFactory constructs a security context. IsCompatible is a pure
// predicate and is always evaluated before CreateContext.
type ContextFactory interface {
	ID() string
	IsCompatible(cfg Config) bool
	CreateContext(cfg Config) (SecurityContext, error)
}

// RenewableModule is implemented by installed modules whose staged material
// expires and must be re-provisioned. The renewal mechanics stay inside the
// module; the planner only schedules.
type RenewableModule interface {
	SecurityModule
	NextRenewal() time.Time
}

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

// SecretProvider seals and unseals credential material handed to modules.
type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// JobExecutionMessage is the queue-agnostic renewal job contract consumed by
// the go-job adapter.
type JobExecutionMessage struct {
	JobID          string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}
