// Package gologger wires the environment's glog logging into go-job so
// renewal queue workers report through the same configured sink as the
// provisioning environment itself.
package gologger

import (
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

// WorkerLogging carries both sides of the bridge: the glog logger and
// provider the environment resolved, plus their go-job equivalents handed to
// renewal workers.
type WorkerLogging struct {
	Provider    glog.LoggerProvider
	Logger      glog.Logger
	JobProvider job.LoggerProvider
	JobLogger   job.Logger
}

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ToJobProvider maps a glog provider to the go-job logger provider contract.
func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

// ToJobLogger maps a glog logger to the go-job logger contract.
func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}

// ResolveWorkerLogging resolves the glog side for the named component and
// bridges it so a renewal worker can be handed go-job logging backed by the
// environment's sink.
func ResolveWorkerLogging(name string, provider glog.LoggerProvider, logger glog.Logger) WorkerLogging {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	return WorkerLogging{
		Provider:    resolvedProvider,
		Logger:      resolvedLogger,
		JobProvider: ToJobProvider(resolvedProvider),
		JobLogger:   ToJobLogger(resolvedLogger),
	}
}
