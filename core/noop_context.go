package core

import "context"

// noopSecurityContext means "no security enabled": actions run with whatever
// ambient identity the process already has.
type noopSecurityContext struct{}

// NewNoopContext returns the inert default security context.
func NewNoopContext() SecurityContext {
	return noopSecurityContext{}
}

func (noopSecurityContext) Name() string { return "noop" }

func (noopSecurityContext) RunSecured(ctx context.Context, action SecuredAction) error {
	if action == nil {
		return nil
	}
	return action(ctx)
}
