package contexts

import "github.com/goliatone/go-secenv/core"

const NoopContextFactoryID = "secenv.context.noop"

// NoopContextFactory produces the pass-through context. It is compatible
// with every configuration, which makes it the natural last entry in the
// context factory order.
type NoopContextFactory struct{}

func NewNoopContextFactory() NoopContextFactory { return NoopContextFactory{} }

func (NoopContextFactory) ID() string { return NoopContextFactoryID }

func (NoopContextFactory) IsCompatible(core.Config) bool { return true }

func (NoopContextFactory) CreateContext(core.Config) (core.SecurityContext, error) {
	return core.NewNoopContext(), nil
}

var _ core.ContextFactory = NoopContextFactory{}
