// Package core contains the security provisioning contracts, the factory
// registry, and the environment that installs security modules and selects
// the active security context. Built-in module and context implementations
// must depend on this package; core must not depend on them.
package core
