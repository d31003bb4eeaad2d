// Package contexts provides the built-in security context implementations
// and their factories. Factories register against a core.FactoryRegistry
// and are consulted in configured order during environment provisioning.
package contexts
