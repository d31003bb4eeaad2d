// Package modules ships the built-in security modules: staged authentication
// configuration, keytab credential material, and sealed credential
// envelopes. Each module owns the ambient state it mutates and releases it
// on uninstall.
package modules
