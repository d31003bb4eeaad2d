package core

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestFactoryRegistry_ResolveByExactIdentifier(t *testing.T) {
	registry := NewFactoryRegistry()
	factory := &stubModuleFactory{id: "mod.keytab", provision: SkipModule("test")}
	if err := registry.RegisterModuleFactory(factory); err != nil {
		t.Fatalf("register module factory: %v", err)
	}

	resolved, err := registry.ResolveModuleFactory("mod.keytab")
	if err != nil {
		t.Fatalf("resolve module factory: %v", err)
	}
	if resolved.ID() != "mod.keytab" {
		t.Fatalf("unexpected factory: %s", resolved.ID())
	}
}

func TestFactoryRegistry_UnknownIdentifierFails(t *testing.T) {
	registry := NewFactoryRegistry()

	_, err := registry.ResolveModuleFactory("mod.unknown")
	if err == nil {
		t.Fatalf("expected resolution failure")
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		t.Fatalf("expected rich error, got %T", err)
	}
	if richErr.TextCode != EnvErrorFactoryNotFound {
		t.Fatalf("expected %s, got %s", EnvErrorFactoryNotFound, richErr.TextCode)
	}

	if _, err := registry.ResolveContextFactory("ctx.unknown"); err == nil {
		t.Fatalf("expected context resolution failure")
	}
}

func TestFactoryRegistry_FirstRegistrationWins(t *testing.T) {
	registry := NewFactoryRegistry()
	first := &stubContextFactory{id: "ctx.dup", compatible: true}
	second := &stubContextFactory{id: "ctx.dup", compatible: false}

	if err := registry.RegisterContextFactory(first); err != nil {
		t.Fatalf("register first: %v", err)
	}
	if err := registry.RegisterContextFactory(second); err == nil {
		t.Fatalf("expected duplicate registration to be rejected")
	}

	resolved, err := registry.ResolveContextFactory("ctx.dup")
	if err != nil {
		t.Fatalf("resolve context factory: %v", err)
	}
	if !resolved.IsCompatible(Config{}) {
		t.Fatalf("expected first registered factory to win")
	}
}

func TestFactoryRegistry_ListsDeterministicOrder(t *testing.T) {
	registry := NewFactoryRegistry()
	for _, id := range []string{"mod.zeta", "mod.alpha", "mod.beta"} {
		if err := registry.RegisterModuleFactory(&stubModuleFactory{id: id, provision: SkipModule("test")}); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}

	got := registry.ModuleFactoryIDs()
	want := []string{"mod.alpha", "mod.beta", "mod.zeta"}
	if len(got) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(got))
	}
	for idx := range want {
		if got[idx] != want[idx] {
			t.Fatalf("unexpected ordering at index %d: got %v want %v", idx, got, want)
		}
	}
}

func TestFactoryRegistry_RejectsNilAndBlank(t *testing.T) {
	registry := NewFactoryRegistry()
	if err := registry.RegisterModuleFactory(nil); err == nil {
		t.Fatalf("expected nil module factory to be rejected")
	}
	if err := registry.RegisterModuleFactory(&stubModuleFactory{id: "  "}); err == nil {
		t.Fatalf("expected blank module factory id to be rejected")
	}
	if err := registry.RegisterContextFactory(nil); err == nil {
		t.Fatalf("expected nil context factory to be rejected")
	}
}
