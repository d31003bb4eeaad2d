package command

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-secenv/core"
)

func TestPlanRenewalsMessage_ValidateReturnsRichError(t *testing.T) {
	err := (PlanRenewalsMessage{Window: -time.Second}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryBadInput {
		t.Fatalf("expected bad input category, got %q", rich.Category)
	}
	if rich.TextCode != core.EnvErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.EnvErrorBadInput, rich.TextCode)
	}
}

func TestInstallCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *InstallCommand
	err := cmd.Execute(context.Background(), InstallMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
	if rich.TextCode != core.EnvErrorInternal {
		t.Fatalf("expected %q text code, got %q", core.EnvErrorInternal, rich.TextCode)
	}
}
