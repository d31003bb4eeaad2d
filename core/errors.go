package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	EnvErrorBadInput              = "SECENV_BAD_INPUT"
	EnvErrorFactoryNotFound       = "SECENV_FACTORY_NOT_FOUND"
	EnvErrorModuleInstallFailed   = "SECENV_MODULE_INSTALL_FAILED"
	EnvErrorModuleUninstallFailed = "SECENV_MODULE_UNINSTALL_FAILED"
	EnvErrorContextUnavailable    = "SECENV_CONTEXT_UNAVAILABLE"
	EnvErrorInternal              = "SECENV_INTERNAL_ERROR"
)

func factoryNotFoundError(kind string, id string) *goerrors.Error {
	return newEnvironmentError(
		"core: no registered "+kind+" factory matches: "+id,
		goerrors.CategoryNotFound,
		EnvErrorFactoryNotFound,
	)
}

func environmentErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureEnvironmentErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "no registered") && strings.Contains(msg, "factory"):
		return newEnvironmentError(err.Error(), goerrors.CategoryNotFound, EnvErrorFactoryNotFound)
	case strings.Contains(msg, "install"):
		return newEnvironmentError(err.Error(), goerrors.CategoryOperation, EnvErrorModuleInstallFailed)
	case strings.Contains(msg, "security context"):
		return newEnvironmentError(err.Error(), goerrors.CategoryOperation, EnvErrorContextUnavailable)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "blank"):
		return newEnvironmentError(err.Error(), goerrors.CategoryBadInput, EnvErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureEnvironmentErrorEnvelope(mapped)
}

func newEnvironmentError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureEnvironmentErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureEnvironmentErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = environmentHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultEnvironmentTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultEnvironmentTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return EnvErrorBadInput
	case goerrors.CategoryNotFound:
		return EnvErrorFactoryNotFound
	case goerrors.CategoryOperation:
		return EnvErrorModuleInstallFailed
	default:
		return EnvErrorInternal
	}
}

func environmentHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
