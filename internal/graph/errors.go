package graph

import (
	"context"
	"errors"
	"log/slog"

	domainerrors "github.com/njohnson2897/bookmarkd-sub000/internal/errors"
)

// internalMessage replaces the text of unexpected failures.
const internalMessage = "internal server error"

// Error is the GraphQL representation of a failed resolver. The code is
// exposed under extensions.code.
type Error struct {
	Code    domainerrors.Code
	Message string
	Details any
}

func (e *Error) Error() string {
	return e.Message
}

// Extensions implements the resolver error interface of graphql-go.
func (e *Error) Extensions() map[string]any {
	ext := map[string]any{"code": string(e.Code)}
	if e.Details != nil {
		ext["details"] = e.Details
	}
	return ext
}

// present converts a service error into its client-facing form. Domain
// errors keep their code and message; anything else is logged and reported
// as INTERNAL without leaking the cause.
func present(ctx context.Context, logger *slog.Logger, err error) error {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) && domainErr.Code != domainerrors.CodeInternal {
		return &Error{
			Code:    domainErr.Code,
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	}

	logger.ErrorContext(ctx, "resolver failed", "error", err)
	return &Error{Code: domainerrors.CodeInternal, Message: internalMessage}
}
