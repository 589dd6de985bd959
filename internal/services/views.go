package services

import (
	"context"

	"github.com/terraincognita07/fortuna/internal/models"
)

// ClientAccessGuard is the subset of AccessService the domain services call.
type ClientAccessGuard interface {
	CheckClientAccess(ctx context.Context, actorID string, clientID string) (models.AccessLevel, error)
	RequireOwner(ctx context.Context, actorID string, clientID string) error
	RequireEditor(ctx context.Context, actorID string, clientID string) error
	RequireViewer(ctx context.Context, actorID string, clientID string) error
	ClientOwner(ctx context.Context, clientID string) (string, error)
}

// ViewInvalidator drops cached views after a successful mutation.
type ViewInvalidator interface {
	InvalidateAstrologerViews(ctx context.Context, astrologerIDs ...string)
}

type noopViewInvalidator struct{}

func (noopViewInvalidator) InvalidateAstrologerViews(context.Context, ...string) {}

func viewInvalidatorOrNoop(invalidator ViewInvalidator) ViewInvalidator {
	if invalidator == nil {
		return noopViewInvalidator{}
	}
	return invalidator
}

func totalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
