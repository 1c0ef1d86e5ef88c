package ports

import (
	"context"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// EchangeRepository stores one comment thread kind.
type EchangeRepository interface {
	Create(ctx context.Context, e *domain.Echange) error
	// ListByParent returns the thread in created_at order with AuteurNom
	// resolved. Unknown or malformed parent IDs yield an empty slice.
	ListByParent(ctx context.Context, parentID string) ([]*domain.Echange, error)
	FindByID(ctx context.Context, id string) (*domain.Echange, error)
	Delete(ctx context.Context, id string) error
	DeleteByParent(ctx context.Context, parentID string) (int64, error)
}

type EchangeService interface {
	List(ctx context.Context, actor domain.Actor, thread domain.Thread, parentID string) ([]*domain.Echange, error)
	Create(ctx context.Context, actor domain.Actor, thread domain.Thread, parentID, message string) (*domain.Echange, error)
	Delete(ctx context.Context, actor domain.Actor, thread domain.Thread, id string) error
}
