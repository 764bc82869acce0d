package store

import (
	"context"

	"github.com/me/jobbind/pkg/model"
)

// Store persists binding passes.
type Store interface {
	CreatePass(ctx context.Context, p *model.Pass) error
	// GetPass returns nil, nil when no pass has the id.
	GetPass(ctx context.Context, id string) (*model.Pass, error)
	ListPasses(ctx context.Context, opts model.ListOptions) ([]*model.Pass, int, error)
	// FindPassByDigest returns the most recent pass with the argv digest.
	FindPassByDigest(ctx context.Context, digest string) (*model.Pass, error)

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
}
