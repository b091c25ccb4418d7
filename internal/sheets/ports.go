package sheets

import (
	"context"

	"finanzas/internal/core"
)

// Mirror receives the complete record set of one owner and replaces whatever
// copy it held before. Implementations must be safe to call repeatedly with
// the same set.
type Mirror interface {
	ReplaceOwner(ctx context.Context, ownerID string, txs []core.Transaction) error
}
