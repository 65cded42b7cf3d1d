package backup

import (
	"context"

	"familybank/internal/core"
)

// Ports for outbound backup adapters.
type (
	// TransactionWriter appends one transaction to the backup target.
	TransactionWriter interface {
		Append(ctx context.Context, childName string, t core.Transaction) (rowRef string, err error)
	}
)
