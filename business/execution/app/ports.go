// Package app contains application services and port definitions for the execution context.
package app

import (
	"context"

	"github.com/0xnicolas/safe-yield-bot/business/execution/domain"
)

// ModuleGateway talks to the Safe: precondition checks and module
// transaction construction.
type ModuleGateway interface {
	// IsModuleEnabled reports whether the execution module is
	// authorized on the Safe.
	IsModuleEnabled(ctx context.Context) (bool, error)

	// BuildModuleTransaction wraps packed batch bytes into the
	// execTransactionFromModule call against the Safe.
	BuildModuleTransaction(packed []byte) (domain.ModuleTransaction, error)
}

// Submitter hands a module transaction to whatever executes it.
type Submitter interface {
	Submit(ctx context.Context, tx domain.ModuleTransaction) error
}
