// Package di contains dependency injection tokens for the execution context.
package di

import (
	"github.com/0xnicolas/safe-yield-bot/business/execution/app"
	"github.com/0xnicolas/safe-yield-bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ExecutionService = di.NewToken[*app.ExecutionService]("execution.ExecutionService")
)

// Private dependency tokens - internal to the execution module
var (
	Gateway   = di.NewToken[app.ModuleGateway]("execution:gateway")
	Submitter = di.NewToken[app.Submitter]("execution:submitter")
)

// Helper functions for type-safe access
func GetExecutionService(c di.ServiceRegistry) *app.ExecutionService {
	return di.GetToken(c, ExecutionService)
}
