// Package di contains dependency injection tokens for the rebalance context.
package di

import (
	"github.com/0xnicolas/safe-yield-bot/business/rebalance/app"
	"github.com/0xnicolas/safe-yield-bot/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Decider      = di.NewToken[*app.Decider]("rebalance.Decider")
	Planner      = di.NewToken[*app.Planner]("rebalance.Planner")
	Reporter     = di.NewToken[app.Reporter]("rebalance.Reporter")
	Orchestrator = di.NewToken[*app.Orchestrator]("rebalance.Orchestrator")
)

// Helper functions for type-safe access
func GetDecider(c di.ServiceRegistry) *app.Decider {
	return di.GetToken(c, Decider)
}

func GetPlanner(c di.ServiceRegistry) *app.Planner {
	return di.GetToken(c, Planner)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}

func GetOrchestrator(c di.ServiceRegistry) *app.Orchestrator {
	return di.GetToken(c, Orchestrator)
}
