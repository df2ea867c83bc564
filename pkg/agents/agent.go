// Package agents contains the code generation agents and the orchestrator
// that runs them against a project blueprint.
package agents

import (
	"context"
	"time"

	"github.com/projectforge/aipg/pkg/blueprint"
)

// Agent generates one slice of the project from a blueprint. Agents run in
// priority order, lower values first.
type Agent interface {
	// Name identifies the agent in results and logs.
	Name() string

	// Description is a human-readable summary of what the agent produces.
	Description() string

	// Priority orders agent execution. Lower runs earlier.
	Priority() int

	// CanProcess reports whether the blueprint carries enough information
	// for this agent to produce output.
	CanProcess(bp *blueprint.Blueprint) bool

	// Execute runs the agent against the blueprint. Failures are reported
	// in the Result rather than as errors so one agent cannot abort the
	// whole orchestration.
	Execute(ctx context.Context, bp *blueprint.Blueprint) Result
}

// Result captures the outcome of a single agent run.
type Result struct {
	AgentName        string `json:"agent_name"`
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	Output           string `json:"output,omitempty"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// Info describes a registered agent for the discovery endpoint.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
}

func successResult(name, message, output string, elapsed time.Duration) Result {
	return Result{
		AgentName:        name,
		Success:          true,
		Message:          message,
		Output:           output,
		ProcessingTimeMs: elapsed.Milliseconds(),
	}
}

func failureResult(name, message string, elapsed time.Duration) Result {
	return Result{
		AgentName:        name,
		Success:          false,
		Message:          message,
		ProcessingTimeMs: elapsed.Milliseconds(),
	}
}
