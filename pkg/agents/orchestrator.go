package agents

import (
	"context"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/projectforge/aipg/pkg/blueprint"
	"github.com/projectforge/aipg/pkg/errors"
	"github.com/projectforge/aipg/pkg/logging"
)

const (
	defaultConcurrency  = 4
	defaultAgentTimeout = 5 * time.Minute
)

// Orchestrator runs the registered agents against a blueprint. Agents run
// concurrently within a bounded pool; priority decides dispatch order.
type Orchestrator struct {
	agents       []Agent
	concurrency  int
	agentTimeout time.Duration
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithConcurrency bounds the number of agents running at once.
func WithConcurrency(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithAgentTimeout caps the run time of any single agent.
func WithAgentTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.agentTimeout = d
		}
	}
}

// NewOrchestrator registers the given agents, sorted by priority.
func NewOrchestrator(agents []Agent, opts ...OrchestratorOption) *Orchestrator {
	sorted := make([]Agent, len(agents))
	copy(sorted, agents)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})

	o := &Orchestrator{
		agents:       sorted,
		concurrency:  defaultConcurrency,
		agentTimeout: defaultAgentTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs every applicable agent and returns their results in dispatch
// order. Individual agent failures are recorded in the results; the returned
// error is non-nil only when the context is done or no agent produced output.
func (o *Orchestrator) Execute(ctx context.Context, bp *blueprint.Blueprint) ([]Result, error) {
	logger := logging.GetLogger()
	start := time.Now()

	applicable := make([]Agent, 0, len(o.agents))
	for _, agent := range o.agents {
		if agent.CanProcess(bp) {
			applicable = append(applicable, agent)
		}
	}
	logger.Info(ctx, "orchestrating project %q with %d of %d agents",
		bp.Name(), len(applicable), len(o.agents))

	if len(applicable) == 0 {
		return nil, errors.New(errors.AgentExecutionFailed, "no applicable agents for blueprint")
	}

	results := make([]Result, len(applicable))
	p := pool.New().WithMaxGoroutines(o.concurrency)
	for i, agent := range applicable {
		i, agent := i, agent
		p.Go(func() {
			if err := errors.CheckContext(ctx, agent.Name()); err != nil {
				results[i] = failureResult(agent.Name(), err.Error(), 0)
				return
			}
			agentCtx, cancel := context.WithTimeout(ctx, o.agentTimeout)
			defer cancel()
			results[i] = agent.Execute(agentCtx, bp)
		})
	}
	p.Wait()

	if err := errors.CheckContext(ctx, "agent orchestration"); err != nil {
		return results, err
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	logger.Info(ctx, "agent orchestration completed in %s, %d/%d succeeded",
		time.Since(start), succeeded, len(results))

	if succeeded == 0 {
		return results, errors.New(errors.AgentExecutionFailed, "all agents failed")
	}
	return results, nil
}

// AgentInfo lists the registered agents in priority order.
func (o *Orchestrator) AgentInfo() []Info {
	infos := make([]Info, 0, len(o.agents))
	for _, agent := range o.agents {
		infos = append(infos, Info{
			Name:        agent.Name(),
			Description: agent.Description(),
			Priority:    agent.Priority(),
		})
	}
	return infos
}
