package agents

import (
	"context"
	"strings"
	"time"

	"github.com/projectforge/aipg/pkg/blueprint"
	"github.com/projectforge/aipg/pkg/core"
	"github.com/projectforge/aipg/pkg/errors"
	"github.com/projectforge/aipg/pkg/logging"
)

// promptAgent is the common shape of every generation agent: a prompt
// template with a {blueprint} placeholder, rendered and sent to the model.
type promptAgent struct {
	llm         core.LLM
	name        string
	description string
	priority    int
	prompt      string
	canProcess  func(bp *blueprint.Blueprint) bool
	maxTokens   int
	temperature float64
}

func (a *promptAgent) Name() string        { return a.name }
func (a *promptAgent) Description() string { return a.description }
func (a *promptAgent) Priority() int       { return a.priority }

func (a *promptAgent) CanProcess(bp *blueprint.Blueprint) bool {
	if a.canProcess == nil {
		return true
	}
	return a.canProcess(bp)
}

func (a *promptAgent) Execute(ctx context.Context, bp *blueprint.Blueprint) Result {
	start := time.Now()
	logger := logging.GetLogger()
	logger.Info(ctx, "%s starting generation", a.name)

	output, err := a.generate(ctx, a.renderPrompt(bp))
	elapsed := time.Since(start)
	if err != nil {
		logger.Error(ctx, "%s failed after %s: %v", a.name, elapsed, err)
		return failureResult(a.name, a.name+" failed: "+err.Error(), elapsed)
	}

	logger.Info(ctx, "%s completed in %s", a.name, elapsed)
	return successResult(a.name, a.name+" completed successfully", output, elapsed)
}

func (a *promptAgent) renderPrompt(bp *blueprint.Blueprint) string {
	bpJSON, err := bp.MarshalIndent()
	if err != nil {
		bpJSON = []byte("{}")
	}
	return strings.ReplaceAll(a.prompt, "{blueprint}", string(bpJSON))
}

func (a *promptAgent) generate(ctx context.Context, prompt string) (string, error) {
	if err := errors.CheckContext(ctx, a.name); err != nil {
		return "", err
	}

	opts := []core.GenerateOption{}
	if a.maxTokens > 0 {
		opts = append(opts, core.WithMaxTokens(a.maxTokens))
	}
	if a.temperature > 0 {
		opts = append(opts, core.WithTemperature(a.temperature))
	}

	resp, err := a.llm.Generate(ctx, prompt, opts...)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", errors.New(errors.InvalidResponse, "model returned empty output")
	}
	return resp.Content, nil
}
