package prd

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/projectforge/aipg/pkg/agents"
	"github.com/projectforge/aipg/pkg/blueprint"
	"github.com/projectforge/aipg/pkg/logging"
)

// Outcome is the result of PRD processing. When the analyst's reply cannot
// be decoded the processor falls back to keyword extraction; the fallback is
// recorded here so callers can surface it instead of passing degraded output
// off as an analysis.
type Outcome struct {
	Blueprint      *blueprint.Blueprint
	UsedFallback   bool
	FallbackReason string
}

// Processor runs the analyst agent over PRD text and owns the fallback
// policy when analysis fails.
type Processor struct {
	analyst  *agents.AnalystAgent
	maxBytes int64
}

// NewProcessor builds a Processor. maxBytes <= 0 selects DefaultMaxBytes.
func NewProcessor(analyst *agents.AnalystAgent, maxBytes int64) *Processor {
	return &Processor{analyst: analyst, maxBytes: maxBytes}
}

// MaxBytes reports the upload size cap the processor enforces.
func (p *Processor) MaxBytes() int64 {
	if p.maxBytes <= 0 {
		return DefaultMaxBytes
	}
	return p.maxBytes
}

// Process extracts PRD text and produces a blueprint for it.
func (p *Processor) Process(ctx context.Context, filename string, data []byte, projectName string) (*Outcome, error) {
	logger := logging.GetLogger()

	content, err := ExtractText(filename, data, p.maxBytes)
	if err != nil {
		return nil, err
	}

	initial := initialBlueprint(projectName)
	refined, err := p.analyst.Analyze(ctx, content, initial)
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, err
		}
		logger.Warn(ctx, "PRD analysis failed, falling back to keyword extraction: %v", err)
		return &Outcome{
			Blueprint:      enhanceBlueprint(initial, content),
			UsedFallback:   true,
			FallbackReason: err.Error(),
		}, nil
	}

	logger.Info(ctx, "PRD processed into blueprint for project %q", refined.Name())
	return &Outcome{Blueprint: refined}, nil
}

// initialBlueprint is the pre-analysis starting point for PRD uploads. The
// stack is the service's standard target, Angular over Spring Boot with
// PostgreSQL.
func initialBlueprint(projectName string) *blueprint.Blueprint {
	if strings.TrimSpace(projectName) == "" {
		projectName = "Generated Project"
	}

	bp := blueprint.NewInitial(projectName, "", "Project generated from PRD")
	bp.TechnologyStack.Database = &blueprint.Database{Type: "PostgreSQL", Version: "15.0"}
	bp.Features = nil
	return bp
}

var projectNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Project Name:\s*(.+)`),
	regexp.MustCompile(`(?i)Application:\s*(.+)`),
	regexp.MustCompile(`(?i)System:\s*(.+)`),
	regexp.MustCompile(`(?i)Product:\s*(.+)`),
}

var featureKeywords = []string{"feature", "functionality", "requirement", "capability", "module"}

// enhanceBlueprint applies keyword-level PRD analysis when the model's reply
// was unusable.
func enhanceBlueprint(bp *blueprint.Blueprint, content string) *blueprint.Blueprint {
	if name := extractProjectName(content); name != "" {
		bp.ProjectInfo.Name = name
		bp.ProjectInfo.PackageName = blueprint.DerivePackageName(name)
	}
	bp.Features = extractFeatures(content)
	return bp
}

func extractProjectName(content string) string {
	for _, pattern := range projectNamePatterns {
		if m := pattern.FindStringSubmatch(content); m != nil {
			return strings.TrimSpace(m[1])
		}
	}

	// A short first line reads as a title.
	lines := strings.Split(content, "\n")
	if len(lines) > 0 {
		first := strings.TrimSpace(lines[0])
		if first != "" && len(first) < 100 && !strings.HasPrefix(strings.ToLower(first), "prd") {
			return first
		}
	}
	return "Generated Project"
}

func extractFeatures(content string) []blueprint.Feature {
	var features []blueprint.Feature

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		for _, keyword := range featureKeywords {
			if strings.Contains(lower, keyword) && len(trimmed) < 150 {
				features = append(features, blueprint.Feature{
					ID:          fmt.Sprintf("feature-%d", len(features)+1),
					Name:        trimmed,
					Description: "Feature extracted from PRD",
					Priority:    "MEDIUM",
					UserStories: []string{"As a user, I want to use this feature"},
				})
				break
			}
		}
	}

	if len(features) == 0 {
		features = append(features, blueprint.Feature{
			ID:          "core-functionality",
			Name:        "Core Functionality",
			Description: "Core application functionality based on PRD",
			Priority:    "HIGH",
			UserStories: []string{"As a user, I want to access core functionality"},
		})
	}
	return features
}
