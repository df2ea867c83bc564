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

const prdAnalysisPrompt = `You are an expert software architect and business analyst. Analyze the PRD and create a comprehensive JSON blueprint.

PRD Content: {prdContent}
Current Blueprint: {blueprint}

CRITICAL REQUIREMENTS:
1. Return ONLY a valid JSON object matching the blueprint structure EXACTLY
2. Extract REAL, SPECIFIC requirements from the PRD - not generic examples
3. Create comprehensive project structure based on actual PRD content

Required JSON Structure:
{
  "project_info": {
    "name": "extracted from PRD",
    "description": "based on PRD",
    "version": "1.0.0",
    "package_name": "com.extracted.projectname"
  },
  "technology_stack": {
    "backend": {"framework": "Spring Boot", "version": "3.2.0", "language": "Java", "runtime": "JDK 17"},
    "frontend": {"framework": "Angular", "version": "17.0.0", "ui_libraries": ["Angular Material"]},
    "database": {"type": "PostgreSQL", "version": "15.0", "additional": ["Connection Pooling"]},
    "build_tool": "Maven"
  },
  "features": [
    {"id": "extracted-feature-1", "name": "Feature Name from PRD", "description": "Detailed description from PRD", "priority": "HIGH/MEDIUM/LOW", "user_stories": ["Story 1 from PRD", "Story 2 from PRD"]}
  ],
  "api_endpoints": [
    {"path": "/api/feature-endpoint", "method": "GET/POST/PUT/DELETE", "description": "Purpose from PRD"}
  ],
  "database_schema": {
    "entities": [
      {"name": "EntityName", "table_name": "entity_table", "fields": [{"name": "field_name", "type": "VARCHAR(255)", "nullable": false, "primary_key": true}]}
    ]
  }
}

EXTRACT FROM PRD:
- Project name and purpose
- Core business entities and their attributes
- User workflows and features
- API requirements
- Data relationships
- Business rules

RETURN ONLY THE COMPLETE JSON - NO EXPLANATIONS OR MARKDOWN`

// AnalystAgent turns PRD text into a structured blueprint. It runs before
// every other agent; during orchestration without PRD content it refines the
// current blueprint from its own description fields.
type AnalystAgent struct {
	promptAgent
}

// NewAnalystAgent builds the blueprint analysis agent.
func NewAnalystAgent(llm core.LLM) *AnalystAgent {
	return &AnalystAgent{promptAgent{
		llm:         llm,
		name:        "PRD-Analyst",
		description: "Analyzes PRD documents and creates structured project blueprints",
		priority:    1,
		prompt:      prdAnalysisPrompt,
	}}
}

func (a *AnalystAgent) Execute(ctx context.Context, bp *blueprint.Blueprint) Result {
	start := time.Now()

	content := ""
	if bp.ProjectInfo != nil {
		content = bp.ProjectInfo.Description
	}
	refined, err := a.Analyze(ctx, content, bp)
	elapsed := time.Since(start)
	if err != nil {
		return failureResult(a.name, "PRD analysis failed: "+err.Error(), elapsed)
	}

	out, merr := refined.MarshalIndent()
	if merr != nil {
		return failureResult(a.name, "PRD analysis failed: "+merr.Error(), elapsed)
	}
	return successResult(a.name, "PRD analysis completed successfully", string(out), elapsed)
}

// Analyze runs the analysis prompt against actual PRD content and returns the
// decoded blueprint. The caller owns fallback policy when decoding fails.
func (a *AnalystAgent) Analyze(ctx context.Context, prdContent string, current *blueprint.Blueprint) (*blueprint.Blueprint, error) {
	logger := logging.GetLogger()
	logger.Info(ctx, "PRD-Analyst starting analysis")

	currentJSON := []byte("{}")
	if current != nil {
		if data, err := current.MarshalIndent(); err == nil {
			currentJSON = data
		}
	}

	prompt := strings.ReplaceAll(prdAnalysisPrompt, "{prdContent}", prdContent)
	prompt = strings.ReplaceAll(prompt, "{blueprint}", string(currentJSON))

	raw, err := a.generate(ctx, prompt)
	if err != nil {
		return nil, errors.Wrap(err, errors.AgentExecutionFailed, "PRD analysis failed")
	}

	refined, err := blueprint.Parse(raw)
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "PRD-Analyst completed analysis for project %q", refined.Name())
	return refined, nil
}
