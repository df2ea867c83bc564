// Package generator turns agent outputs into downloadable project archives.
package generator

import (
	"context"
	"regexp"
	"strings"

	"github.com/projectforge/aipg/pkg/agents"
	"github.com/projectforge/aipg/pkg/blueprint"
	"github.com/projectforge/aipg/pkg/logging"
)

// FileTrees holds the categorized output of a generation run, file path to
// content per tree.
type FileTrees struct {
	Backend  map[string]string
	Frontend map[string]string
}

var docNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Categorize routes each successful agent result into the backend and
// frontend trees. Structured {"files": ...} replies are decoded with a real
// JSON decoder; replies that fail to decode fall through to agent-specific
// scaffolds so the archive is never silently missing a tree.
func Categorize(ctx context.Context, results []agents.Result, bp *blueprint.Blueprint) *FileTrees {
	logger := logging.GetLogger()
	trees := &FileTrees{
		Backend:  make(map[string]string),
		Frontend: make(map[string]string),
	}

	for _, result := range results {
		if !result.Success || strings.TrimSpace(result.Output) == "" {
			logger.Warn(ctx, "agent %s failed or returned empty output, skipping file generation: %s",
				result.AgentName, result.Message)
			continue
		}
		categorizeResult(ctx, result, bp, trees)
	}

	// Setup docs ship with every archive.
	if len(trees.Backend) > 0 {
		trees.Backend["BACKEND_SETUP.md"] = backendSetupDoc
	}
	if len(trees.Frontend) > 0 {
		trees.Frontend["FRONTEND_SETUP.md"] = frontendSetupDoc
	}

	logger.Info(ctx, "file categorization completed, backend files: %d, frontend files: %d",
		len(trees.Backend), len(trees.Frontend))
	return trees
}

func categorizeResult(ctx context.Context, result agents.Result, bp *blueprint.Blueprint, trees *FileTrees) {
	logger := logging.GetLogger()
	name := result.AgentName

	if files, err := blueprint.ParseFileMap(result.Output); err == nil {
		switch {
		case strings.Contains(name, "Backend") || strings.Contains(name, "Database"):
			mergeFiles(trees.Backend, files)
		case strings.Contains(name, "Frontend"):
			mergeFiles(trees.Frontend, files)
		default:
			mergeFiles(trees.Backend, files)
			mergeFiles(trees.Frontend, files)
		}
		logger.Debug(ctx, "agent %s produced %d structured files", name, len(files))
		return
	}

	logger.Warn(ctx, "agent %s output is not a structured file map, using fallback scaffold", name)

	switch {
	case strings.Contains(name, "Backend-Code-Generator"):
		trees.Backend["generated-backend-output.txt"] = result.Output
		packageName := packageNameOf(bp)
		basePath := "src/main/java/" + strings.ReplaceAll(packageName, ".", "/")
		trees.Backend[basePath+"/Application.java"] = basicSpringBootApp(packageName)
		trees.Backend["src/main/resources/application.properties"] = basicApplicationProperties
		trees.Backend["pom.xml"] = basicPomXML
	case strings.Contains(name, "Frontend-Code-Generator"):
		trees.Frontend["generated-frontend-output.txt"] = result.Output
		trees.Frontend["src/app/app.component.ts"] = basicAngularComponent
		trees.Frontend["src/app/app.component.html"] = basicAngularTemplate
		trees.Frontend["src/main.ts"] = basicAngularMain
		trees.Frontend["package.json"] = basicPackageJSON
	case strings.Contains(name, "Database-Agent"):
		trees.Backend["docs/database-design.md"] = result.Output
	case strings.Contains(name, "DevOps-Configuration"):
		trees.Backend["Dockerfile"] = basicBackendDockerfile
		trees.Frontend["Dockerfile"] = basicFrontendDockerfile
		trees.Backend["docker-compose.yml"] = basicDockerCompose
	case strings.Contains(name, "QA-Testing-Generator"):
		trees.Backend["docs/testing-strategy.md"] = result.Output
		trees.Frontend["docs/testing-strategy.md"] = result.Output
	case strings.Contains(name, "Integration-Assembly"):
		trees.Backend["README.md"] = basicReadme
		trees.Frontend["README.md"] = basicReadme
	default:
		trees.Backend["docs/"+docNameSanitizer.ReplaceAllString(name, "-")+".md"] = result.Output
	}
}

func mergeFiles(target, files map[string]string) {
	for path, content := range files {
		target[path] = content
	}
}

func packageNameOf(bp *blueprint.Blueprint) string {
	if bp != nil && bp.ProjectInfo != nil && strings.TrimSpace(bp.ProjectInfo.PackageName) != "" {
		return bp.ProjectInfo.PackageName
	}
	return "com.generated.app"
}
