package agents

import (
	"strings"

	"github.com/projectforge/aipg/pkg/blueprint"
	"github.com/projectforge/aipg/pkg/core"
)

const backendGenerationPrompt = `Generate a complete Spring Boot application. You MUST return ONLY a JSON object with "files" containing ALL files below.

Project Blueprint: {blueprint}

EXACT JSON FORMAT REQUIRED:
{
  "files": {
    "pom.xml": "complete pom.xml content",
    "src/main/java/com/generated/app/Application.java": "complete file content",
    "src/main/java/com/generated/app/entity/User.java": "complete file content",
    "src/main/java/com/generated/app/repository/UserRepository.java": "complete file content",
    "src/main/java/com/generated/app/service/UserService.java": "complete file content",
    "src/main/java/com/generated/app/controller/AuthController.java": "complete file content",
    "src/main/java/com/generated/app/controller/UserController.java": "complete file content",
    "src/main/java/com/generated/app/dto/UserDto.java": "complete file content",
    "src/main/java/com/generated/app/config/CorsConfig.java": "complete file content",
    "src/main/resources/application.properties": "complete file content"
  }
}

MANDATORY: Each file must be complete with all imports, annotations, and working code.
Use Spring Boot 3.x, JPA, validation, proper REST controllers with CRUD operations.
Derive entities, repositories, services, and controllers from the blueprint's database schema and features.
Include authentication endpoint: POST /api/auth/login

Return ONLY the JSON object - no explanations, no markdown blocks.`

const frontendGenerationPrompt = `Generate a complete Angular 17 application. You MUST return ONLY a JSON object with "files" containing ALL files below.

Project Blueprint: {blueprint}

EXACT JSON FORMAT REQUIRED:
{
  "files": {
    "package.json": "complete package.json with all dependencies",
    "angular.json": "complete Angular workspace configuration",
    "tsconfig.json": "complete TypeScript configuration",
    "src/index.html": "complete HTML file",
    "src/main.ts": "complete bootstrap file",
    "src/styles.css": "complete global styles",
    "src/app/app.component.ts": "complete root component",
    "src/app/app.routes.ts": "complete routing configuration",
    "src/app/services/auth.service.ts": "complete authentication service",
    "src/app/components/login/login.component.ts": "complete login component",
    "src/app/components/dashboard/dashboard.component.ts": "complete dashboard component"
  }
}

MANDATORY REQUIREMENTS:
- Use Angular 17 standalone components
- Include Angular Material for UI
- Implement reactive forms with validation
- Add HTTP interceptors for authentication
- Create complete CRUD operations for the blueprint's entities
- Add routing with guards
- Include proper error handling and loading states
- Make all code production-ready and compilable

Return ONLY the JSON object - no explanations, no markdown blocks.`

const databaseGenerationPrompt = `You are a database architect and SQL expert. Based on the project blueprint provided, generate complete database schema, migrations, and related database code.

Project Blueprint: {blueprint}

Return ONLY a JSON object with "files" mapping file paths to complete file content, covering:

1. DATABASE SCHEMA: SQL DDL for all tables with primary keys, foreign keys, indexes, constraints, and audit fields (created_at, updated_at).
2. MIGRATION SCRIPTS: Flyway migration files with proper versioning (V1__Initial_schema.sql, etc.) and data seeding for reference tables.
3. JPA ENTITIES: entity classes matching the schema with proper annotations and relationships.
4. REPOSITORY INTERFACES: Spring Data JPA repositories with derived and @Query methods, pagination and sorting support.

Requirements:
- Generate production-ready SQL following database naming conventions
- Use appropriate data types for the blueprint's database system
- Make the schema normalized, scalable, and maintainable

Return ONLY the JSON object - no explanations, no markdown blocks.`

const devopsGenerationPrompt = `You are a DevOps engineer and infrastructure expert. Based on the project blueprint provided, generate complete CI/CD pipelines, containerization, and deployment configurations.

Project Blueprint: {blueprint}

Return ONLY a JSON object with "files" mapping file paths (e.g., "Dockerfile", ".github/workflows/main.yml") to complete file content.

Requirements:
- Create Dockerfiles for backend and frontend applications.
- Create a docker-compose.yml for local development.
- Create GitHub Actions workflows for CI/CD.
- Use industry best practices for CI/CD, including security scanning.
- Make configurations cloud-agnostic where possible.

Return ONLY the JSON object - no explanations, no markdown blocks.`

const qaGenerationPrompt = `You are a QA engineer and test automation expert. Based on the project blueprint provided, generate comprehensive test suites, automation scripts, and quality assurance configurations.

Project Blueprint: {blueprint}

Return ONLY a JSON object with "files" mapping test file paths (e.g., "src/test/java/com/example/MyServiceTest.java") to complete test file content.

Requirements:
- Create JUnit 5 tests for all backend services and components.
- Create Angular unit tests with Jasmine/Karma for frontend components and services.
- Include both positive and negative test cases.
- Generate production-ready test code.

Return ONLY the JSON object - no explanations, no markdown blocks.`

const structuringPrompt = `You are an expert in project structure and file organization. Given the project blueprint, produce a JSON structure that maps file paths to content for any configuration or organizational files the other outputs still need.

Project Blueprint: {blueprint}

Return ONLY a JSON object with "files" mapping file paths to complete file content.

Requirements:
1. Ensure file paths follow conventions (src/main/java for Spring Boot, src/app for Angular)
2. Include missing configuration files (application.properties, package.json, pom.xml, .gitignore)
3. Include dependency lists and setup instructions for running the application
4. Handle both Maven and npm dependencies properly

Return ONLY the JSON object - no explanations, no markdown blocks.`

const integrationPrompt = `You are a system integration specialist and project architect. Based on the project blueprint and generated code components, create the final integration layer and project assembly.

Project Blueprint: {blueprint}

Return ONLY a JSON object with "files" mapping file paths to complete file content. This should include configuration files, build scripts, and integration components.

Requirements:
- Create complete directory structure for both frontend and backend.
- Add root-level configuration files (package.json, pom.xml, etc.).
- Include README files with setup and deployment instructions.
- Create application.properties/yml with all required configurations.
- Create API documentation (e.g., OpenAPI/Swagger specs).
- Ensure all components work together seamlessly.

Return ONLY the JSON object - no explanations, no markdown blocks.`

func hasBackendFramework(bp *blueprint.Blueprint, framework string) bool {
	return bp.TechnologyStack != nil &&
		bp.TechnologyStack.Backend != nil &&
		strings.EqualFold(bp.TechnologyStack.Backend.Framework, framework)
}

func hasFrontendFramework(bp *blueprint.Blueprint, framework string) bool {
	return bp.TechnologyStack != nil &&
		bp.TechnologyStack.Frontend != nil &&
		strings.EqualFold(bp.TechnologyStack.Frontend.Framework, framework)
}

// NewBackendAgent generates the Spring Boot backend tree.
func NewBackendAgent(llm core.LLM) Agent {
	return &promptAgent{
		llm:         llm,
		name:        "Backend-Code-Generator",
		description: "Generates complete Spring Boot backend code based on project blueprint",
		priority:    30,
		prompt:      backendGenerationPrompt,
		canProcess: func(bp *blueprint.Blueprint) bool {
			return hasBackendFramework(bp, "Spring Boot")
		},
	}
}

// NewFrontendAgent generates the Angular frontend tree.
func NewFrontendAgent(llm core.LLM) Agent {
	return &promptAgent{
		llm:         llm,
		name:        "Frontend-Code-Generator",
		description: "Generates complete Angular frontend code based on project blueprint",
		priority:    40,
		prompt:      frontendGenerationPrompt,
		canProcess: func(bp *blueprint.Blueprint) bool {
			return hasFrontendFramework(bp, "Angular")
		},
	}
}

// NewDatabaseAgent generates schema DDL, migrations, and JPA entities.
func NewDatabaseAgent(llm core.LLM) Agent {
	return &promptAgent{
		llm:         llm,
		name:        "Database-Agent",
		description: "Generates database schema, migrations, and JPA entities",
		priority:    20,
		prompt:      databaseGenerationPrompt,
		canProcess: func(bp *blueprint.Blueprint) bool {
			return bp.DatabaseSchema != nil && len(bp.DatabaseSchema.Entities) > 0
		},
	}
}

// NewDevOpsAgent generates Docker and CI/CD configuration.
func NewDevOpsAgent(llm core.LLM) Agent {
	return &promptAgent{
		llm:         llm,
		name:        "DevOps-Configuration",
		description: "Generates CI/CD pipelines, Docker configuration, and deployment scripts",
		priority:    60,
		prompt:      devopsGenerationPrompt,
		canProcess: func(bp *blueprint.Blueprint) bool {
			return bp.Deployment != nil ||
				(bp.TechnologyStack != nil && bp.TechnologyStack.Backend != nil)
		},
	}
}

// NewQAAgent generates test suites for both trees.
func NewQAAgent(llm core.LLM) Agent {
	return &promptAgent{
		llm:         llm,
		name:        "QA-Testing-Generator",
		description: "Generates comprehensive test suites, QA automation, and quality assurance configurations",
		priority:    70,
		prompt:      qaGenerationPrompt,
	}
}

// NewStructuringAgent fills in the organizational glue files.
func NewStructuringAgent(llm core.LLM) Agent {
	return &promptAgent{
		llm:         llm,
		name:        "Code-Structuring",
		description: "Structures and organizes generated code into proper file system layout",
		priority:    80,
		prompt:      structuringPrompt,
	}
}

// NewIntegrationAgent produces the final assembly files.
func NewIntegrationAgent(llm core.LLM) Agent {
	return &promptAgent{
		llm:         llm,
		name:        "Integration-Assembly",
		description: "Handles final project integration, configuration, and assembly",
		priority:    90,
		prompt:      integrationPrompt,
	}
}

// DefaultAgents returns the full generation agent set in registration order.
func DefaultAgents(llm core.LLM) []Agent {
	return []Agent{
		NewAnalystAgent(llm),
		NewDatabaseAgent(llm),
		NewBackendAgent(llm),
		NewFrontendAgent(llm),
		NewDevOpsAgent(llm),
		NewQAAgent(llm),
		NewStructuringAgent(llm),
		NewIntegrationAgent(llm),
	}
}
