// Package blueprint defines the JSON contract shared by the PRD analyst and
// the code generation agents, plus the tolerant decoding needed to pull that
// JSON out of raw LLM output.
package blueprint

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/projectforge/aipg/pkg/errors"
)

// Blueprint is the structured description of the project to generate. It is
// the communication format between agents: the analyst produces it, the code
// generators consume it.
type Blueprint struct {
	ProjectInfo        *ProjectInfo         `json:"project_info" validate:"required"`
	TechnologyStack    *TechnologyStack     `json:"technology_stack,omitempty"`
	Features           []Feature            `json:"features,omitempty" validate:"dive"`
	DatabaseSchema     *DatabaseSchema      `json:"database_schema,omitempty"`
	APIEndpoints       []APIEndpoint        `json:"api_endpoints,omitempty" validate:"dive"`
	FrontendComponents []FrontendComponent  `json:"frontend_components,omitempty"`
	BusinessLogic      []BusinessRule       `json:"business_logic,omitempty"`
	Authentication     *AuthenticationConfig `json:"authentication,omitempty"`
	Deployment         *DeploymentConfig    `json:"deployment,omitempty"`
	Testing            *TestingConfig       `json:"testing_requirements,omitempty"`
}

type ProjectInfo struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description,omitempty"`
	Version     string            `json:"version,omitempty"`
	PackageName string            `json:"package_name,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type TechnologyStack struct {
	Frontend  *Frontend `json:"frontend,omitempty"`
	Backend   *Backend  `json:"backend,omitempty"`
	Database  *Database `json:"database,omitempty"`
	BuildTool string    `json:"build_tool,omitempty"`
}

type Frontend struct {
	Framework   string   `json:"framework,omitempty"`
	Version     string   `json:"version,omitempty"`
	UILibraries []string `json:"ui_libraries,omitempty"`
}

type Backend struct {
	Framework string `json:"framework,omitempty"`
	Version   string `json:"version,omitempty"`
	Language  string `json:"language,omitempty"`
	Runtime   string `json:"runtime,omitempty"`
}

type Database struct {
	Type       string   `json:"type,omitempty"`
	Version    string   `json:"version,omitempty"`
	Additional []string `json:"additional,omitempty"`
}

type Feature struct {
	ID                 string                 `json:"id,omitempty"`
	Name               string                 `json:"name" validate:"required"`
	Description        string                 `json:"description,omitempty"`
	Priority           string                 `json:"priority,omitempty" validate:"omitempty,oneof=HIGH MEDIUM LOW"`
	UserStories        []string               `json:"user_stories,omitempty"`
	AcceptanceCriteria []string               `json:"acceptance_criteria,omitempty"`
	Requirements       map[string]interface{} `json:"requirements,omitempty"`
}

type APIEndpoint struct {
	Path        string      `json:"path" validate:"required"`
	Method      string      `json:"method,omitempty" validate:"omitempty,oneof=GET POST PUT PATCH DELETE"`
	Description string      `json:"description,omitempty"`
	Parameters  []Parameter `json:"parameters,omitempty"`
	Security    []string    `json:"security,omitempty"`
}

type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Location    string `json:"location,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Description string `json:"description,omitempty"`
}

type DatabaseSchema struct {
	Entities      []Entity       `json:"entities,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

type Entity struct {
	Name      string   `json:"name"`
	TableName string   `json:"table_name,omitempty"`
	Fields    []Field  `json:"fields,omitempty"`
	Indexes   []string `json:"indexes,omitempty"`
}

type Field struct {
	Name         string                 `json:"name"`
	Type         string                 `json:"type,omitempty"`
	Nullable     bool                   `json:"nullable,omitempty"`
	PrimaryKey   bool                   `json:"primary_key,omitempty"`
	DefaultValue string                 `json:"default_value,omitempty"`
	Constraints  map[string]interface{} `json:"constraints,omitempty"`
}

type Relationship struct {
	Type       string `json:"type,omitempty"`
	FromEntity string `json:"from_entity,omitempty"`
	ToEntity   string `json:"to_entity,omitempty"`
	FromField  string `json:"from_field,omitempty"`
	ToField    string `json:"to_field,omitempty"`
}

type FrontendComponent struct {
	Name         string                 `json:"name"`
	Type         string                 `json:"type,omitempty"`
	Path         string                 `json:"path,omitempty"`
	Template     string                 `json:"template,omitempty"`
	Dependencies []string               `json:"dependencies,omitempty"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
	Methods      []string               `json:"methods,omitempty"`
	Routes       []string               `json:"routes,omitempty"`
}

type BusinessRule struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Condition    string   `json:"condition,omitempty"`
	Action       string   `json:"action,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
}

type AuthenticationConfig struct {
	Type        string            `json:"type,omitempty"`
	Provider    string            `json:"provider,omitempty"`
	Settings    map[string]string `json:"settings,omitempty"`
	Roles       []string          `json:"roles,omitempty"`
	Permissions []string          `json:"permissions,omitempty"`
}

type DeploymentConfig struct {
	Type        string            `json:"type,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Docker      *DockerConfig     `json:"docker,omitempty"`
}

type DockerConfig struct {
	BaseImage   string            `json:"base_image,omitempty"`
	Ports       []string          `json:"ports,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
	Volumes     []string          `json:"volumes,omitempty"`
}

type TestingConfig struct {
	Types     []string               `json:"types,omitempty"`
	Framework string                 `json:"framework,omitempty"`
	TestCases []string               `json:"test_cases,omitempty"`
	Coverage  map[string]interface{} `json:"coverage,omitempty"`
}

var validate = validator.New()

// Validate checks structural invariants on a decoded blueprint.
func (b *Blueprint) Validate() error {
	if err := validate.Struct(b); err != nil {
		return errors.Wrap(err, errors.BlueprintInvalid, "blueprint failed validation")
	}
	return nil
}

// Name returns the project name, or a placeholder when project info is
// missing entirely.
func (b *Blueprint) Name() string {
	if b.ProjectInfo == nil || strings.TrimSpace(b.ProjectInfo.Name) == "" {
		return "Generated Project"
	}
	return b.ProjectInfo.Name
}
