package blueprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectforge/aipg/pkg/errors"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "markdown fenced",
			input: "```json\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "prose around the object",
			input: "Here is the blueprint you asked for:\n{\"a\": 1}\nLet me know if you need changes.",
			want:  `{"a": 1}`,
		},
		{
			name:  "nested braces keep the outermost span",
			input: `intro {"outer": {"inner": 2}} trailing`,
			want:  `{"outer": {"inner": 2}}`,
		},
		{
			name:    "no object at all",
			input:   "I could not produce a blueprint.",
			wantErr: true,
		},
		{
			name:    "empty output",
			input:   "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.InvalidResponse, errors.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse(t *testing.T) {
	raw := "```json\n" + `{
		"project_info": {"name": "Task Tracker", "version": "1.0.0", "package_name": "com.generated.tasktracker"},
		"technology_stack": {
			"backend": {"framework": "Spring Boot", "version": "3.2.0", "language": "Java"},
			"frontend": {"framework": "Angular", "version": "17.0", "ui_libraries": ["Angular Material"]},
			"database": {"type": "H2", "version": "2.2"},
			"build_tool": "Maven"
		},
		"features": [
			{"name": "Task CRUD", "priority": "HIGH", "user_stories": ["As a user, I want to add tasks"]}
		],
		"api_endpoints": [
			{"path": "/api/tasks", "method": "GET", "description": "List tasks"}
		],
		"database_schema": {
			"entities": [
				{"name": "Task", "table_name": "tasks", "fields": [
					{"name": "id", "type": "BIGINT", "primary_key": true}
				]}
			]
		}
	}` + "\n```"

	bp, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "Task Tracker", bp.ProjectInfo.Name)
	assert.Equal(t, "Maven", bp.TechnologyStack.BuildTool)
	assert.Equal(t, []string{"Angular Material"}, bp.TechnologyStack.Frontend.UILibraries)
	require.Len(t, bp.Features, 1)
	assert.Equal(t, "HIGH", bp.Features[0].Priority)
	require.Len(t, bp.DatabaseSchema.Entities, 1)
	assert.Equal(t, "tasks", bp.DatabaseSchema.Entities[0].TableName)
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := Parse(`{"project_info": {"name": "x",}`)
	require.Error(t, err)
	assert.Equal(t, errors.BlueprintInvalid, errors.Code(err))
}

func TestParseRejectsMissingProjectInfo(t *testing.T) {
	_, err := Parse(`{"features": []}`)
	require.Error(t, err)
	assert.Equal(t, errors.BlueprintInvalid, errors.Code(err))
}

func TestParseRejectsBadPriority(t *testing.T) {
	_, err := Parse(`{"project_info": {"name": "x"}, "features": [{"name": "f", "priority": "URGENT"}]}`)
	require.Error(t, err)
	assert.Equal(t, errors.BlueprintInvalid, errors.Code(err))
}

func TestParseFileMap(t *testing.T) {
	raw := "```json\n{\"files\": {\"src/main.ts\": \"console.log('hi')\", \"package.json\": \"{}\"}}\n```"
	files, err := ParseFileMap(raw)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Equal(t, "console.log('hi')", files["src/main.ts"])

	_, err = ParseFileMap(`{"files": {}}`)
	require.Error(t, err)

	_, err = ParseFileMap(`{"notfiles": true}`)
	require.Error(t, err)
}

func TestDerivePackageName(t *testing.T) {
	assert.Equal(t, "com.generated.tasktracker", DerivePackageName("Task Tracker"))
	assert.Equal(t, "com.generated.shop2go", DerivePackageName("Shop-2-Go!"))
	assert.Equal(t, "com.generated.project", DerivePackageName("***"))
}

func TestNewInitial(t *testing.T) {
	tests := []struct {
		projectType  string
		frontend     string
		database     string
		buildTool    string
		featureCount int
	}{
		{"web-application", "React", "PostgreSQL", "Maven", 3},
		{"microservice", "React", "MongoDB", "Maven", 3},
		{"mobile-app", "React Native", "Firebase", "Gradle", 2},
		{"desktop", "Angular", "H2", "Maven", 2},
	}

	for _, tt := range tests {
		t.Run(tt.projectType, func(t *testing.T) {
			bp := NewInitial("Demo App", tt.projectType, "a demo")
			require.NoError(t, bp.Validate())

			assert.Equal(t, "com.generated.demoapp", bp.ProjectInfo.PackageName)
			assert.Equal(t, "1.0.0", bp.ProjectInfo.Version)
			assert.Equal(t, "Spring Boot", bp.TechnologyStack.Backend.Framework)
			assert.Equal(t, tt.frontend, bp.TechnologyStack.Frontend.Framework)
			assert.Equal(t, tt.database, bp.TechnologyStack.Database.Type)
			assert.Equal(t, tt.buildTool, bp.TechnologyStack.BuildTool)
			assert.Len(t, bp.Features, tt.featureCount)
		})
	}
}

func TestBlueprintName(t *testing.T) {
	bp := &Blueprint{}
	assert.Equal(t, "Generated Project", bp.Name())

	bp.ProjectInfo = &ProjectInfo{Name: "Inventory"}
	assert.Equal(t, "Inventory", bp.Name())
}
