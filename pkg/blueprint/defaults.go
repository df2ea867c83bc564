package blueprint

import (
	"regexp"
	"strings"
)

var packageNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9]`)

// DerivePackageName builds a Java-style package name from a project name.
// Non-alphanumeric characters are stripped so the result is a valid
// package segment.
func DerivePackageName(projectName string) string {
	cleaned := packageNameSanitizer.ReplaceAllString(strings.ToLower(projectName), "")
	if cleaned == "" {
		cleaned = "project"
	}
	return "com.generated." + cleaned
}

// NewInitial builds the pre-analysis blueprint for a project. The analyst
// agent refines it later; until then the type-appropriate default stack and
// feature set stand in.
func NewInitial(projectName, projectType, description string) *Blueprint {
	return &Blueprint{
		ProjectInfo: &ProjectInfo{
			Name:        projectName,
			Description: description,
			Version:     "1.0.0",
			PackageName: DerivePackageName(projectName),
		},
		TechnologyStack: DefaultTechnologyStack(projectType),
		Features:        DefaultFeatures(projectType),
	}
}

// DefaultTechnologyStack returns the stack used when the PRD does not pin
// one down. The backend is always Spring Boot; frontend, database, and build
// tool vary by project type.
func DefaultTechnologyStack(projectType string) *TechnologyStack {
	stack := &TechnologyStack{
		Backend: &Backend{
			Framework: "Spring Boot",
			Version:   "3.2.0",
			Language:  "Java",
			Runtime:   "JDK 17",
		},
	}

	switch strings.ToLower(projectType) {
	case "web-application":
		stack.Frontend = &Frontend{
			Framework:   "React",
			Version:     "18.0",
			UILibraries: []string{"Material-UI", "Axios"},
		}
		stack.Database = &Database{Type: "PostgreSQL", Version: "15.0"}
		stack.BuildTool = "Maven"
	case "microservice":
		stack.Frontend = &Frontend{Framework: "React", Version: "18.0"}
		stack.Database = &Database{Type: "MongoDB", Version: "7.0"}
		stack.BuildTool = "Maven"
	case "mobile-app":
		stack.Frontend = &Frontend{Framework: "React Native", Version: "0.72"}
		stack.Database = &Database{Type: "Firebase", Version: "10.0"}
		stack.BuildTool = "Gradle"
	default:
		stack.Frontend = &Frontend{
			Framework:   "Angular",
			Version:     "17.0",
			UILibraries: []string{"Angular Material"},
		}
		stack.Database = &Database{Type: "H2", Version: "2.2"}
		stack.BuildTool = "Maven"
	}

	return stack
}

// DefaultFeatures returns the baseline feature set for a project type.
func DefaultFeatures(projectType string) []Feature {
	features := []Feature{
		{
			ID:          "user-mgmt",
			Name:        "User Management",
			Description: "User registration, login, and profile management",
			Priority:    "HIGH",
			UserStories: []string{
				"As a user, I want to register with email and password",
				"As a user, I want to login to access my account",
				"As a user, I want to update my profile information",
			},
		},
		{
			ID:          "dashboard",
			Name:        "Dashboard",
			Description: "Main application dashboard with key metrics",
			Priority:    "MEDIUM",
			UserStories: []string{
				"As a user, I want to see an overview of my data",
				"As a user, I want to view key metrics and statistics",
			},
		},
	}

	switch strings.ToLower(projectType) {
	case "web-application":
		features = append(features, Feature{
			ID:          "crud-ops",
			Name:        "CRUD Operations",
			Description: "Create, Read, Update, Delete operations for main entities",
			Priority:    "HIGH",
			UserStories: []string{
				"As a user, I want to create new records",
				"As a user, I want to view existing records",
				"As a user, I want to update record information",
				"As a user, I want to delete unwanted records",
			},
		})
	case "microservice":
		features = append(features, Feature{
			ID:          "api-gateway",
			Name:        "API Gateway",
			Description: "Centralized API gateway for microservice communication",
			Priority:    "HIGH",
			UserStories: []string{
				"As a system, I want to route requests to appropriate services",
				"As a system, I want to handle authentication centrally",
			},
		})
	}

	return features
}
