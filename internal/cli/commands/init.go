package commands

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

//go:embed templates/*
var templatesFS embed.FS

var (
	initInteractive bool
	initSource      string
	initTracked     []string
)

// validateProjectName validates project name with security checks
func validateProjectName(name string) error {
	name = strings.TrimSpace(name)

	// Check length
	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}

	// Check for absolute paths
	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}

	// Only allow alphanumeric, dash, and underscore
	// This regex already prevents dots (including ".."), so no additional check needed
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, name)
	if !matched {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}

	return nil
}

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [project-name]",
		Short: "Create a new unknot project",
		Long: `Create a new unknot project with directory structure and a sample
declaration file.

If no project name is provided, you will be prompted to enter one.

Examples:
  unknot init my-decls
  unknot init my-decls --tracked Evaluate,Clone
  unknot init --interactive`,
		RunE: runInit,
	}

	cmd.Flags().BoolVarP(&initInteractive, "interactive", "i", false, "Interactive project setup with prompts")
	cmd.Flags().StringVar(&initSource, "source", "knot", "Source directory name")
	cmd.Flags().StringSliceVar(&initTracked, "tracked", nil, "Capabilities to track (default: track declarations in source)")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	var projectName string

	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)
	promptColor := color.New(color.FgYellow)

	// Get project name from args or prompt
	if len(args) > 0 {
		projectName = args[0]
	}

	sourceDir := initSource
	tracked := initTracked

	// Interactive mode
	if initInteractive || projectName == "" {
		questions := []*survey.Question{
			{
				Name: "projectName",
				Prompt: &survey.Input{
					Message: "Project name:",
					Default: projectName,
				},
				Validate: survey.Required,
			},
			{
				Name: "sourceDir",
				Prompt: &survey.Input{
					Message: "Source directory:",
					Default: sourceDir,
				},
			},
			{
				Name: "tracked",
				Prompt: &survey.Input{
					Message: "Tracked capabilities (comma-separated, optional):",
					Default: strings.Join(tracked, ","),
					Help:    "Leave empty to honor the track declarations in source",
				},
			},
		}

		answers := struct {
			ProjectName string
			SourceDir   string
			Tracked     string
		}{}

		if err := survey.Ask(questions, &answers); err != nil {
			return err
		}

		projectName = answers.ProjectName
		sourceDir = answers.SourceDir
		tracked = splitTracked(answers.Tracked)
	}

	// Validate project name with security checks
	if err := validateProjectName(projectName); err != nil {
		return err
	}
	if sourceDir == "" {
		sourceDir = "knot"
	}

	// Create project directory
	projectPath := filepath.Join(".", projectName)
	if _, err := os.Stat(projectPath); err == nil {
		return fmt.Errorf("directory %s already exists", projectName)
	}

	infoColor.Printf("Creating project: %s\n\n", projectName)

	// Create directory structure
	dirs := []string{
		projectPath,
		filepath.Join(projectPath, sourceDir),
		filepath.Join(projectPath, "build"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// Template data
	data := map[string]interface{}{
		"ProjectName": projectName,
		"SourceDir":   sourceDir,
		"Tracked":     tracked,
	}

	// Create files from templates
	files := map[string]string{
		filepath.Join(sourceDir, "main.knot"): "templates/main.knot.tmpl",
		".gitignore":                          "templates/gitignore.tmpl",
		"unknot.yml":                          "templates/config.tmpl",
	}

	for destPath, tmplPath := range files {
		destFullPath := filepath.Join(projectPath, destPath)

		tmplContent, err := templatesFS.ReadFile(tmplPath)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", tmplPath, err)
		}

		tmpl, err := template.New(filepath.Base(tmplPath)).Parse(string(tmplContent))
		if err != nil {
			return fmt.Errorf("failed to parse template %s: %w", tmplPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("failed to execute template %s: %w", tmplPath, err)
		}

		if err := os.WriteFile(destFullPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to create file %s: %w", destFullPath, err)
		}

		infoColor.Printf("  ✓ Created %s\n", destPath)
	}

	// Create README
	readmePath := filepath.Join(projectPath, "README.md")
	readmeContent := fmt.Sprintf(`# %s

Knot declarations analyzed with unknot.

## Getting Started

1. Validate the declarations:
   `+"`"+`bash
   unknot check
   `+"`"+`

2. Rewrite obligation cycles in place:
   `+"`"+`bash
   unknot analyze --write
   `+"`"+`

3. Re-run the analysis on every change:
   `+"`"+`bash
   unknot watch
   `+"`"+`

## Project Structure

- `+"`%s/`"+` - knot declaration files (`+"`.knot`"+`)
- `+"`build/`"+` - rewritten output (when configured)
- `+"`unknot.yml`"+` - project configuration

## Documentation

Learn more at https://unknot.dev/docs
`, projectName, sourceDir)

	if err := os.WriteFile(readmePath, []byte(readmeContent), 0644); err != nil {
		return fmt.Errorf("failed to create README: %w", err)
	}

	infoColor.Println("  ✓ Created README.md")

	// Print success message
	fmt.Println()
	successColor.Printf("✓ Created project: %s\n\n", projectName)

	promptColor.Println("Get started:")
	fmt.Printf("  cd %s\n", projectName)
	fmt.Println("  unknot check")
	fmt.Println("  unknot analyze --write")
	fmt.Println()

	return nil
}

// splitTracked parses a comma-separated capability list, dropping empties
func splitTracked(raw string) []string {
	var tracked []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			tracked = append(tracked, name)
		}
	}
	return tracked
}
