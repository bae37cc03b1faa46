// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError      = "error"
	FieldPath       = "path"
	FieldPaths      = "paths"
	FieldWorkingDir = "working_dir"
	FieldDuration   = "duration"

	// Configuration fields.
	FieldMode   = "mode"
	FieldConfig = "config"
	FieldJobs   = "jobs"

	// Pipeline fields.
	FieldSketch   = "sketch"
	FieldPass     = "pass"
	FieldTab      = "tab"
	FieldState    = "state"
	FieldProblems = "problems"
	FieldErrors   = "errors"
	FieldWarnings = "warnings"
	FieldEvent    = "event"

	// Classpath fields.
	FieldGroup   = "group"
	FieldEntries = "entries"
	FieldLibrary = "library"
	FieldPackage = "package"

	// Statistics fields.
	FieldSketchesChecked    = "sketches_checked"
	FieldSketchesWithIssues = "sketches_with_issues"
	FieldProblemsTotal      = "problems_total"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
