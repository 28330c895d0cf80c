// Package wizard provides the interactive configuration wizard behind
// dropletd init.
//
// It uses charmbracelet/huh for form-based input collection. RunWizard
// collects a Result, BuildConfig turns it into a defaulted and validated
// config.Config, and WriteConfig writes the YAML file.
package wizard
