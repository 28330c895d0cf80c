// Package handlers implements the business logic for CLI commands.
//
// Each handler loads the configuration, builds its collaborators through
// the factory variables in this package and runs one operation. Tests
// replace the factories to avoid touching real cloud or chat APIs.
package handlers
