package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/dropletd/internal/config"
	"github.com/imamik/dropletd/internal/config/wizard"
)

// Function variable for dependency injection in tests.
var runWizard = wizard.RunWizard

// InitOptions configures the init command.
type InitOptions struct {
	Advanced bool
	Force    bool
}

// Init handles the init command.
//
// It runs the interactive wizard and writes the answers to the config
// path. An existing file is kept unless Force is set.
func Init(ctx context.Context, opts GlobalOptions, initOpts InitOptions) error {
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultConfigPath()
	}

	result, err := runWizard(ctx, initOpts.Advanced)
	if err != nil {
		return fmt.Errorf("wizard cancelled: %w", err)
	}

	cfg, err := wizard.BuildConfig(result)
	if err != nil {
		return fmt.Errorf("invalid answers: %w", err)
	}

	if err := wizard.WriteConfig(cfg, path, initOpts.Force); err != nil {
		return err
	}

	out := opts.out()
	fmt.Fprintf(out, "%s wrote %s\n", okStyle.Render("✓"), path)
	fmt.Fprint(out, progressStyle.Render(fmt.Sprintf("  export %s and %s, then run dropletd run", cfg.Cloud.TokenEnv, cfg.Bot.TokenEnv)))
	fmt.Fprintln(out)
	return nil
}
