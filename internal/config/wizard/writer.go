package wizard

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imamik/dropletd/internal/config"
)

// WriteConfig writes cfg to outputPath as YAML with a descriptive header.
// An existing file is only replaced when overwrite is set.
func WriteConfig(cfg *config.Config, outputPath string, overwrite bool) error {
	if !overwrite {
		_, err := os.Stat(outputPath)
		if err == nil {
			return errConfigExists
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to check %s: %w", outputPath, err)
		}
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(cfg))
	sb.WriteString("\n")
	sb.Write(yamlBytes)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func generateHeader(cfg *config.Config) string {
	var sb strings.Builder
	sb.WriteString("# dropletd configuration\n")
	sb.WriteString(fmt.Sprintf("# Generated: %s\n", time.Now().UTC().Format(time.RFC3339)))
	sb.WriteString("#\n")
	sb.WriteString(fmt.Sprintf("# The cloud API token is read from $%s.\n", cfg.Cloud.TokenEnv))
	sb.WriteString(fmt.Sprintf("# The chat bot token is read from $%s.\n", cfg.Bot.TokenEnv))
	return sb.String()
}
