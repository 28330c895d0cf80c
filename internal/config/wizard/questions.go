package wizard

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/imamik/dropletd/internal/config"
)

var tagRegex = regexp.MustCompile(`^[A-Za-z0-9:_-]{1,63}$`)

// ProviderOptions are the supported cloud providers.
var ProviderOptions = []huh.Option[string]{
	huh.NewOption("DigitalOcean", config.ProviderDigitalOcean),
	huh.NewOption("Hetzner Cloud", config.ProviderHetzner),
}

// RegionOptions lists a few common regions per provider.
var RegionOptions = map[string][]huh.Option[string]{
	config.ProviderDigitalOcean: {
		huh.NewOption("New York 3", "nyc3"),
		huh.NewOption("San Francisco 3", "sfo3"),
		huh.NewOption("Amsterdam 3", "ams3"),
		huh.NewOption("Frankfurt 1", "fra1"),
		huh.NewOption("Singapore 1", "sgp1"),
	},
	config.ProviderHetzner: {
		huh.NewOption("Falkenstein", "fsn1"),
		huh.NewOption("Nuremberg", "nbg1"),
		huh.NewOption("Helsinki", "hel1"),
		huh.NewOption("Ashburn", "ash"),
	},
}

// SizeOptions lists a few droplet sizes per provider.
var SizeOptions = map[string][]huh.Option[string]{
	config.ProviderDigitalOcean: {
		huh.NewOption("s-1vcpu-2gb (1 vCPU, 2 GB)", "s-1vcpu-2gb"),
		huh.NewOption("s-2vcpu-2gb (2 vCPU, 2 GB)", "s-2vcpu-2gb"),
		huh.NewOption("s-2vcpu-4gb (2 vCPU, 4 GB)", "s-2vcpu-4gb"),
		huh.NewOption("c-2 (2 dedicated vCPU, 4 GB)", "c-2"),
	},
	config.ProviderHetzner: {
		huh.NewOption("cx22 (2 vCPU, 4 GB)", "cx22"),
		huh.NewOption("cpx21 (3 vCPU, 4 GB)", "cpx21"),
		huh.NewOption("cx32 (4 vCPU, 8 GB)", "cx32"),
	},
}

// runProviderGroup prompts for the provider, then region and size.
func runProviderGroup(ctx context.Context, result *Result) error {
	result.Provider = config.ProviderDigitalOcean

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Cloud Provider").
				Options(ProviderOptions...).
				Value(&result.Provider),
		).Title("Provider"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	result.Region = RegionOptions[result.Provider][0].Value
	result.Size = SizeOptions[result.Provider][0].Value

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Region").
				Description("Used when the snapshot does not report one").
				Options(RegionOptions[result.Provider]...).
				Value(&result.Region),
			huh.NewSelect[string]().
				Title("Size").
				Options(SizeOptions[result.Provider]...).
				Value(&result.Size),
		).Title("Placement"),
	).RunWithContext(ctx)
}

// runDropletGroup prompts for the tag, snapshot and firewall.
func runDropletGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tag").
				Description("Identifies the managed droplet").
				Placeholder("stream").
				Value(&result.Tag).
				Validate(validateTag),
			huh.NewInput().
				Title("Snapshot").
				Description("Name of the snapshot the droplet boots from").
				Placeholder("stream-server").
				Value(&result.Snapshot).
				Validate(validateSnapshot),
			huh.NewInput().
				Title("Firewall (Optional)").
				Description("Firewall name to attach the droplet to").
				Value(&result.Firewall),
		).Title("Droplet"),
	).RunWithContext(ctx)
}

// runInactivityGroup prompts for the idle threshold.
func runInactivityGroup(ctx context.Context, result *Result) error {
	result.Threshold = "5m"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Idle Threshold").
				Description("Turn the droplet off after it has been inactive this long").
				Value(&result.Threshold).
				Validate(validateDuration),
		).Title("Inactivity"),
	).RunWithContext(ctx)
}

// runBotGroup prompts for the command prefix and stream keys.
func runBotGroup(ctx context.Context, result *Result) error {
	result.Prefix = "!"

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Command Prefix").
				Value(&result.Prefix),
			huh.NewInput().
				Title("Play Key (Optional)").
				Description("Leave empty to show a placeholder").
				Value(&result.PlayKey),
			huh.NewInput().
				Title("Stream Key (Optional)").
				Description("Leave empty to show a placeholder").
				EchoMode(huh.EchoModePassword).
				Value(&result.StreamKey),
		).Title("Chat Bot"),
	).RunWithContext(ctx)
}

// runObservabilityGroup prompts for event publishing and metrics.
func runObservabilityGroup(ctx context.Context, result *Result) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("NATS URL (Optional)").
				Placeholder("nats://127.0.0.1:4222").
				Value(&result.NATSURL),
			huh.NewInput().
				Title("Metrics Address (Optional)").
				Placeholder(":9090").
				Value(&result.MetricsAddress),
		).Title("Observability"),
	).RunWithContext(ctx)
}

func validateTag(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errTagRequired
	}
	if !tagRegex.MatchString(s) {
		return errTagInvalid
	}
	return nil
}

func validateSnapshot(s string) error {
	if strings.TrimSpace(s) == "" {
		return errSnapshotRequired
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil || d <= 0 {
		return errDurationInvalid
	}
	return nil
}
