package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/envdash/internal/config"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/feed"
	"github.com/rileyhilliard/envdash/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const initProbeTimeout = 10 * time.Second

// InitOptions holds options for the init command.
type InitOptions struct {
	Dir            string // where to write the config; defaults to "."
	ChannelID      string
	ReadKey        string
	BaseURL        string
	Refresh        string
	Broker         string
	Overwrite      bool // overwrite an existing config without asking
	NonInteractive bool // skip prompts, use flags and defaults
	SkipVerify     bool // don't test-fetch the channel before saving
}

var initOpts InitOptions

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .envdash.yaml configuration",
	Long: `Create a .envdash.yaml in the current directory.

Prompts for the channel and refresh settings, then test-fetches the channel
before saving. Without flags the public demo channel is used.

Examples:
  envdash init
  envdash init --channel 3092550 --read-key ABC123 --non-interactive
  envdash init --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		if !opts.NonInteractive && os.Getenv("CI") != "" {
			opts.NonInteractive = true
		}
		return Init(cmd.Context(), cmd.OutOrStdout(), opts)
	},
}

func init() {
	f := initCmd.Flags()
	f.StringVar(&initOpts.ChannelID, "channel", "", "channel ID")
	f.StringVar(&initOpts.ReadKey, "read-key", "", "channel read API key")
	f.StringVar(&initOpts.BaseURL, "base-url", "", "API base URL")
	f.StringVar(&initOpts.Refresh, "refresh", "", "refresh interval (e.g., 30s)")
	f.StringVar(&initOpts.Broker, "mqtt-broker", "", "MQTT broker for alerts (e.g., tcp://localhost:1883)")
	f.BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite existing config")
	f.BoolVar(&initOpts.NonInteractive, "non-interactive", false, "skip prompts")
	f.BoolVar(&initOpts.SkipVerify, "no-verify", false, "don't test the channel before saving")
	rootCmd.AddCommand(initCmd)
}

// Init writes a new config file built from opts, prompting for anything
// missing unless NonInteractive is set.
func Init(ctx context.Context, out io.Writer, opts InitOptions) error {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	configPath := filepath.Join(dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("'%s' already exists. Overwrite?", config.ConfigFileName)).
				Value(&overwrite),
		))
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	cfg, err := initConfig(opts)
	if err != nil {
		return err
	}

	if !opts.SkipVerify {
		if err := verifyChannel(ctx, out, cfg.Channel, opts.NonInteractive); err != nil {
			return err
		}
	}

	if err := writeConfig(configPath, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  envdash           - Open the dashboard")
	fmt.Fprintln(out, "  envdash snapshot  - Print the current readings")
	fmt.Fprintln(out, "  envdash serve     - Run the status API")
	return nil
}

// initConfig merges flags, ENVDASH_* defaults and, when interactive, the form.
func initConfig(opts InitOptions) (*config.Config, error) {
	cfg := config.DefaultConfig()
	def := initDefaults()

	channelID := firstNonEmpty(opts.ChannelID, def.ChannelID, cfg.Channel.ID)
	readKey := firstNonEmpty(opts.ReadKey, def.ReadKey)
	if opts.ChannelID == "" && def.ChannelID == "" && readKey == "" {
		// Only the demo channel gets the demo key.
		readKey = cfg.Channel.ReadKey
	}
	baseURL := firstNonEmpty(opts.BaseURL, cfg.Channel.BaseURL)
	refresh := firstNonEmpty(opts.Refresh, cfg.Refresh.String())
	broker := firstNonEmpty(opts.Broker, def.Broker)

	if !opts.NonInteractive {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Channel ID").
					Description("The number in your channel URL").
					Placeholder(config.DefaultChannelID).
					Value(&channelID).
					Validate(validateChannelID),
				huh.NewInput().
					Title("Read API key").
					Description("Leave empty for a public channel").
					Value(&readKey),
			),
			huh.NewGroup(
				huh.NewInput().
					Title("Refresh interval").
					Description("How often to poll the feed").
					Placeholder("30s").
					Value(&refresh).
					Validate(func(s string) error {
						_, err := ParseInterval(strings.TrimSpace(s), 0)
						return err
					}),
				huh.NewInput().
					Title("MQTT broker (optional)").
					Description("Publish status changes, e.g. tcp://localhost:1883").
					Placeholder("leave empty to skip").
					Value(&broker),
			),
		)
		if err := form.Run(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive flag")
		}
	}

	if err := validateChannelID(channelID); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Pass --channel with the numeric channel ID")
	}
	interval, err := ParseInterval(strings.TrimSpace(refresh), cfg.Refresh)
	if err != nil {
		return nil, err
	}

	cfg.Channel.ID = strings.TrimSpace(channelID)
	cfg.Channel.ReadKey = strings.TrimSpace(readKey)
	cfg.Channel.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.Refresh = interval
	cfg.Alerts.MQTT.Broker = strings.TrimSpace(broker)

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// verifyChannel test-fetches the channel. Interactive runs may save anyway.
func verifyChannel(ctx context.Context, out io.Writer, ch config.ChannelConfig, nonInteractive bool) error {
	spinner := ui.NewSpinner(out, "Fetching channel "+ch.ID)
	spinner.Start()

	probeCtx, cancel := context.WithTimeout(ctx, initProbeTimeout)
	defer cancel()
	_, err := feed.NewClient(ch).Fetch(probeCtx)
	if err == nil {
		spinner.Success()
		fmt.Fprintln(out)
		return nil
	}
	spinner.Fail("")

	failed := errors.WrapWithCode(err, errors.ErrNetwork,
		fmt.Sprintf("Couldn't read channel %s", ch.ID),
		"Check the channel ID and read key, or pass --no-verify to save anyway")
	if nonInteractive {
		return failed
	}

	fmt.Fprintf(out, "\n%s %s\n\n", ui.SymbolFail, errors.Summary(err))
	var saveAnyway bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("Save config anyway? (You can fix it later)").
			Value(&saveAnyway),
	))
	if formErr := form.Run(); formErr != nil || !saveAnyway {
		return failed
	}
	return nil
}

func writeConfig(path string, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	header := `# envdash configuration
# Run 'envdash' to open the dashboard. Environment variables such as
# ENVDASH_CHANNEL_READ_KEY override any value below.

`
	if err := os.WriteFile(path, []byte(header+string(data)), 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", path),
			"Check directory permissions")
	}
	return nil
}

// InitDefaults holds values read from the environment for init.
type InitDefaults struct {
	ChannelID string
	ReadKey   string
	Broker    string
}

func initDefaults() InitDefaults {
	return InitDefaults{
		ChannelID: os.Getenv(config.EnvPrefix + "_CHANNEL_ID"),
		ReadKey:   os.Getenv(config.EnvPrefix + "_CHANNEL_READ_KEY"),
		Broker:    os.Getenv(config.EnvPrefix + "_ALERTS_MQTT_BROKER"),
	}
}

func validateChannelID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("channel ID is required")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return fmt.Errorf("channel ID should be numeric")
		}
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
