package cli

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/portlogistics-go/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect portsim configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (PORTSIM_* prefix, DATABASE_URL)
2. Config file (portsim.yaml)
3. Default values

Examples:
  portsim config show
  PORTSIM_CAPACITY_SHIP=12 portsim config show`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to load config: %v\n", err)
				fmt.Fprintln(cmd.ErrOrStderr(), "Using default configuration.")
				cfg = config.Default()
				applyLogFlags(cfg)
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}

	return cmd
}

func printConfig(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "Portsim Configuration")
	fmt.Fprintln(out, "=====================")

	fmt.Fprintln(out, "\nRoute:")
	fmt.Fprintf(out, "  Ports:            %s\n", strings.Join(cfg.Ports.Names, ", "))
	fmt.Fprintf(out, "  First Call:       %s\n", cfg.Ports.InitialDestination)
	fmt.Fprintf(out, "  Ship:             %s\n", cfg.Ports.ShipName)
	fmt.Fprintf(out, "  Seed Containers:  %t\n", cfg.Seed.Enabled)

	fmt.Fprintln(out, "\nCapacity:")
	fmt.Fprintf(out, "  Ship:             %d\n", cfg.Capacity.Ship)
	fmt.Fprintf(out, "  Import Ceiling:   %d\n", cfg.Capacity.ImportCeiling)
	fmt.Fprintf(out, "  Export Floor:     %d\n", cfg.Capacity.ExportFloor)
	fmt.Fprintf(out, "  Export Ceiling:   %d\n", cfg.Capacity.ExportCeiling)
	fmt.Fprintf(out, "  Registry Floor:   %d\n", cfg.Capacity.RegistryFloor)

	fmt.Fprintln(out, "\nHaulage:")
	fmt.Fprintf(out, "  Poll Interval:    %s\n", cfg.Haulage.PollInterval)
	fmt.Fprintf(out, "  Startup Delay:    %s\n", cfg.Haulage.StartupDelay)
	fmt.Fprintf(out, "  Trigger Above:    %d\n", cfg.Haulage.TriggerThreshold)
	if cfg.Haulage.ProcessorRate > 0 {
		fmt.Fprintf(out, "  Processor Rate:   %.1f/s (burst: %d)\n", cfg.Haulage.ProcessorRate, cfg.Haulage.ProcessorBurst)
	} else {
		fmt.Fprintf(out, "  Processor Rate:   unlimited\n")
	}

	fmt.Fprintln(out, "\nDatabase:")
	fmt.Fprintf(out, "  Type:             %s\n", cfg.Database.Type)
	switch {
	case cfg.Database.URL != "":
		fmt.Fprintf(out, "  URL:              %s\n", maskPassword(cfg.Database.URL))
	case cfg.Database.Type == "sqlite":
		fmt.Fprintf(out, "  Path:             %s\n", cfg.Database.Path)
	default:
		fmt.Fprintf(out, "  Host:             %s\n", cfg.Database.Host)
		fmt.Fprintf(out, "  Port:             %d\n", cfg.Database.Port)
		fmt.Fprintf(out, "  Database:         %s\n", cfg.Database.Name)
		fmt.Fprintf(out, "  User:             %s\n", cfg.Database.User)
	}

	fmt.Fprintln(out, "\nMetrics:")
	if cfg.Metrics.Enabled {
		fmt.Fprintf(out, "  Endpoint:         http://%s:%d%s\n", cfg.Metrics.Host, cfg.Metrics.Port, cfg.Metrics.Path)
	} else {
		fmt.Fprintf(out, "  Endpoint:         (disabled)\n")
	}

	fmt.Fprintln(out, "\nLogging:")
	fmt.Fprintf(out, "  Level:            %s\n", cfg.Logging.Level)
	fmt.Fprintf(out, "  Format:           %s\n", cfg.Logging.Format)
	fmt.Fprintf(out, "  Output:           %s\n", cfg.Logging.Output)
}

// maskPassword hides the password of a database URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	u.User = url.UserPassword(u.User.Username(), "xxxxx")
	return u.String()
}
