package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/andrescamacho/portlogistics-go/internal/application/common"
	"github.com/andrescamacho/portlogistics-go/internal/application/haulage"
)

const maxUnloadAttempts = 5

// NewSimulateCommand creates the simulate command
func NewSimulateCommand() *cobra.Command {
	var (
		voyages       int
		inline        bool
		pollInterval  time.Duration
		settleTimeout time.Duration
		detailed      bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run voyages automatically",
		Long: `Run the ship through N complete voyages: request and grant docking, unload,
let the haulage worker move the cargo, export, request and grant undocking.
A status tree is printed after every voyage.

By default the haulage workers run in the background on their configured
schedule and each voyage waits for the port's worker to finish a cycle.
With --inline the workers are polled directly after unloading instead.

Examples:
  portsim simulate --voyages 4
  portsim simulate --voyages 10 --inline
  portsim simulate --poll-interval 500ms --details`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if voyages < 1 {
				return fmt.Errorf("--voyages must be at least 1")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if pollInterval > 0 {
				cfg.Haulage.PollInterval = pollInterval
				cfg.Haulage.StartupDelay = 0
			}

			rt, err := bootstrap(cfg, outputFor(cfg.Logging.Output))
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if inline {
				rt.system.Journal().Start(rt.context(ctx))
			} else if err := rt.start(ctx); err != nil {
				return err
			}

			runner := &voyageRunner{
				session:       newSession(rt.system, cmd.OutOrStdout(), !color.NoColor),
				inline:        inline,
				settleTimeout: settleTimeout,
				detailed:      detailed,
			}
			return runner.run(rt.context(ctx), voyages)
		},
	}

	cmd.Flags().IntVarP(&voyages, "voyages", "n", 1, "Number of voyages to run")
	cmd.Flags().BoolVar(&inline, "inline", false, "Poll the haulage workers directly instead of running them in the background")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 0, "Override haulage.poll_interval and skip the startup delay")
	cmd.Flags().DurationVar(&settleTimeout, "settle-timeout", 30*time.Second, "How long a voyage waits for the haulage worker")
	cmd.Flags().BoolVar(&detailed, "details", false, "List every container in the status tree")

	return cmd
}

// voyageRunner plays the captain and the port authority for a number of voyages
type voyageRunner struct {
	session       *session
	inline        bool
	settleTimeout time.Duration
	detailed      bool
}

func (v *voyageRunner) run(ctx context.Context, voyages int) error {
	s := v.session
	if err := s.printStatus(ctx, v.detailed); err != nil {
		return err
	}

	for i := 1; i <= voyages; i++ {
		if err := ctx.Err(); err != nil {
			s.printf("Interrupted after %d voyages\n", i-1)
			return nil
		}

		s.printf("\n%s\n", color.New(color.Bold).Sprintf("Voyage %d/%d", i, voyages))
		if err := v.voyage(ctx); err != nil {
			return fmt.Errorf("voyage %d: %w", i, err)
		}
		if err := s.printStatus(ctx, v.detailed); err != nil {
			return err
		}
		if err := s.system.CheckConsistency(); err != nil {
			return fmt.Errorf("voyage %d: %w", i, err)
		}
	}
	return nil
}

func (v *voyageRunner) voyage(ctx context.Context) error {
	s := v.session
	portName := s.system.Ship().Destination()

	if v.inline {
		// An inline worker only re-arms when polled under the threshold.
		if err := v.pollInline(ctx, portName); err != nil {
			return err
		}
	}

	if err := s.requestDock(ctx); err != nil {
		return err
	}
	if err := s.confirmDock(ctx, true); err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		before := v.stats(portName)
		result, err := s.unload(ctx)
		if err != nil {
			return err
		}
		if err := v.settle(ctx, portName, before); err != nil {
			return err
		}
		if result.Remaining == 0 {
			break
		}
		if attempt == maxUnloadAttempts {
			return fmt.Errorf("%d containers still aboard after %d unload attempts", result.Remaining, attempt)
		}
	}

	if err := s.export(ctx); err != nil {
		return err
	}
	if err := s.requestUndock(ctx); err != nil {
		return err
	}
	return s.confirmUndock(ctx, true)
}

func (v *voyageRunner) stats(portName string) haulage.Stats {
	w, ok := v.session.system.Worker(portName)
	if !ok {
		return haulage.Stats{}
	}
	return w.Stats()
}

// settle lets the port's worker react to the unload. Inline, the worker is
// polled once. In the background, settle waits until the worker has finished
// a new cycle, unless occupancy is too low for one to start.
func (v *voyageRunner) settle(ctx context.Context, portName string, before haulage.Stats) error {
	if v.inline {
		return v.pollInline(ctx, portName)
	}

	w, ok := v.session.system.Worker(portName)
	if !ok {
		return fmt.Errorf("no haulage worker for port %s", portName)
	}
	terminal, _ := v.session.system.Terminal(portName)
	if terminal.Imports().Len() <= w.Threshold() {
		return nil
	}

	deadline := time.NewTimer(v.settleTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if w.Stats().Cycles > before.Cycles {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			common.LoggerFromContext(ctx).Log(common.LevelWarning, "Haulage worker did not run a cycle in time", map[string]interface{}{
				"action":  "haulage_settle_timeout",
				"port":    portName,
				"timeout": v.settleTimeout.String(),
			})
			return nil
		case <-ticker.C:
		}
	}
}

func (v *voyageRunner) pollInline(ctx context.Context, portName string) error {
	w, ok := v.session.system.Worker(portName)
	if !ok {
		return fmt.Errorf("no haulage worker for port %s", portName)
	}
	ran, result, err := w.Poll(ctx)
	if err != nil {
		return err
	}
	if ran {
		v.session.printf("✓ Haulage at %s drained %d and refilled %d containers\n", portName, result.Drained, result.Refilled)
	}
	return nil
}
