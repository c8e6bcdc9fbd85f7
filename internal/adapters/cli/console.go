package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	terminalCmd "github.com/andrescamacho/portlogistics-go/internal/application/terminal/commands"
)

const consolePrompt = "portsim> "

var errQuit = errors.New("quit")

// NewConsoleCommand creates the console command
func NewConsoleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Interactive captain and operator shell",
		Long: `Start the simulation in-process and read commands line by line.
The haulage workers run in the background while the shell is open.

Commands:
  dock request                 ask the destination port for a berth
  dock confirm [--grant=false] answer the pending docking request
  unload                       unload the ship into the import store
  export                       load outbound containers from the export store
  undock request               ask to leave the port
  undock confirm [--grant]     answer the pending undocking request
  container create --port Bari --variant highcube --letters ABCD --number 42 --goods food
  container remove CODE        delete an empty container from the system
  status [--details]           show the ship and both terminals
  registry [--state empty]     list every registered container
  movements [--code CODE]      show the movement log
  quit                         stop the simulation and exit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rt, err := bootstrap(cfg, outputFor(cfg.Logging.Output))
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := rt.start(ctx); err != nil {
				return err
			}

			sess := newSession(rt.system, cmd.OutOrStdout(), !color.NoColor)
			return runConsole(rt.context(ctx), sess, cmd.InOrStdin(), true)
		},
	}

	return cmd
}

// runConsole reads lines from in until EOF, quit or ctx is done. Failed
// commands are reported and the shell carries on.
func runConsole(ctx context.Context, sess *session, in io.Reader, prompt bool) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		if prompt {
			sess.printf("%s", consolePrompt)
		}

		var line string
		select {
		case <-ctx.Done():
			sess.printf("\n")
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}

		err := executeLine(ctx, sess, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			sess.printf("%s %v\n", color.RedString("✗"), err)
		}
	}
}

// executeLine runs one console line through a fresh command tree so flag
// values never leak from one line to the next
func executeLine(ctx context.Context, sess *session, line string) error {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil
	}
	if args[0] == "quit" || args[0] == "exit" {
		return errQuit
	}

	root := newConsoleTree(sess)
	root.SetArgs(args)
	root.SetOut(sess.out)
	root.SetErr(sess.out)
	return root.ExecuteContext(ctx)
}

func newConsoleTree(sess *session) *cobra.Command {
	root := &cobra.Command{
		Use:           "portsim>",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(newHandshakeCommand("dock", "Docking handshake", sess.requestDock, sess.confirmDock))
	root.AddCommand(newHandshakeCommand("undock", "Undocking handshake", sess.requestUndock, sess.confirmUndock))
	root.AddCommand(&cobra.Command{
		Use:   "unload",
		Short: "Unload the ship into the import store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := sess.unload(cmd.Context())
			return err
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Load outbound containers from the export store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sess.export(cmd.Context())
		},
	})
	root.AddCommand(newConsoleContainerCommand(sess))
	root.AddCommand(newConsoleStatusCommand(sess))
	root.AddCommand(newConsoleRegistryCommand(sess))
	root.AddCommand(newConsoleMovementsCommand(sess))

	return root
}

func newHandshakeCommand(use, short string, request func(context.Context) error, confirm func(context.Context, bool) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "request",
		Short: "Send a request to the port",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return request(cmd.Context())
		},
	})

	var grant bool
	confirmCmd := &cobra.Command{
		Use:   "confirm",
		Short: "Answer the pending request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return confirm(cmd.Context(), grant)
		},
	}
	confirmCmd.Flags().BoolVar(&grant, "grant", true, "Grant the request")
	cmd.AddCommand(confirmCmd)

	return cmd
}

func newConsoleContainerCommand(sess *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "container",
		Short: "Create or remove containers",
	}

	create := &terminalCmd.CreateContainerCommand{}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a container in a port's export store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sess.createContainer(cmd.Context(), create)
		},
	}
	createCmd.Flags().StringVar(&create.Port, "port", "", "Port whose export store receives the container (required)")
	createCmd.Flags().StringVar(&create.Variant, "variant", "box", "Container variant: box or highcube")
	createCmd.Flags().StringVar(&create.Letters, "letters", "", "Four owner letters (required)")
	createCmd.Flags().IntVar(&create.Number, "number", 0, "Serial number, up to eight digits")
	createCmd.Flags().StringVar(&create.Goods, "goods", "", "Goods category: clothing, food, electronics, furniture (empty when omitted)")
	cmd.AddCommand(createCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove CODE",
		Short: "Delete an empty container from the whole system",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sess.removeContainer(cmd.Context(), args[0])
		},
	})

	return cmd
}

func newConsoleStatusCommand(sess *session) *cobra.Command {
	var detailed bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the ship and both terminals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sess.printStatus(cmd.Context(), detailed)
		},
	}
	cmd.Flags().BoolVar(&detailed, "details", false, "List every container")
	return cmd
}

func newConsoleRegistryCommand(sess *session) *cobra.Command {
	var stateName string
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "List registered containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := parseState(stateName)
			if err != nil {
				return err
			}
			return sess.printRegistry(cmd.Context(), state)
		},
	}
	cmd.Flags().StringVar(&stateName, "state", "", "Filter by state: empty, full-import, full-export")
	return cmd
}

func newConsoleMovementsCommand(sess *session) *cobra.Command {
	var (
		code  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "movements",
		Short: "Show the movement log, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sess.printMovements(cmd.Context(), code, limit)
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "Only this container's movements")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries shown")
	return cmd
}
