package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/andrescamacho/portlogistics-go/internal/application/haulage"
	"github.com/andrescamacho/portlogistics-go/internal/domain/container"
	"github.com/andrescamacho/portlogistics-go/internal/domain/navigation"
	"github.com/andrescamacho/portlogistics-go/internal/domain/storage"
)

// TreeFormatter renders the route as a tree: ship first, then each port with
// its import and export stores.
type TreeFormatter struct {
	useColors bool
	detailed  bool
}

// NewTreeFormatter creates a new tree formatter. When detailed is set every
// container code is listed under its holder.
func NewTreeFormatter(useColors, detailed bool) *TreeFormatter {
	return &TreeFormatter{
		useColors: useColors,
		detailed:  detailed,
	}
}

// RouteView is everything FormatRoute draws
type RouteView struct {
	Ship      navigation.Status
	Terminals []storage.Occupancy
	Workers   []haulage.Stats
	Registry  int
}

// FormatRoute renders the ship, the terminals and the haulage workers
func (f *TreeFormatter) FormatRoute(view RouteView) string {
	var builder strings.Builder

	ship := view.Ship
	builder.WriteString(fmt.Sprintf("%s %s [%s] -> %s  %s\n",
		f.paint(color.FgCyan, "Ship"),
		ship.Name,
		f.shipState(ship.State),
		ship.Destination,
		f.fill(len(ship.Onboard), ship.Capacity),
	))
	if ship.PendingRequest != nil {
		builder.WriteString(fmt.Sprintf("    pending %s request at %s\n",
			strings.ToLower(string(ship.PendingRequest.Kind)), ship.PendingRequest.Target))
	}
	if ship.OperationsConcluded {
		builder.WriteString("    operations concluded, must undock\n")
	}
	if f.detailed {
		f.formatContainers(&builder, ship.Onboard, "    ")
	}

	workers := make(map[string]haulage.Stats, len(view.Workers))
	for _, w := range view.Workers {
		workers[w.Port] = w
	}

	for i, t := range view.Terminals {
		isLast := i == len(view.Terminals)-1
		branch, childPrefix := "├── ", "│   "
		if isLast {
			branch, childPrefix = "└── ", "    "
		}

		builder.WriteString(fmt.Sprintf("%s%s %s%s\n", branch, f.paint(color.FgCyan, "Port"), t.Port, f.workerText(workers[t.Port])))
		builder.WriteString(fmt.Sprintf("%s├── import %s\n", childPrefix, f.fill(t.ImportSize, t.ImportCeiling)))
		if f.detailed {
			f.formatContainers(&builder, t.Imports, childPrefix+"│   ")
		}
		builder.WriteString(fmt.Sprintf("%s└── export %s floor %d\n", childPrefix, f.fill(t.ExportSize, t.ExportCeiling), t.ExportFloor))
		if f.detailed {
			f.formatContainers(&builder, t.Exports, childPrefix+"    ")
		}
	}

	builder.WriteString(fmt.Sprintf("Registry: %d containers\n", view.Registry))
	return builder.String()
}

func (f *TreeFormatter) formatContainers(builder *strings.Builder, snapshots []container.Snapshot, prefix string) {
	for _, s := range snapshots {
		builder.WriteString(fmt.Sprintf("%s%s %-8s %-11s %s\n", prefix, s.Code, s.Variant, s.State, s.Goods))
	}
}

// FormatContainers renders a registry listing as a table
func (f *TreeFormatter) FormatContainers(snapshots []container.Snapshot) string {
	if len(snapshots) == 0 {
		return "No containers found\n"
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%-13s %-9s %-12s %-12s %s\n", "CODE", "VARIANT", "STATE", "GOODS", "LOCATION"))
	builder.WriteString(strings.Repeat("─", 72) + "\n")
	for _, s := range snapshots {
		builder.WriteString(fmt.Sprintf("%-13s %-9s %-12s %-12s %s\n",
			s.Code, s.Variant, s.State, s.Goods, s.Location))
	}
	return builder.String()
}

// FormatMovements renders movement log entries, newest first
func (f *TreeFormatter) FormatMovements(movements []container.Movement) string {
	if len(movements) == 0 {
		return "No movements recorded\n"
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%-20s %-13s %-18s %s\n", "TIME", "CODE", "KIND", "FROM -> TO"))
	builder.WriteString(strings.Repeat("─", 72) + "\n")
	for _, m := range movements {
		builder.WriteString(fmt.Sprintf("%-20s %-13s %-18s %s -> %s\n",
			m.At.Format("2006-01-02 15:04:05"), m.ContainerCode, m.Kind, orDash(m.From), orDash(m.To)))
	}
	return builder.String()
}

func (f *TreeFormatter) shipState(state navigation.ShipState) string {
	switch state {
	case navigation.StateInTransit:
		return f.paint(color.FgBlue, string(state))
	case navigation.StateWaiting:
		return f.paint(color.FgYellow, string(state))
	default:
		return f.paint(color.FgGreen, string(state))
	}
}

// fill renders "n/capacity", red when full
func (f *TreeFormatter) fill(n, capacity int) string {
	text := fmt.Sprintf("%d/%d", n, capacity)
	if n >= capacity {
		return f.paint(color.FgRed, text)
	}
	return text
}

func (f *TreeFormatter) workerText(stats haulage.Stats) string {
	if stats.Port == "" {
		return ""
	}
	text := fmt.Sprintf("  haulage %s, %d cycles", strings.ToLower(string(stats.Status)), stats.Cycles)
	if stats.Uptime >= time.Second {
		text += fmt.Sprintf(", up %s", stats.Uptime.Round(time.Second))
	}
	if stats.Faults > 0 {
		text += f.paint(color.FgRed, fmt.Sprintf(", %d faults", stats.Faults))
	}
	return text
}

func (f *TreeFormatter) paint(attr color.Attribute, text string) string {
	if !f.useColors {
		return text
	}
	c := color.New(attr)
	c.EnableColor()
	return c.Sprint(text)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
