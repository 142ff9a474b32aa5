package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-isatty"

	"github.com/smileynet/pantry/internal/api"
	"github.com/smileynet/pantry/internal/catalog"
	"github.com/smileynet/pantry/internal/config"
	"github.com/smileynet/pantry/internal/dashboard"
	"github.com/smileynet/pantry/internal/facade"
	"github.com/smileynet/pantry/internal/record"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are flags shared by every command. Flags override config files
// and environment variables.
type Globals struct {
	Config   string `help:"Config file layered over the user and project configs." type:"path"`
	SeedDir  string `help:"Directory whose seed files override the embedded ones." type:"path"`
	Delay    string `help:"Simulated endpoint latency, e.g. 300ms."`
	LogFile  string `help:"Write JSON logs to this file."`
	LogLevel string `help:"Log level: debug, info, warn or error."`
}

// CLI is the top-level command structure for pantry.
type CLI struct {
	Globals

	Version   kong.VersionFlag `help:"Show version." short:"V"`
	Dashboard DashboardCmd     `cmd:"" default:"1" help:"Open the interactive editor (default)."`
	List      ListCmd          `cmd:"" help:"Print the records of a kind."`
	Tags      TagsCmd          `cmd:"" help:"Print the tag catalog of a kind."`
	Kinds     KindsCmd         `cmd:"" help:"List the registered kinds."`
}

// loadConfig loads layered config from user, project and --config paths,
// then applies env and flag overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	home, _ := os.UserHomeDir()
	paths := config.Paths(home, ".")
	if g.Config != "" {
		if _, err := os.Stat(g.Config); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		paths = append(paths, g.Config)
	}

	cfg, err := config.LoadLayered(paths...)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := g.apply(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (g *Globals) apply(cfg *config.Config) error {
	if g.SeedDir != "" {
		cfg.Seed.Dir = g.SeedDir
	}
	if g.Delay != "" {
		d, err := time.ParseDuration(g.Delay)
		if err != nil {
			return fmt.Errorf("config: invalid --delay %q: %w", g.Delay, err)
		}
		cfg.Facade.Delay = d
	}
	if g.LogFile != "" {
		cfg.Log.File = g.LogFile
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	return nil
}

// setup loads config and builds the application for a command.
func (g *Globals) setup(opts ...facade.Option) (*app, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(cfg, opts...)
}

// --- Dashboard command ---

// DashboardCmd opens the interactive editor TUI.
type DashboardCmd struct {
	Fault []string `help:"Endpoints that always fail, e.g. addFruit (\"all\" fails everything)." sep:","`
}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds real dependencies and launches the dashboard TUI.
func (d *DashboardCmd) Run(g *Globals) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("dashboard: requires a terminal (TTY)")
	}

	a, err := g.setup(facade.WithFault(faultFor(d.Fault)))
	if err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := dashboard.NewModel(a.api,
		dashboard.WithContext(ctx),
		dashboard.WithLogger(a.logger.Named("dashboard")),
		dashboard.WithPageSize(a.cfg.UI.PageSize),
	)
	defer m.Close()

	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	return d.run(true, prog)
}

// run executes the tea program, enabling testable wiring.
func (d *DashboardCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("dashboard: requires a terminal (TTY)")
	}
	if _, err := prog.Run(); err != nil {
		return &runError{err: fmt.Errorf("dashboard: %w", err)}
	}
	return nil
}

// --- List command ---

// ListCmd prints the records of a kind.
type ListCmd struct {
	Kind     string `arg:"" help:"Kind to list (fruit, vegetable)."`
	Archived bool   `help:"Include archived records."`
}

// Run executes the list command.
func (l *ListCmd) Run(g *Globals) error {
	a, err := g.setup()
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer a.close()
	return l.run(context.Background(), os.Stdout, a)
}

// run fetches through the cache so the read goes through the same endpoint
// the dashboard subscribes to.
func (l *ListCmd) run(ctx context.Context, w io.Writer, a *app) error {
	res, err := a.resource(l.Kind)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	records, err := res.List.Fetch(ctx, a.api.Cache, api.Void{})
	if err != nil {
		return &runError{err: fmt.Errorf("list: %w", err)}
	}
	tags, err := res.Tags.Fetch(ctx, a.api.Cache, api.Void{})
	if err != nil {
		return &runError{err: fmt.Errorf("list: %w", err)}
	}
	if !l.Archived {
		records = record.Active(records)
	}

	if len(records) == 0 {
		_, _ = fmt.Fprintf(w, "No %s\n", strings.ToLower(res.Kind.Plural()))
		return nil
	}

	headers := []string{"ID", "Name", "Description", "Tags"}
	if l.Archived {
		headers = append(headers, "Archived")
	}
	t := newTable(headers...)
	for _, r := range records {
		row := []string{r.ID, r.Name, r.Description, strings.Join(catalog.Names(tags, r.Tags), ", ")}
		if l.Archived {
			row = append(row, yesNo(r.Archived))
		}
		t.Row(row...)
	}
	_, _ = fmt.Fprintln(w, t.Render())
	return nil
}

// --- Tags command ---

// TagsCmd prints the tag catalog of a kind.
type TagsCmd struct {
	Kind string `arg:"" help:"Kind whose tags to print."`
}

// Run executes the tags command.
func (c *TagsCmd) Run(g *Globals) error {
	a, err := g.setup()
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	defer a.close()
	return c.run(context.Background(), os.Stdout, a)
}

func (c *TagsCmd) run(ctx context.Context, w io.Writer, a *app) error {
	res, err := a.resource(c.Kind)
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	tags, err := res.Tags.Fetch(ctx, a.api.Cache, api.Void{})
	if err != nil {
		return &runError{err: fmt.Errorf("tags: %w", err)}
	}

	t := newTable("ID", "Name")
	for _, tag := range tags {
		t.Row(tag.ID, tag.Name)
	}
	_, _ = fmt.Fprintln(w, t.Render())
	return nil
}

// --- Kinds command ---

// KindsCmd lists the registered kinds.
type KindsCmd struct{}

// Run executes the kinds command.
func (k *KindsCmd) Run(g *Globals) error {
	a, err := g.setup()
	if err != nil {
		return fmt.Errorf("kinds: %w", err)
	}
	defer a.close()
	k.run(os.Stdout, a)
	return nil
}

func (k *KindsCmd) run(w io.Writer, a *app) {
	for _, name := range a.sources.AvailableKinds() {
		_, _ = fmt.Fprintln(w, name)
	}
}

// --- Output helpers ---

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// --- Exit codes ---

const (
	exitSuccess = 0
	exitRuntime = 1
	exitSetup   = 2
)

// runError marks a failure that happened after setup succeeded.
type runError struct {
	err error
}

func (e *runError) Error() string { return e.err.Error() }

func (e *runError) Unwrap() error { return e.err }

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var re *runError
	if errors.As(err, &re) {
		return exitRuntime
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("pantry"),
		kong.Description("Edit fruit and vegetable records in the terminal."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
