package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/pantry/internal/catalog"
	"github.com/smileynet/pantry/internal/config"
	"github.com/smileynet/pantry/internal/facade"
)

// isolateConfig points HOME at an empty directory and clears PANTRY_*
// overrides so only the test's own layers apply.
func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"PANTRY_DELAY", "PANTRY_SEED_DIR", "PANTRY_LOG_FILE", "PANTRY_LOG_LEVEL", "PANTRY_PAGE_SIZE"} {
		t.Setenv(k, "")
	}
}

func testApp(t *testing.T, opts ...facade.Option) *app {
	t.Helper()
	cfg := config.DefaultConfig()
	a, err := newApp(&cfg, opts...)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(a.close)
	return a
}

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	k, err := kong.New(&cli, kong.Vars{"version": "test"})
	if err != nil {
		t.Fatal(err)
	}
	kctx, err := k.Parse(args)
	if err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return &cli, kctx
}

func TestCLI_Parse(t *testing.T) {
	t.Run("dashboard is the default command", func(t *testing.T) {
		_, kctx := parse(t)
		if kctx.Command() != "dashboard" {
			t.Errorf("got command %q, want %q", kctx.Command(), "dashboard")
		}
	})

	t.Run("list takes a kind and --archived", func(t *testing.T) {
		cli, kctx := parse(t, "list", "fruits", "--archived")
		if kctx.Command() != "list <kind>" {
			t.Errorf("got command %q", kctx.Command())
		}
		if cli.List.Kind != "fruits" || !cli.List.Archived {
			t.Errorf("List = %+v", cli.List)
		}
	})

	t.Run("global flags are accepted before the command", func(t *testing.T) {
		cli, _ := parse(t, "--delay=300ms", "--log-level=debug", "kinds")
		if cli.Delay != "300ms" || cli.LogLevel != "debug" {
			t.Errorf("Globals = %+v", cli.Globals)
		}
	})

	t.Run("fault takes a comma-separated list", func(t *testing.T) {
		cli, _ := parse(t, "dashboard", "--fault=addFruit,deleteFruit")
		if len(cli.Dashboard.Fault) != 2 || cli.Dashboard.Fault[1] != "deleteFruit" {
			t.Errorf("Fault = %v", cli.Dashboard.Fault)
		}
	})
}

func TestGlobals_LoadConfig(t *testing.T) {
	t.Run("defaults without any layer", func(t *testing.T) {
		isolateConfig(t)
		g := &Globals{}

		cfg, err := g.loadConfig()
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if *cfg != config.DefaultConfig() {
			t.Errorf("cfg = %+v, want defaults", *cfg)
		}
	})

	t.Run("flags override --config file and env", func(t *testing.T) {
		// Given: a config file setting delay and level, env overriding level
		isolateConfig(t)
		path := filepath.Join(t.TempDir(), "pantry.yaml")
		if err := os.WriteFile(path, []byte("facade:\n  delay: 2s\nlog:\n  level: warn\nui:\n  page_size: 4\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("PANTRY_LOG_LEVEL", "error")
		g := &Globals{Config: path, Delay: "10ms"}

		// When: config is resolved
		cfg, err := g.loadConfig()
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}

		// Then: each layer wins where it is the highest to set a value
		if cfg.Facade.Delay != 10*time.Millisecond {
			t.Errorf("delay = %v, want 10ms from flag", cfg.Facade.Delay)
		}
		if cfg.Log.Level != "error" {
			t.Errorf("level = %q, want error from env", cfg.Log.Level)
		}
		if cfg.UI.PageSize != 4 {
			t.Errorf("page size = %d, want 4 from file", cfg.UI.PageSize)
		}
	})

	t.Run("missing --config file is an error", func(t *testing.T) {
		isolateConfig(t)
		g := &Globals{Config: filepath.Join(t.TempDir(), "nope.yaml")}

		if _, err := g.loadConfig(); err == nil {
			t.Fatal("expected error for missing --config file")
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		isolateConfig(t)
		for _, g := range []*Globals{{Delay: "soon"}, {Delay: "-1s"}, {LogLevel: "loud"}} {
			if _, err := g.loadConfig(); err == nil {
				t.Errorf("loadConfig(%+v) should fail", *g)
			}
		}
	})
}

func TestDashboardCmd_Run(t *testing.T) {
	t.Run("returns error when not a TTY", func(t *testing.T) {
		cmd := &DashboardCmd{}

		err := cmd.run(false, nil)

		if err == nil || !strings.Contains(err.Error(), "terminal") {
			t.Fatalf("error = %v, want mention of terminal", err)
		}
		if exitCode(err) != exitSetup {
			t.Errorf("exitCode = %d, want %d", exitCode(err), exitSetup)
		}
	})

	t.Run("executes tea program when TTY", func(t *testing.T) {
		cmd := &DashboardCmd{}
		mock := &mockTeaRunner{}

		if err := cmd.run(true, mock); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !mock.ran {
			t.Error("tea program was not run")
		}
	})

	t.Run("tea program error is a runtime error", func(t *testing.T) {
		cmd := &DashboardCmd{}
		mock := &mockTeaRunner{err: fmt.Errorf("tea: terminal error")}

		err := cmd.run(true, mock)

		if err == nil || !strings.Contains(err.Error(), "tea: terminal error") {
			t.Fatalf("error = %v, want tea error", err)
		}
		if exitCode(err) != exitRuntime {
			t.Errorf("exitCode = %d, want %d", exitCode(err), exitRuntime)
		}
	})
}

func TestListCmd(t *testing.T) {
	t.Run("active records with resolved tag names", func(t *testing.T) {
		a := testApp(t)
		var buf bytes.Buffer

		if err := (&ListCmd{Kind: "fruit"}).run(context.Background(), &buf, a); err != nil {
			t.Fatalf("run() error = %v", err)
		}

		out := buf.String()
		for _, want := range []string{"Apple", "Grapefruit", "Sweet, Red, Crunchy", "Description"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "Quince") {
			t.Errorf("archived record listed without --archived:\n%s", out)
		}
	})

	t.Run("--archived includes archived records", func(t *testing.T) {
		a := testApp(t)
		var buf bytes.Buffer

		if err := (&ListCmd{Kind: "Fruits", Archived: true}).run(context.Background(), &buf, a); err != nil {
			t.Fatalf("run() error = %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "Quince") || !strings.Contains(out, "Archived") {
			t.Errorf("output missing archived record:\n%s", out)
		}
	})

	t.Run("unknown kind is a setup error", func(t *testing.T) {
		a := testApp(t)

		err := (&ListCmd{Kind: "nuts"}).run(context.Background(), &bytes.Buffer{}, a)

		var uke *catalog.UnknownKindError
		if !errors.As(err, &uke) {
			t.Fatalf("error = %v, want UnknownKindError", err)
		}
		if !strings.Contains(err.Error(), "fruit, vegetable") {
			t.Errorf("error = %q, want available kinds listed", err)
		}
		if exitCode(err) != exitSetup {
			t.Errorf("exitCode = %d, want %d", exitCode(err), exitSetup)
		}
	})

	t.Run("endpoint fault is a runtime error", func(t *testing.T) {
		a := testApp(t, facade.WithFault(faultFor([]string{"getVegetables"})))

		err := (&ListCmd{Kind: "vegetable"}).run(context.Background(), &bytes.Buffer{}, a)

		if !errors.Is(err, errInjected) {
			t.Fatalf("error = %v, want errInjected", err)
		}
		if exitCode(err) != exitRuntime {
			t.Errorf("exitCode = %d, want %d", exitCode(err), exitRuntime)
		}
	})

	t.Run("empty seed prints a placeholder", func(t *testing.T) {
		isolateConfig(t)
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "vegetables.yaml"), []byte("records: []\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg := config.DefaultConfig()
		cfg.Seed.Dir = dir
		a, err := newApp(&cfg)
		if err != nil {
			t.Fatalf("newApp() error = %v", err)
		}
		defer a.close()
		var buf bytes.Buffer

		if err := (&ListCmd{Kind: "vegetables"}).run(context.Background(), &buf, a); err != nil {
			t.Fatalf("run() error = %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != "No vegetables" {
			t.Errorf("output = %q, want %q", got, "No vegetables")
		}
	})
}

func TestTagsCmd(t *testing.T) {
	a := testApp(t)
	var buf bytes.Buffer

	if err := (&TagsCmd{Kind: "vegetable"}).run(context.Background(), &buf, a); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"leafy", "Leafy", "cruciferous", "Cruciferous"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Tropical") {
		t.Errorf("fruit tag printed for vegetables:\n%s", out)
	}
}

func TestKindsCmd(t *testing.T) {
	a := testApp(t)
	var buf bytes.Buffer

	(&KindsCmd{}).run(&buf, a)

	if got := buf.String(); got != "fruit\nvegetable\n" {
		t.Errorf("output = %q", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitSuccess},
		{name: "setup", err: errors.New("config: bad"), want: exitSetup},
		{name: "runtime", err: &runError{err: errors.New("boom")}, want: exitRuntime},
		{name: "wrapped runtime", err: fmt.Errorf("list: %w", &runError{err: errInjected}), want: exitRuntime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// mockTeaRunner stubs tea program execution for DashboardCmd testing.
type mockTeaRunner struct {
	ran bool
	err error
}

func (m *mockTeaRunner) Run() (tea.Model, error) {
	m.ran = true
	return nil, m.err
}

// Compile-time check: mockTeaRunner satisfies teaRunner.
var _ teaRunner = (*mockTeaRunner)(nil)
