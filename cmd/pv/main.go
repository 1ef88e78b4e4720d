package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/vanderheijden86/planetarium/pkg/config"
	"github.com/vanderheijden86/planetarium/pkg/crew"
	"github.com/vanderheijden86/planetarium/pkg/debug"
	"github.com/vanderheijden86/planetarium/pkg/export"
	"github.com/vanderheijden86/planetarium/pkg/model"
	"github.com/vanderheijden86/planetarium/pkg/scene"
	"github.com/vanderheijden86/planetarium/pkg/store"
	"github.com/vanderheijden86/planetarium/pkg/ui"
	"github.com/vanderheijden86/planetarium/pkg/version"
	"github.com/vanderheijden86/planetarium/pkg/watcher"
)

func main() {
	help := flag.Bool("help", false, "Show help")
	versionFlag := flag.Bool("version", false, "Show version")
	configPath := flag.String("config", "", "Config file path (default: XDG config dir)")
	snapshotPath := flag.String("snapshot", "", "Write SVG and PNG snapshots to this base path and exit")
	scenePath := flag.String("scene", "", "Write the scene as JSON to this path and exit")
	empty := flag.Bool("empty", false, "Start with an empty space instead of the demo org")
	flag.Parse()

	if *help {
		fmt.Println("Usage: pv [options]")
		fmt.Println("\nAn interactive viewer for org spaces: divisions as planets,")
		fmt.Println("typed connections as arced curves.")
		flag.PrintDefaults()
		os.Exit(0)
	}

	if *versionFlag {
		fmt.Printf("pv %s\n", version.Version)
		os.Exit(0)
	}

	cfgFile := *configPath
	if cfgFile == "" {
		cfgFile = config.ConfigPath()
	}
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		// Non-fatal: continue with defaults so a broken file doesn't lock
		// the user out of the viewer.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		cfg = config.DefaultConfig()
	}

	s := store.New()
	if err := s.SetVisualSettings(cfg.VisualPatch()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring visual settings: %v\n", err)
	}
	if !*empty {
		if err := seedDemo(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error seeding demo space: %v\n", err)
			os.Exit(1)
		}
	}

	// Headless export mode: render and exit without starting the TUI.
	if *snapshotPath != "" || *scenePath != "" {
		if err := runExport(s, *snapshotPath, *scenePath); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdout is not a terminal; use --snapshot or --scene for headless output")
		os.Exit(1)
	}

	var opts []ui.Option
	if cfg.Crew.URL != "" {
		var clientOpts []crew.ClientOption
		if cfg.Crew.Timeout != "" {
			if d, err := time.ParseDuration(cfg.Crew.Timeout); err == nil {
				clientOpts = append(clientOpts, crew.WithTimeout(d))
			} else {
				fmt.Fprintf(os.Stderr, "Warning: invalid crew timeout %q\n", cfg.Crew.Timeout)
			}
		}
		opts = append(opts, ui.WithOptimizer(crew.NewClient(cfg.Crew.URL, clientOpts...)))
	}

	m := ui.NewModel(s, cfg, opts...)
	if err := runTUIProgram(m, cfg, cfgFile); err != nil {
		fmt.Printf("Error running viewer: %v\n", err)
		os.Exit(1)
	}
}

// runExport renders the current store once. SVG and PNG are written in
// parallel; both share the frame built here.
func runExport(s *store.Store, snapshotBase, scenePath string) error {
	frame, err := scene.BuildFrame(s.Snapshot())
	if err != nil {
		return err
	}

	var g errgroup.Group
	if snapshotBase != "" {
		base := strings.TrimSuffix(snapshotBase, filepath.Ext(snapshotBase))
		g.Go(func() error {
			return export.SaveSnapshot(export.SnapshotOptions{
				Path: base + ".svg", Format: "svg", Title: "Org Space", Frame: frame,
			})
		})
		g.Go(func() error {
			return export.SaveSnapshot(export.SnapshotOptions{
				Path: base + ".png", Format: "png", Title: "Org Space", Frame: frame,
			})
		})
	}
	if scenePath != "" {
		g.Go(func() error {
			return export.SaveSceneJSON(frame, scenePath)
		})
	}
	return g.Wait()
}

func runTUIProgram(m ui.Model, cfg config.Config, cfgFile string) error {
	progOpts := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	}
	if cfg.MouseMotionAll() {
		progOpts = append(progOpts, tea.WithMouseAllMotion())
	} else {
		progOpts = append(progOpts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, progOpts...)

	runDone := make(chan struct{})
	defer close(runDone)

	// Live config reload: a changed file is re-parsed and delivered as a
	// message; the model applies the visual section through the store.
	if cfgFile != "" {
		w, err := watcher.New(cfgFile, watcher.WithOnError(func(err error) {
			debug.Log("config watcher: %v", err)
		}))
		if err == nil && w.Start() == nil {
			defer w.Stop()
			go func() {
				for {
					select {
					case <-runDone:
						return
					case <-w.Changed():
						next, err := config.LoadFrom(cfgFile)
						if err != nil {
							p.Send(ui.ConfigErrorMsg{Err: err})
							continue
						}
						p.Send(ui.ConfigChangedMsg{Config: next})
					}
				}
			}()
		}
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-runDone:
			return
		case <-sigCh:
		}

		p.Quit()

		select {
		case <-runDone:
			return
		case <-sigCh:
		case <-time.After(5 * time.Second):
		}

		p.Kill()
	}()

	_, err := p.Run()
	return err
}

// seedDemo populates a small org so the space isn't empty on first run.
func seedDemo(s *store.Store) error {
	divisions := []store.DivisionSpec{
		{ID: "hq", Label: "Headquarters", Position: r3.Vec{Y: 4}, Metadata: map[string]string{"role": "leadership"}},
		{ID: "eng", Label: "Engineering", Position: r3.Vec{X: -10, Y: -2, Z: 1}, Metadata: map[string]string{"role": "build"}},
		{ID: "product", Label: "Product", Position: r3.Vec{X: -4, Y: -4, Z: -1}, Metadata: map[string]string{"role": "plan"}},
		{ID: "sales", Label: "Sales", Position: r3.Vec{X: 5, Y: -3, Z: 2}, Metadata: map[string]string{"role": "sell"}},
		{ID: "support", Label: "Support", Position: r3.Vec{X: 11, Y: -1, Z: -2}, Metadata: map[string]string{"role": "care"}},
		{ID: "research", Label: "Research", Position: r3.Vec{X: -14, Y: 3, Z: 0}, Metadata: map[string]string{"role": "explore"}},
	}
	for _, spec := range divisions {
		if _, err := s.AddDivision(spec); err != nil {
			return err
		}
	}

	links := []struct {
		source, target string
		typ            model.ConnectionType
	}{
		{"hq", "eng", model.ConnectionHierarchy},
		{"hq", "product", model.ConnectionHierarchy},
		{"hq", "sales", model.ConnectionHierarchy},
		{"hq", "support", model.ConnectionHierarchy},
		{"eng", "research", model.ConnectionHierarchy},
		{"eng", "product", model.ConnectionCollaboration},
		{"sales", "support", model.ConnectionCollaboration},
		{"support", "eng", model.ConnectionInformation},
		{"research", "product", model.ConnectionInformation},
	}
	for _, l := range links {
		if _, err := s.AddConnection(l.source, l.target, l.typ); err != nil {
			return err
		}
	}
	return nil
}
