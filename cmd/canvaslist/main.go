package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/canvaslist/internal/config"
	"github.com/1broseidon/canvaslist/internal/daemon"
	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/hotkeys"
	"github.com/1broseidon/canvaslist/internal/httpapi"
	"github.com/1broseidon/canvaslist/internal/ipc"
	"github.com/1broseidon/canvaslist/internal/layoutstore"
	"github.com/1broseidon/canvaslist/internal/runtimepath"
	"github.com/1broseidon/canvaslist/internal/tui"
	"github.com/1broseidon/canvaslist/internal/x11"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: canvaslist daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: canvaslist daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "list", "get", "create", "move", "resize", "front", "minimize", "restore", "destroy":
		os.Exit(runWindow(os.Args[1], os.Args[2:]))
	case "scan":
		os.Exit(runScan(os.Args[2:]))
	case "viewport":
		os.Exit(runViewport(os.Args[2:]))
	case "pointer":
		os.Exit(runPointer(os.Args[2:]))
	case "view":
		os.Exit(runView(os.Args[2:]))
	case "layout":
		os.Exit(runLayout(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "inspect":
		os.Exit(runInspect(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: canvaslist <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the canvaslist daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Reload configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  list                List windows")
	fmt.Fprintln(w, "  get <id>            Show one window")
	fmt.Fprintln(w, "  create <id>         Create a window")
	fmt.Fprintln(w, "  move <id> <x> <y>   Move a window")
	fmt.Fprintln(w, "  resize <id> <w> <h> Resize a window")
	fmt.Fprintln(w, "  front <id>          Bring a window to front")
	fmt.Fprintln(w, "  minimize <id>       Minimize a window")
	fmt.Fprintln(w, "  restore <id>        Restore a minimized window")
	fmt.Fprintln(w, "  destroy <id>        Destroy a window")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  scan                Run a position check now")
	fmt.Fprintln(w, "  viewport [w h]      Show or set the viewport")
	fmt.Fprintln(w, "  pointer <action>    Send a pointer event")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  view save <key>     Snapshot open windows under a view key")
	fmt.Fprintln(w, "  view restore <key>  Restore a view snapshot")
	fmt.Fprintln(w, "  view list           List saved views")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  layout save <name>  Persist all windows as a named layout")
	fmt.Fprintln(w, "  layout load <name>  Recreate windows from a named layout")
	fmt.Fprintln(w, "  layout list         List saved layouts")
	fmt.Fprintln(w, "  layout delete <name> Delete a saved layout")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  inspect             Open interactive window inspector")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'canvaslist <command> --help' for command-specific options.")
}

// newFlagSet returns a ContinueOnError flag set whose usage prints usage,
// description and defaults to stderr.
func newFlagSet(name, usage, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, description)
		hasFlags := false
		fs.VisitAll(func(*flag.Flag) { hasFlags = true })
		if hasFlags {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

// parseFlags parses args and maps the outcome onto an exit code; ok is false
// when the caller should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "canvaslist status [--json]", "Show daemon status via IPC.")
	jsonOut := fs.Bool("json", false, "Output status as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(status)
	}
	fmt.Printf("daemon_running: %v\n", status.DaemonRunning)
	fmt.Printf("windows:        %d (%d minimized)\n", status.WindowCount, status.Minimized)
	fmt.Printf("viewport:       %s\n", status.Viewport)
	fmt.Printf("views:          %d\n", status.Views)
	fmt.Printf("session:        %s\n", status.Session)
	fmt.Printf("last_scan:      %d checked, %d skipped, %d corrected\n",
		status.LastScan.Checked, status.LastScan.Skipped, status.LastScan.Corrected)
	fmt.Printf("layout_backend: %s\n", status.LayoutBackend)
	fmt.Printf("uptime_seconds: %d\n", status.UptimeSeconds)
	return 0
}

func runReload(args []string) int {
	fs := newFlagSet("reload", "canvaslist reload", "Ask the daemon to reload its configuration.")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfigResult(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  canvaslist config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  canvaslist config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  canvaslist config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/canvaslist/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if _, err := loadConfigResult(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/canvaslist/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if *printDefaults && *printEffective {
			fmt.Fprintln(os.Stderr, "config print: -defaults and -effective are mutually exclusive")
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfigResult(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/canvaslist/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfigResult(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault, "":
		return "default"
	default:
		return string(src.Kind)
	}
}

func runInspect(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: canvaslist inspect")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive window list and viewport minimap for a running daemon.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓  Select window")
		fmt.Fprintln(os.Stderr, "  f         Bring selected window to front")
		fmt.Fprintln(os.Stderr, "  m         Minimize or restore selected window")
		fmt.Fprintln(os.Stderr, "  H/J/K/L   Move selected window left/down/up/right")
		fmt.Fprintln(os.Stderr, "  s         Run a position check")
		fmt.Fprintln(os.Stderr, "  r         Refresh")
		fmt.Fprintln(os.Stderr, "  q, Esc    Quit")
		fmt.Fprintln(os.Stderr, "  Ctrl+C    Quit")
		return 0
	}

	headerHeight := geometry.DefaultHeaderHeight
	if cfg, err := config.Load(); err == nil {
		headerHeight = cfg.HeaderHeight
	}

	client := ipc.NewClient()
	if err := client.Ping(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := tui.New(client, headerHeight).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// openLayoutStore opens the configured layout store. When the sqlite backend
// is selected, layouts saved by the json backend are imported once.
func openLayoutStore(ctx context.Context, cfg *config.Config) (layoutstore.Store, error) {
	backend := cfg.LayoutStore.Backend
	fallback, err := runtimepath.LayoutPath(backend)
	if err != nil {
		return nil, err
	}
	store, err := layoutstore.Open(backend, cfg.LayoutStorePath(fallback))
	if err != nil {
		return nil, err
	}

	if db, ok := store.(*layoutstore.SQLiteStore); ok {
		jsonDir, err := runtimepath.LayoutPath(layoutstore.BackendJSON)
		if err == nil {
			imported, err := db.ImportFiles(ctx, layoutstore.NewFileStore(jsonDir))
			if err != nil {
				log.Printf("Warning: failed to import json layouts: %v", err)
			} else if len(imported) > 0 {
				log.Printf("Imported %d json layouts into sqlite store", len(imported))
			}
		}
	}
	return store, nil
}

func runDaemon() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded (header: %dpx, viewport: %dx%d)", cfg.HeaderHeight, cfg.Viewport.Width, cfg.Viewport.Height)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	layouts, err := openLayoutStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open layout store: %v", err)
	}
	defer layouts.Close()

	svc := daemon.NewService(daemon.Options{
		Config:  cfg,
		Layouts: layouts,
		Logger:  logger,
	})

	if cfg.LayoutStore.RestoreOnStart {
		res, err := svc.LoadLayout(ctx, layoutstore.DefaultName, false)
		switch {
		case errors.Is(err, layoutstore.ErrNotFound):
			log.Printf("No saved layout %q to restore", layoutstore.DefaultName)
		case err != nil:
			log.Printf("Warning: failed to restore layout %q: %v", layoutstore.DefaultName, err)
		default:
			log.Printf("Restored layout %q (%d created, %d skipped)", layoutstore.DefaultName, res.Created, len(res.Skipped))
		}
	}

	go svc.Monitor().Run(ctx)

	ipcServer, err := ipc.NewServer(svc)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	if addr := cfg.HTTP.Listen; addr != "" {
		api := httpapi.New(svc, logger)
		go func() {
			if err := api.ListenAndServe(ctx, addr); err != nil {
				log.Printf("HTTP API stopped: %v", err)
			}
		}()
	}

	if cfg.Viewport.FollowDisplay || cfg.Hotkeys.Any() {
		startDisplay(ctx, cfg, svc, logger)
	}

	log.Println("canvaslist daemon started successfully")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigCh {
		if sig == syscall.SIGHUP {
			log.Println("Received SIGHUP, reloading config...")
			if err := svc.Reload(); err != nil {
				log.Printf("Config reload failed: %v", err)
				continue
			}
			log.Println("Config reloaded successfully")
			continue
		}

		log.Println("Shutting down canvaslist daemon...")
		if svc.Config().LayoutStore.SaveOnExit {
			saveCtx, saveCancel := context.WithTimeout(context.Background(), 10*time.Second)
			n, err := svc.SaveLayout(saveCtx, layoutstore.DefaultName)
			saveCancel()
			if err != nil {
				log.Printf("Warning: failed to save layout %q: %v", layoutstore.DefaultName, err)
			} else {
				log.Printf("Saved %d windows to layout %q", n, layoutstore.DefaultName)
			}
		}
		return
	}
}

// startDisplay connects to X for viewport tracking and global hotkeys. Both
// share one connection and event loop. Without an X display the configured
// viewport stays in effect and no hotkeys are bound.
func startDisplay(ctx context.Context, cfg *config.Config, svc *daemon.Service, logger *slog.Logger) {
	conn, err := x11.NewConnection()
	if err != nil {
		log.Printf("Warning: no X display, viewport tracking and hotkeys disabled: %v", err)
		return
	}

	if cfg.Viewport.FollowDisplay {
		watcher := x11.NewViewportWatcher(conn, func(vp geometry.Viewport) {
			if err := svc.SetViewport(vp); err != nil {
				logger.Warn("failed to apply display viewport", "viewport", vp.String(), "error", err)
			}
		}, logger)
		if err := watcher.Attach(); err != nil {
			log.Printf("Warning: failed to watch display viewport: %v", err)
		}
	}

	if cfg.Hotkeys.Any() {
		hotkeys.NewHandler(conn).RegisterActions(cfg.Hotkeys, svc)
	}

	go func() {
		defer conn.Close()
		conn.Run(ctx)
	}()
}
