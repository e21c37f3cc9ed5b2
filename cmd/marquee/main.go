package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/catalog"
	"github.com/mmcdole/marquee/internal/config"
	"github.com/mmcdole/marquee/internal/connectivity"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/favorites"
	"github.com/mmcdole/marquee/internal/fetch"
	"github.com/mmcdole/marquee/internal/library"
	"github.com/mmcdole/marquee/internal/log"
	"github.com/mmcdole/marquee/internal/metrics"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/state"
	"github.com/mmcdole/marquee/internal/store"
	"github.com/mmcdole/marquee/internal/tui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"
)

// Version is set at build time via -ldflags
var Version = "dev"

type flags struct {
	showVersion bool
	configDir   string
	headless    bool
	list        string
	page        int
	favorites   bool
	clearCache  bool
}

func main() {
	var f flags
	flag.BoolVar(&f.showVersion, "v", false, "print version")
	flag.BoolVar(&f.showVersion, "version", false, "print version")
	flag.StringVar(&f.configDir, "config", "", "directory containing config.yaml")
	flag.BoolVar(&f.headless, "headless", false, "print a list instead of starting the TUI")
	flag.StringVar(&f.list, "list", "upcoming", "list to print in headless mode (upcoming, popular)")
	flag.IntVar(&f.page, "page", 1, "page to print in headless mode")
	flag.BoolVar(&f.favorites, "favorites", false, "print favorites in headless mode")
	flag.BoolVar(&f.clearCache, "clear-cache", false, "delete the on-disk cache and exit")
	flag.Parse()

	if f.showVersion {
		fmt.Printf("marquee %s\n", Version)
		return
	}

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired core
type app struct {
	cfg      *config.Config
	kv       domain.KeyValueStore
	oracle   *connectivity.Manual
	commands *library.Commands
	queries  *library.Queries
	search   *search.Service
	logger   *slog.Logger
}

func run(f flags) error {
	var paths []string
	if f.configDir != "" {
		paths = append(paths, f.configDir)
	}
	cfg, err := config.LoadConfig(paths...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if f.clearCache {
		if err := config.ClearCache(cfg.Store.Path); err != nil {
			return err
		}
		fmt.Println("cache cleared")
		return nil
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting marquee", "version", Version)

	if !cfg.IsConfigured() {
		return errors.New("no TMDB API key configured; set MARQUEE_API_API_KEY or api.api_key in ~/.config/marquee/config.yaml")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interactive := !f.headless && term.IsTerminal(int(os.Stdout.Fd()))

	var results chan domain.OpResult
	var observer domain.ResultObserver = domain.ObserverFunc(func(r domain.OpResult) {
		if !r.OK() {
			logger.Warn("operation failed", "op", r.Op, "list", r.List, "page", r.Page, "movieID", r.MovieID, "error", r.Err)
		}
	})
	if interactive {
		results = make(chan domain.OpResult, 64)
		observer = tui.NewChannelObserver(results)
	}

	a, err := wire(ctx, cfg, prometheus.DefaultRegisterer, observer, logger)
	if err != nil {
		return err
	}
	defer func() {
		a.commands.Close()
		if err := a.kv.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	if !interactive {
		return runHeadless(a, f, os.Stdout)
	}
	return runTUI(a, results)
}

// wire builds the core from cfg
func wire(ctx context.Context, cfg *config.Config, reg prometheus.Registerer, observer domain.ResultObserver, logger *slog.Logger) (*app, error) {
	kv, err := store.Open(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	recorder := metrics.New(reg)
	if cfg.Metrics.Addr != "" {
		go serveMetrics(ctx, cfg.Metrics.Addr, logger)
	}

	oracle := connectivity.NewManual(true)
	if cfg.Connectivity.ProbeAddr != "" {
		prober := connectivity.NewProber(cfg.Connectivity.ProbeAddr, cfg.Connectivity.ProbeInterval, cfg.Connectivity.ProbeTimeout, oracle, logger)
		prober.Probe(ctx)
		go prober.Run(ctx)
	}

	client := catalog.NewClient(catalog.Options{
		BaseURL:   cfg.API.BaseURL,
		APIKey:    cfg.API.APIKey,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
	}, logger)

	engine := fetch.NewEngine(kv, oracle, cfg.Cache.TTL, logger, fetch.WithMetrics(recorder))
	st := state.New()

	commands := library.NewCommands(library.Deps{
		Catalog:      client,
		Engine:       engine,
		State:        st,
		Favorites:    favorites.NewService(kv, st, recorder, logger),
		Connectivity: oracle,
		Observer:     observer,
		Metrics:      recorder,
	}, logger)
	queries := library.NewQueries(st, oracle)

	return &app{
		cfg:      cfg,
		kv:       kv,
		oracle:   oracle,
		commands: commands,
		queries:  queries,
		search:   search.NewService(queries, logger),
		logger:   logger,
	}, nil
}

func serveMetrics(ctx context.Context, addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server failed", "error", err)
	}
}

func runTUI(a *app, results chan domain.OpResult) error {
	changes := make(chan bool, 8)
	unsubscribe := a.oracle.Subscribe(func(connected bool) {
		select {
		case changes <- connected:
		default:
		}
	})
	defer unsubscribe()

	model := tui.NewModel(tui.Options{
		Queries:     a.queries,
		Commands:    a.commands,
		Search:      a.search,
		Results:     results,
		ConnChanges: changes,
		ImageBase:   a.cfg.API.ImageBaseURL,
		DefaultTab:  tui.TabFor(a.cfg.UI.DefaultTab),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	a.logger.Info("shutting down")
	return nil
}

// runHeadless loads one list page (or the favorites) and prints it
func runHeadless(a *app, f flags, w io.Writer) error {
	a.commands.LoadFavorites()
	a.commands.Wait()

	if f.favorites {
		printMovies(w, a.queries.Favorites())
		return nil
	}

	kind, err := domain.ParseListKind(f.list)
	if err != nil {
		return err
	}

	for page := 1; page <= max(1, f.page); page++ {
		a.commands.RequestList(kind, page, false)
		a.commands.Wait()
	}

	st := a.queries.List(kind)
	if st.LastError != "" {
		return fmt.Errorf("failed to load %s page %d: %s", kind, f.page, st.LastError)
	}
	if !a.queries.Connected() {
		fmt.Fprintln(w, "offline: showing cached data")
	}
	printMovies(w, st.Movies)
	return nil
}

func printMovies(w io.Writer, movies []domain.Movie) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFAV\tTITLE\tRELEASE\tRATING")
	for _, m := range movies {
		fav := ""
		if m.IsFavorite {
			fav = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\n", m.ID, fav, m.Title, m.ReleaseDate, m.VoteAverage)
	}
	_ = tw.Flush()
}
