package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/iburimskiy/stillwave/internal/api"
	"github.com/iburimskiy/stillwave/internal/audio"
	"github.com/iburimskiy/stillwave/internal/config"
	"github.com/iburimskiy/stillwave/internal/game"
	"github.com/iburimskiy/stillwave/internal/logging"
	"github.com/iburimskiy/stillwave/internal/store"
)

var (
	// Global flags
	configPath    string
	debug         bool
	dbPath        string
	reducedMotion bool
	addr          string
	sessionLimit  int

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "stillwave",
	Short: "A short guided calm: burn a worry, breathe, scan the body",
	Long: `Stillwave opens a window that walks you through a short ritual:
write down what weighs on you and watch it burn, take three slow breaths
with the breathing sphere, then follow a guided body scan.

Run without arguments to start the full journey.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(debug)
		if err != nil {
			return err
		}
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("db") {
			cfg.Store.Path = dbPath
		}
		if reducedMotion {
			cfg.ReducedMotion = true
		}
		logger.Debug("config loaded", zap.String("path", configPath), zap.Bool("reduced_motion", cfg.ReducedMotion))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWindow(game.ModeJourney)
	},
}

var breatheCmd = &cobra.Command{
	Use:   "breathe",
	Short: "Open the breathing sphere on its own",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWindow(game.ModeBreathe)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the account and stats API",
	RunE:  serve,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print practice stats and recent sessions",
	RunE:  printStats,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "stillwave.db", "sqlite database path")
	rootCmd.PersistentFlags().BoolVar(&reducedMotion, "reduced-motion", false, "Draw still frames instead of animating")

	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config)")
	statsCmd.Flags().IntVarP(&sessionLimit, "sessions", "n", 5, "Number of recent sessions to list")

	rootCmd.AddCommand(breatheCmd, serveCmd, statsCmd, configCmd)
}

func runWindow(mode game.Mode) error {
	player := audio.NewPlayer(audio.Options{
		SampleRate: cfg.Audio.SampleRate,
		RingSize:   cfg.Audio.RingSize,
		Smoothing:  cfg.Audio.Smoothing,
		Volume:     cfg.Audio.Volume,
	}, logger.Named("audio"))
	if cfg.Audio.Enabled {
		if err := player.Init(); err != nil {
			logger.Warn("audio disabled", zap.Error(err))
		} else if cfg.Audio.Ambient != "" {
			if err := player.LoadAndPlay(cfg.Audio.Ambient); err != nil {
				logger.Warn("ambient track failed", zap.String("path", cfg.Audio.Ambient), zap.Error(err))
			}
		}
	}
	defer player.Stop()

	opts := game.Options{
		Config: cfg,
		Mode:   mode,
		Player: player,
		Log:    logger,
	}
	db, err := store.NewDB(cfg.Store.Path)
	if err != nil {
		logger.Warn("sessions will not be recorded", zap.String("db", cfg.Store.Path), zap.Error(err))
	} else {
		defer db.Close()
		opts.Store = db
	}

	ebiten.SetWindowSize(cfg.Window.Width, cfg.Window.Height)
	ebiten.SetWindowTitle(cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := game.New(opts)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	db, err := store.NewDB(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	listen := cfg.Server.Addr
	if addr != "" {
		listen = addr
	}
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", listen, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return api.NewServer(db, logger.Named("api")).Serve(ctx, ln)
}

func printStats(cmd *cobra.Command, args []string) error {
	db, err := store.NewDB(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	stats, err := db.Stats(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total minutes:     %.1f\n", stats.TotalMinutes)
	fmt.Fprintf(out, "Streak:            %d days\n", stats.StreakDays)
	fmt.Fprintf(out, "Breaths completed: %d\n", stats.BreathsCompleted)
	fmt.Fprintf(out, "Calm score:        %d\n", stats.CalmScore)

	sessions, err := db.Sessions(ctx, sessionLimit)
	if err != nil {
		return err
	}
	if len(sessions) > 0 {
		fmt.Fprintln(out, "\nRecent sessions:")
	}
	for _, s := range sessions {
		fmt.Fprintf(out, "  %s  %.1f min  %d breaths\n", s.CreatedAt.Local().Format("2006-01-02 15:04"), s.DurationMinutes, s.Breaths)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
