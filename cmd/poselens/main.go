// Package main provides the CLI entry point for PoseLens.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/poselens/internal/app"
	"github.com/ayusman/poselens/internal/capture"
	"github.com/ayusman/poselens/internal/config"
	"github.com/ayusman/poselens/internal/logging"
	"github.com/ayusman/poselens/internal/server"
	"github.com/ayusman/poselens/internal/store"
	"github.com/ayusman/poselens/internal/tray"
)

// Version information (set at build time)
var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "poselens",
		Short:   "PoseLens - live pose skeleton and facial expression overlay",
		Version: version,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.poselens/config.yaml)")

	var withTray, autoStart bool
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and detection pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, withTray, autoStart)
		},
	}
	serveCmd.Flags().BoolVar(&withTray, "tray", false, "show a system tray icon")
	serveCmd.Flags().BoolVar(&autoStart, "start", false, "start detection immediately")

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List cameras and their rear-camera scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDevices(cmd.OutOrStdout())
		},
	}

	var alpha float64
	classifyCmd := &cobra.Command{
		Use:   "classify [blendshapes.json]",
		Short: "Classify a recorded sequence of blend-shape frames",
		Long: `Reads a JSON array of blend-shape frames (objects mapping category
names to scores) and prints the smoothed expression for each frame.
Empty or null frames are reported as absent and leave the state unchanged.
Reads stdin when the file is "-".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open frames: %w", err)
				}
				defer f.Close()
				in = f
			}
			return runClassify(in, cmd.OutOrStdout(), alpha)
		},
	}
	classifyCmd.Flags().Float64Var(&alpha, "alpha", 0, "smoothing factor in (0, 1) (default 0.3)")

	rootCmd.AddCommand(serveCmd, devicesCmd, classifyCmd)

	// serve is the default command
	rootCmd.RunE = serveCmd.RunE
	rootCmd.Flags().AddFlagSet(serveCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(configPath string, withTray, autoStart bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Close()
	log := logger.Component("main")

	if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:           st,
		Camera:          cfg.Camera,
		Detector:        cfg.Detection.Config,
		UseMockDetector: cfg.Detection.Mock,
		PoseInterval:    cfg.Detection.PoseInterval,
		FaceInterval:    cfg.Detection.FaceInterval,
		FaceDelay:       cfg.Detection.FaceDelay,
		RecordInterval:  cfg.Expression.RecordInterval,
		Smoothing:       cfg.Expression.Smoothing,
		JPEGQuality:     cfg.Server.JPEGQuality,
		Logger:          logger.Zerolog(),
	})
	defer a.Close()

	webDir := cfg.Server.StaticDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		log.Info().Str("dir", webDir).Msg("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
		Logger:    logger.Zerolog(),
	})

	if autoStart {
		if err := a.Start(); err != nil {
			log.Error().Err(err).Msg("initial start failed")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !withTray {
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx, cfg.Server.Addr)
	}()

	t := tray.New(logger.Zerolog())
	t.SetDetecting(a.IsDetecting())
	t.OnToggle(func(detecting bool) error {
		if detecting {
			return a.Start()
		}
		a.Stop()
		return nil
	})
	t.OnOpenUI(func() {
		if err := openBrowser(uiURL(cfg.Server.Addr)); err != nil {
			log.Warn().Err(err).Msg("failed to open browser")
		}
	})
	t.OnQuit(stop)

	snaps, cancel := a.Subscribe()
	defer cancel()
	go func() {
		for snap := range snaps {
			if snap.Emotion != nil {
				t.SetLastEmotion(snap.Emotion)
			}
		}
	}()

	// The tray must own the main goroutine.
	go func() {
		<-ctx.Done()
		t.Quit()
	}()
	t.Run()
	stop()

	return <-errCh
}

func runDevices(w io.Writer) error {
	devices, err := capture.ListDevices()
	if err != nil {
		return err
	}

	for i := range devices {
		d := &devices[i]
		if d.Facing == capture.FacingEnvironment {
			if width, height, err := capture.ProbeResolution(d.ID); err == nil {
				d.MaxWidth, d.MaxHeight = width, height
			}
		}
	}

	best, hasBest := capture.BestRearCamera(devices)
	for _, d := range devices {
		marker := " "
		if hasBest && d.ID == best.ID {
			marker = "*"
		}
		res := "-"
		if d.MaxWidth > 0 {
			res = fmt.Sprintf("%dx%d", d.MaxWidth, d.MaxHeight)
		}
		fmt.Fprintf(w, "%s %d\t%-11s\t%-9s\tscore=%.1f\t%s\n", marker, d.ID, d.Facing, res, capture.ScoreDevice(d), d.Label)
	}
	return nil
}

// uiURL turns a listen address into a browsable URL.
func uiURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.poselens/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dir, err := config.Dir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(dir, "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
