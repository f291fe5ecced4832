package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/akamensky/argparse"
	"go.uber.org/zap"

	"github.com/ayusman/signtutor/internal/app"
	"github.com/ayusman/signtutor/internal/classifier"
	"github.com/ayusman/signtutor/internal/config"
	"github.com/ayusman/signtutor/internal/logging"
	"github.com/ayusman/signtutor/internal/server"
	"github.com/ayusman/signtutor/internal/store"
	"github.com/ayusman/signtutor/internal/tray"
)

func main() {
	parser := argparse.NewParser("signtutor", "ASL fingerspelling tutor")
	configDir := parser.String("d", "dir", &argparse.Options{Help: "Config directory (default ~/.signtutor)", Default: ""})

	serveCmd := parser.NewCommand("serve", "Run the tutor web server")
	addr := serveCmd.String("a", "addr", &argparse.Options{Help: "Listen address, overrides server.address", Default: ""})
	withTray := serveCmd.Flag("", "tray", &argparse.Options{Help: "Show a system tray menu", Default: false})

	trainCmd := parser.NewCommand("train", "Build sign templates from a landmark CSV")
	csvFile := trainCmd.String("f", "file", &argparse.Options{Help: "CSV with a label and 42 features per row", Required: true})

	wordCmd := parser.NewCommand("word", "Show or set today's word")
	setWord := wordCmd.String("s", "set", &argparse.Options{Help: "Word to practice today", Default: ""})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	switch {
	case serveCmd.Happened():
		if *addr != "" {
			cfg.Server.Address = *addr
		}
		err = serve(cfg, *withTray || cfg.Tray, log)
	case trainCmd.Happened():
		err = train(cfg, *csvFile, log)
	case wordCmd.Happened():
		err = word(cfg, *setWord)
	}
	if err != nil {
		log.Errorw("signtutor failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func serve(cfg *config.Config, withTray bool, log *zap.SugaredLogger) error {
	a, err := app.Open(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	staticDir := findWebDir(cfg.Server.StaticDir, cfg.Dir)
	if staticDir != "" {
		log.Infow("serving static files", "dir", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		RateLimit: cfg.Server.RateLimit,
		App:       a,
		Logger:    log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(cfg.Server.Address) }()

	var serveErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case serveErr = <-errCh:
		case <-ctx.Done():
		}
	}()

	// The tray owns the main goroutine until quit.
	if withTray {
		t := newTray(a, stop, "http://"+cfg.Server.Address, log)
		snaps, cancel := a.Feed().Subscribe()
		go t.Watch(ctx, snaps)
		go func() {
			<-done
			t.Quit()
		}()
		t.Run()
		cancel()
	}

	<-done
	if serveErr != nil {
		return serveErr
	}

	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newTray(a *app.App, quit func(), url string, log *zap.SugaredLogger) *tray.Tray {
	t := tray.New()
	t.OnToggle(func(paused bool) {
		control := a.Resume
		if paused {
			control = a.Pause
		}
		if err := control(); err != nil {
			log.Debugw("tray toggle ignored", "paused", paused, "error", err)
		}
	})
	t.OnOpen(func() {
		if err := openBrowser(url); err != nil {
			log.Warnw("opening browser", "url", url, "error", err)
		}
	})
	t.OnQuit(quit)
	return t
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

func train(cfg *config.Config, path string, log *zap.SugaredLogger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := store.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := app.ImportTemplates(s, classifier.Fingerspelling, f)
	if err != nil {
		return fmt.Errorf("training templates from %s: %w", path, err)
	}
	log.Infow("templates saved", "count", n, "database", s.Path())
	return nil
}

func word(cfg *config.Config, set string) error {
	s, err := store.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	now := time.Now()
	if strings.TrimSpace(set) != "" {
		w, err := s.Words().Set(now, set)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s\n", w.Day, w.Word)
		return nil
	}

	w, err := s.Words().Get(now)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Printf("%s: %s (fallback)\n", now.Format(time.DateOnly), cfg.Practice.FallbackWord)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", w.Day, w.Word)
	return nil
}

// findWebDir returns configured if it is a directory, otherwise the first of
// web, ../web, ../../web and <configDir>/web that exists.
func findWebDir(configured, configDir string) string {
	candidates := []string{configured, "web", "../web", "../../web"}
	if configDir != "" {
		candidates = append(candidates, filepath.Join(configDir, "web"))
	}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p
		}
	}
	return ""
}
