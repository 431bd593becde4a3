// Command portfolio-term runs the portfolio terminal in a local console: the
// bento card first, the full terminal behind the konami code or F2.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/browser"
	"go.uber.org/zap"

	"github.com/jngonzales/portfolio/internal/config"
	"github.com/jngonzales/portfolio/internal/content"
	"github.com/jngonzales/portfolio/internal/logging"
	"github.com/jngonzales/portfolio/internal/sound"
	"github.com/jngonzales/portfolio/internal/store"
)

func main() {
	record := flag.Bool("record", false, "record sessions and scores in DATABASE_PATH")
	muted := flag.Bool("muted", false, "start with sound muted")
	flag.Parse()

	if err := run(*record, *muted); err != nil {
		fmt.Fprintf(os.Stderr, "portfolio-term: %v\n", err)
		os.Exit(1)
	}
}

func run(record, muted bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The screen owns stdout, so logs only go to a file.
	logPath := cfg.LogFile
	if logPath == "" {
		logPath = os.DevNull
	}
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console", OutputPath: logPath}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Sync()

	profile, err := content.Load(cfg.ProfilePath)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	browser.Stdout = io.Discard
	browser.Stderr = io.Discard

	snd := sound.New(muted || cfg.SoundMuted)
	if err := snd.Initialize(); err != nil {
		// Non-fatal, the terminal runs without sound
		logging.Warn("audio initialization failed", zap.Error(err))
	}
	defer snd.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	app := newApp(screen, cfg, profile, snd)
	app.rain.resize(screen.Size())

	if record {
		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		app.rec = st
	}

	app.Run()
	return nil
}
