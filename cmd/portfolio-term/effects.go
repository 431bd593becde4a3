package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/browser"
	"go.uber.org/zap"

	"github.com/jngonzales/portfolio/internal/logging"
	"github.com/jngonzales/portfolio/internal/terminal"
)

const downloadTimeout = 30 * time.Second

// hostEffects performs terminal side effects for the TUI. Slow effects run
// in the background and report back through the event loop.
type hostEffects struct {
	a *App
}

func (e *hostEffects) Navigate(d terminal.Destination) {
	e.a.setStatus("navigate: " + destinationURL(e.a.cfg.SiteURL, d))
}

func (e *hostEffects) OpenExternal(url string) {
	a := e.a
	go func() {
		if err := a.openURL(url); err != nil {
			logging.Warn("failed to open browser", zap.String("url", url), zap.Error(err))
			a.post(func() { a.setStatus("could not open " + url) })
		}
	}()
	a.setStatus("opening " + url)
}

func (e *hostEffects) DownloadResource(path, filename string) {
	a := e.a
	url := a.cfg.SiteURL + path
	dst := filepath.Base(filename)
	a.setStatus("downloading " + dst)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), downloadTimeout)
		defer cancel()
		err := a.download(ctx, url, dst)
		a.post(func() {
			if err != nil {
				logging.Warn("download failed", zap.String("url", url), zap.Error(err))
				a.setStatus("download failed: " + err.Error())
				return
			}
			a.setStatus("saved " + dst)
		})
	}()
}

func (e *hostEffects) SetTheme(t terminal.Theme) {
	e.a.theme = t
}

func (e *hostEffects) ToggleAmbientEffect() {
	e.a.rain.toggle()
	e.a.card.SetMatrix(e.a.rain.enabled)
}

// CloseTerminal returns to the card once the current event is handled.
func (e *hostEffects) CloseTerminal() {
	e.a.closing = true
}

func destinationURL(site string, d terminal.Destination) string {
	if d.Kind == terminal.DestAnchor {
		return site + "/#" + d.Target
	}
	return site + d.Target
}

func openBrowser(url string) error {
	return browser.OpenURL(url)
}

// fetchFile downloads url into dst.
func fetchFile(ctx context.Context, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", url, resp.Status)
	}

	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}
