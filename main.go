package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jngonzales/portfolio/internal/config"
	"github.com/jngonzales/portfolio/internal/content"
	"github.com/jngonzales/portfolio/internal/logging"
	"github.com/jngonzales/portfolio/internal/metrics"
	"github.com/jngonzales/portfolio/internal/store"
	"github.com/jngonzales/portfolio/internal/terminal"
	"github.com/jngonzales/portfolio/internal/termws"
)

//go:embed templates/*.html
var templateFS embed.FS

const shutdownTimeout = 10 * time.Second

// site bundles everything the HTTP handlers need.
type site struct {
	cfg     *config.Config
	profile *content.Profile
	store   *store.Store
	admin   *admin
	term    *termws.Server
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "portfolio: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logging.Init(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		OutputPath: cfg.LogFile,
	}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Sync()
	gin.SetMode(cfg.GinMode)

	profile, err := content.Load(cfg.ProfilePath)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	st, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	s, err := newSite(cfg, profile, st)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go s.admin.cleanupOldVisitorData(ctx)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("server listening", zap.String("addr", srv.Addr), zap.String("site_url", cfg.SiteURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logging.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Warn("http shutdown", zap.Error(err))
	}
	// Hijacked websocket connections are not tracked by the HTTP server.
	if err := s.term.Shutdown(shutdownCtx); err != nil {
		logging.Warn("terminal shutdown", zap.Error(err))
	}
	logging.Info("server stopped")
	return nil
}

func newSite(cfg *config.Config, profile *content.Profile, st *store.Store) (*site, error) {
	adm, err := newAdmin(cfg, st)
	if err != nil {
		return nil, err
	}
	term := termws.NewServer(termws.Options{
		Profile:        profile,
		Recorder:       st,
		NavigateDelay:  cfg.NavigateDelay,
		ExitDelay:      cfg.ExitDelay,
		NextRoundDelay: cfg.NextRoundDelay,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	return &site{cfg: cfg, profile: profile, store: st, admin: adm, term: term}, nil
}

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"date": func(t time.Time) string { return t.Format("2006-01-02 15:04") },
}

func (s *site) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(), metrics.GinMiddleware(), s.admin.visitorTrackingMiddleware())

	tmpl := template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	r.Static("/static", s.cfg.StaticDir)

	// Home page route
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"owner":    s.profile.Owner,
			"aboutMe":  AboutMe,
			"projects": Projects,
			"links":    s.profile.Links,
			"commands": visibleCommands(),
		})
	})

	r.GET("/healthz", func(c *gin.Context) {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "terminal_sessions": s.term.Count()})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if resume := s.profile.Resume; resume.Path != "" {
		r.GET(resume.Path, func(c *gin.Context) {
			if _, err := os.Stat(s.cfg.ResumeFile); err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "resume not available"})
				return
			}
			c.FileAttachment(s.cfg.ResumeFile, resume.Filename)
		})
	}

	r.GET("/terminal/ws", gin.WrapH(s.term))
	r.GET("/api/terminal/reference", func(c *gin.Context) {
		c.JSON(http.StatusOK, visibleCommands())
	})

	s.admin.setupAdminRoutes(r)
	return r
}

func visibleCommands() []terminal.Command {
	return slices.DeleteFunc(terminal.Reference(), func(c terminal.Command) bool {
		return c.Hidden
	})
}
