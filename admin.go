// admin.go - privacy-conscious visitor tracking and the admin dashboard
package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jngonzales/portfolio/internal/config"
	"github.com/jngonzales/portfolio/internal/logging"
	"github.com/jngonzales/portfolio/internal/metrics"
	"github.com/jngonzales/portfolio/internal/store"
)

const (
	adminCookie      = "admin_token"
	adminSessionTTL  = 24 * time.Hour
	visitorRetention = 365 * 24 * time.Hour
	adminIssuer      = "portfolio"
)

// adminClaims holds admin JWT claims.
type adminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// admin holds the credentials and the per-process IP hashing salt.
type admin struct {
	store        *store.Store
	username     string
	passwordHash []byte
	secret       []byte
	salt         string
	secureCookie bool
}

func newAdmin(cfg *config.Config, st *store.Store) (*admin, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	salt, err := generateSalt()
	if err != nil {
		return nil, err
	}

	if cfg.DefaultCredentials {
		logging.Warn("using default admin credentials, set ADMIN_USERNAME and ADMIN_PASSWORD")
	}
	logging.Info("admin access available", zap.String("path", "/admin/login"))
	logging.Info("privacy: visitor tracking enabled with hashed IP addresses")

	return &admin{
		store:        st,
		username:     cfg.AdminUsername,
		passwordHash: hash,
		secret:       []byte(cfg.JWTSecret),
		salt:         salt,
		secureCookie: strings.HasPrefix(cfg.SiteURL, "https://"),
	}, nil
}

func generateSalt() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// hashIP hashes an IP address for privacy compliance (consistent per IP
// for the lifetime of the process).
func (a *admin) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + a.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func (a *admin) checkCredentials(username, password string) bool {
	// bcrypt runs for every attempt, known username or not.
	err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	return err == nil && username == a.username
}

func (a *admin) issueToken(username string, now time.Time) (string, error) {
	claims := &adminClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(adminSessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    adminIssuer,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *admin) validateToken(tokenStr string) (*adminClaims, error) {
	claims := &adminClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(adminIssuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Username != a.username {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// authMiddleware redirects to the login page unless the admin cookie holds
// a valid token.
func (a *admin) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		if _, err := a.validateToken(token); err != nil {
			logging.Debug("rejected admin token", zap.Error(err))
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// visitorTrackingMiddleware records page views with hashed IPs.
func (a *admin) visitorTrackingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !trackedPath(path) || c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		hashed := a.hashIP(c.ClientIP())
		ua := c.GetHeader("User-Agent")
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.store.RecordVisit(ctx, hashed, ua, path); err != nil {
				logging.Warn("error recording visitor", zap.Error(err))
			}
		}()
		c.Next()
	}
}

// trackedPath skips static files, admin pages and machine endpoints.
func trackedPath(path string) bool {
	for _, prefix := range []string{
		"/static/", "/admin/", "/favicon", "/privacy",
		"/healthz", "/metrics", "/terminal/", "/api/",
	} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}
	return true
}

// cleanupOldVisitorData removes visits past the retention window.
func (a *admin) cleanupOldVisitorData(ctx context.Context) {
	n, err := a.store.CleanupVisitors(ctx, visitorRetention)
	if err != nil {
		logging.Error("error cleaning up old visitor data", zap.Error(err))
		return
	}
	if n > 0 {
		logging.Info("privacy cleanup removed old visitor records", zap.Int64("rows", n))
	}
}

// setupAdminRoutes registers the privacy page and every admin route.
func (a *admin) setupAdminRoutes(r *gin.Engine) {
	r.GET("/privacy", func(c *gin.Context) {
		c.HTML(http.StatusOK, "privacy.html", gin.H{
			"title": "Privacy Policy",
		})
	})

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{
			"title": "Admin Login",
		})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")
		visitor := a.hashIP(c.ClientIP())

		if !a.checkCredentials(username, password) {
			metrics.RecordAdminLogin(false)
			logging.Warn("failed admin login attempt", zap.String("visitor", visitor))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"title": "Admin Login",
				"error": "Invalid credentials",
			})
			return
		}

		token, err := a.issueToken(username, time.Now())
		if err != nil {
			logging.Error("failed to sign admin token", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to sign in",
			})
			return
		}

		metrics.RecordAdminLogin(true)
		c.SetSameSite(http.SameSiteStrictMode)
		c.SetCookie(adminCookie, token, int(adminSessionTTL.Seconds()), "/admin", "", a.secureCookie, true)
		logging.Info("admin login successful", zap.String("visitor", visitor))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", a.secureCookie, true)
		logging.Info("admin logout", zap.String("visitor", a.hashIP(c.ClientIP())))
		c.Redirect(http.StatusFound, "/admin/login")
	})

	adminGroup := r.Group("/admin")
	adminGroup.Use(a.authMiddleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			logging.Error("error loading admin stats", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
		})
	})

	adminGroup.GET("/api/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		visitors, err := a.store.RecentVisitors(c.Request.Context(), 200)
		if err != nil {
			logging.Error("error loading visitors", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visitors,
		})
	})

	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		n, err := a.store.CleanupVisitors(c.Request.Context(), visitorRetention)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Privacy cleanup failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": n})
	})

	adminGroup.GET("/export/stats", func(c *gin.Context) {
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		logging.Info("admin stats exported", zap.String("visitor", a.hashIP(c.ClientIP())))
		c.JSON(http.StatusOK, stats)
	})
}
