// main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"go-hackhub/config"
	"go-hackhub/controllers"
	"go-hackhub/logger"
	"go-hackhub/metrics"
	"go-hackhub/services"
	"go-hackhub/store"
	"go-hackhub/websocket"
)

// app holds the wired components of one server process.
type app struct {
	cfg     *config.Config
	store   store.Store
	metrics metrics.Publisher
	hub     *websocket.Hub
	router  *gin.Engine
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logFile, err := logger.InitLogger(cfg.LogDir)
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger.SetLogLevel(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	pub, err := newPublisher(cfg)
	if err != nil {
		return err
	}

	a := newApp(cfg, s, pub, nil)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           a.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info.Printf("[main] Listening on :%s (env=%s, store=%s)", cfg.Port, cfg.Env, cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info.Println("[main] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if cw, ok := pub.(*metrics.CloudWatch); ok {
		cw.Flush()
	}
	return nil
}

// openStore selects the document store backend named by cfg.DBDriver.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "", "memory":
		logger.Warn.Println("[openStore] Using the in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil
	default:
		s, err := store.OpenSQL(ctx, cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		logger.Info.Printf("[openStore] Opened %s document store", cfg.DBDriver)
		return s, nil
	}
}

// newPublisher returns the CloudWatch publisher when metrics are enabled.
func newPublisher(cfg *config.Config) (metrics.Publisher, error) {
	if !cfg.MetricsEnabled {
		return metrics.Noop{}, nil
	}
	cw, err := metrics.NewCloudWatch(cfg.MetricsNamespace)
	if err != nil {
		return nil, fmt.Errorf("cloudwatch: %w", err)
	}
	return cw, nil
}

// newApp wires services, controllers and routes. A nil sessionStore selects
// the server-side memstore.
func newApp(cfg *config.Config, s store.Store, pub metrics.Publisher, sessionStore sessions.Store) *app {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	hub := websocket.NewHub(cfg.AllowedOrigins, pub)
	notifier := websocket.NewMessenger(hub)
	locks := services.NewKeyedMutex()

	users := services.NewUserService(s)
	hackathons := services.NewHackathonService(s, notifier, pub, locks, cfg.ApplicationURL)
	attendants := services.NewAttendantService(s, notifier, pub, locks)

	router := gin.Default()

	if len(cfg.AllowedOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
		corsConfig.AllowCredentials = true
		router.Use(cors.New(corsConfig))
	}

	if sessionStore == nil {
		sessionStore = memstore.NewStore([]byte(cfg.SessionSecret))
	}
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(cfg.SessionName, sessionStore))

	controllers.RegisterRoutes(router, controllers.Controllers{
		Auth:          controllers.NewAuthController(users),
		Users:         controllers.NewUserController(users),
		Hackathons:    controllers.NewHackathonController(hackathons, attendants),
		Attendants:    controllers.NewAttendantController(attendants),
		Notifications: controllers.NewNotificationController(hub),
	})

	return &app{cfg: cfg, store: s, metrics: pub, hub: hub, router: router}
}

// handler returns the root HTTP handler, traced by X-Ray when enabled.
func (a *app) handler() http.Handler {
	if a.cfg.TracingEnabled {
		logger.Info.Println("[app.handler] X-Ray tracing enabled")
		return xray.Handler(xray.NewFixedSegmentNamer("hackhub"), a.router)
	}
	return a.router
}
