// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-xray-sdk-go/strategy/ctxmissing"
	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"conference-desk/config"
	"conference-desk/controllers"
	"conference-desk/events"
	"conference-desk/logger"
	"conference-desk/metrics"
	"conference-desk/middleware"
	"conference-desk/models"
	"conference-desk/services"
	"conference-desk/store"
	"conference-desk/websocket"
)

const scannerTimeout = 2 * time.Minute

// publisher is the event sink with a shutdown hook.
type publisher interface {
	services.EventPublisher
	Close()
}

// app holds everything the router needs.
type app struct {
	auth          *controllers.AuthController
	slots         *controllers.SlotController
	registrations *controllers.RegistrationController
	participants  *controllers.ParticipantController
	scan          *controllers.ScanController
	admin         *controllers.AdminController
	hub           *websocket.Hub
	heartbeat     *HeartbeatManager
}

func main() {
	if err := run(); err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	if err := logger.InitLogger(cfg.LogDir); err != nil {
		return err
	}
	logger.SetLogLevel(cfg.Env)
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ------ storage ------
	connectCtx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
	client, repo, err := store.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dcancel()
		if err := client.Disconnect(dctx); err != nil {
			logger.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()
	indexCtx, cancel := context.WithTimeout(ctx, cfg.MongoTimeout)
	err = repo.EnsureIndexes(indexCtx)
	cancel()
	if err != nil {
		return err
	}

	// ------ metrics and tracing ------
	var (
		slotMetrics   services.SlotMetrics
		hubMetrics    websocket.ConnectionMetrics
		actionMetrics controllers.ActionMetrics
	)
	if cfg.TracingEnabled {
		if err := xray.Configure(xray.Config{ContextMissingStrategy: ctxmissing.NewDefaultIgnoreErrorStrategy()}); err != nil {
			return err
		}
	}
	if cfg.MetricsEnabled {
		cw, err := metrics.NewCloudWatch(cfg.AWSRegion, cfg.TracingEnabled)
		if err != nil {
			return err
		}
		defer cw.Flush()
		slotMetrics, hubMetrics, actionMetrics = cw, cw, cw
	}

	// ------ events ------
	var pub publisher = events.Noop{}
	if cfg.EventsEnabled {
		rabbit, err := events.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			return err
		}
		pub = rabbit
	}
	defer pub.Close()

	// ------ services ------
	ledger := services.NewLedger(cfg.Capacity)
	counter := services.NewRegistrationCounter(repo)
	slotSvc := services.NewSlotService(ledger, counter, slotMetrics)
	if cfg.Env == "production" && cfg.QRSigningSecret == "change-me-too" {
		logger.Warn().Msg("QR_SIGNING_SECRET is the default; badges can be forged")
	}
	qrSvc := services.NewQRService(repo, cfg.QRSigningSecret, cfg.QRSize)
	regSvc := services.NewRegistrationService(repo, slotSvc, qrSvc, pub)
	checkinSvc := services.NewCheckinService(repo, pub, cfg.Location())

	// ------ dashboards ------
	hub := websocket.NewHub(cfg.AllowedOrigins, hubMetrics, func(ctx context.Context) (interface{}, error) {
		stats, err := slotSvc.Stats(ctx)
		if err != nil {
			return nil, err
		}
		return stats, nil
	})
	go hub.Run(ctx)
	notifier := controllers.NewDashboardNotifier(slotSvc, hub, actionMetrics)
	defer notifier.Wait()

	heartbeat := NewHeartbeatManager(scannerTimeout)
	go heartbeat.CleanupInactiveSessions(ctx)

	router := setupRouter(cfg, &app{
		auth: controllers.NewAuthController(func() (*models.StaffCreds, error) {
			return controllers.LoadStaffCreds(cfg.StaffCredentialsPath)
		}),
		slots:         controllers.NewSlotController(slotSvc),
		registrations: controllers.NewRegistrationController(regSvc, notifier),
		participants:  controllers.NewParticipantController(qrSvc),
		scan:          controllers.NewScanController(qrSvc, checkinSvc, notifier),
		admin:         controllers.NewAdminController(regSvc, checkinSvc, notifier),
		hub:           hub,
		heartbeat:     heartbeat,
	})

	var handler http.Handler = router
	if cfg.TracingEnabled {
		handler = xray.Handler(xray.NewFixedSegmentNamer("conference-desk"), router)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server listening")
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

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// setupRouter registers middleware and every route.
func setupRouter(cfg *config.Config, a *app) *gin.Engine {
	controllers.RegisterValidators()

	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400, // one event day
		HttpOnly: true,
		Secure:   cfg.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("deskSession", sessionStore))

	router.GET("/health", controllers.Health)

	api := router.Group("/api")
	{
		api.POST("/auth/login", a.auth.Login)
		api.GET("/slots", a.slots.GetSlots)
		api.GET("/slots/:track", a.slots.GetTrack)
		api.POST("/registrations", a.registrations.Submit)
		api.GET("/registrations/:id", a.registrations.Get)
		api.GET("/participants/:id/qrcode", a.participants.GetQRCode)
	}

	authed := api.Group("/", middleware.AuthRequired)
	{
		authed.POST("/auth/logout", a.auth.Logout)
		authed.GET("/auth/me", a.auth.Me)
	}

	staff := api.Group("/", middleware.AuthRequired, middleware.StaffRequired())
	{
		staff.POST("/participants/:id/qrcode", a.participants.RegenerateQRCode)
		staff.POST("/scan/resolve", a.scan.Resolve)
		staff.POST("/scan/action", a.scan.Action)
		staff.POST("/scan/heartbeat", a.heartbeat.HeartbeatHandler)
	}

	admin := api.Group("/admin", middleware.AuthRequired, middleware.AdminRequired())
	{
		admin.GET("/registrations", a.admin.ListRegistrations)
		admin.GET("/registrations/:id", a.admin.GetRegistration)
		admin.PATCH("/registrations/:id/status", a.admin.UpdateStatus)
		admin.GET("/attendance", a.admin.Attendance)
		admin.GET("/scanners", a.heartbeat.ActiveHandler)
	}

	router.GET("/ws/dashboard", middleware.AuthRequired, middleware.StaffRequired(), func(c *gin.Context) {
		a.hub.ServeWs(c.Writer, c.Request, middleware.CurrentUser(c))
	})

	router.NoRoute(controllers.NotFound)
	return router
}
