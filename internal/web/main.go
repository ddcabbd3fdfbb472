package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/storehub/storehub/internal/auth"
	"github.com/storehub/storehub/internal/cache"
	"github.com/storehub/storehub/internal/config"
	"github.com/storehub/storehub/internal/group"
	fiberlogger "github.com/storehub/storehub/internal/logger/adapter/fiber"
	"github.com/storehub/storehub/internal/rma"
	grouphandler "github.com/storehub/storehub/internal/web/handler/group"
	"github.com/storehub/storehub/internal/web/handler/login"
	rmahandler "github.com/storehub/storehub/internal/web/handler/rma"
	storehandler "github.com/storehub/storehub/internal/web/handler/store"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
}

//nolint:gochecknoglobals
var httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "storehub_http_requests_total",
	Help: "HTTP requests processed, by method, route and status.",
}, []string{"method", "route", "status"})

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.DrainTime(),
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.DrainTime()) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration. The cache
// is injected so tests and the daemon share one instance with the
// services mutating it.
func New(cfg *config.Config, db *gorm.DB, c *cache.Service) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	if c == nil {
		panic("cache cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "StoreHub",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	service := &Service{
		cfg: cfg,
		App: app,
		db:  db,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	app.Use(requestID)
	app.Use(metrics)
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: "/healthz",
	}))

	app.Get("/healthz", func(ctx *fiber.Ctx) error {
		if !service.alive.Load() {
			return ctx.SendStatus(fiber.StatusServiceUnavailable)
		}

		return ctx.SendString("ok")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	resolver := auth.NewResolver(db, c, cfg.Auth.Secret, cfg.Auth.SignAlgorithm())
	groups := group.NewService(db, c)
	engine := rma.NewEngine(db)

	// login is the only public API endpoint
	if err := login.Handler.Init(app, cfg, db, resolver); err != nil {
		log.Fatal().Err(err).Msg("failed to init login handler")
	}

	api := app.Group("/api", resolver.Middleware())

	if err := grouphandler.Handler.Init(api, cfg, db, resolver, groups); err != nil {
		log.Fatal().Err(err).Msg("failed to init group handler")
	}

	if err := storehandler.Handler.Init(api, cfg, db, c); err != nil {
		log.Fatal().Err(err).Msg("failed to init store handler")
	}

	if err := rmahandler.Handler.Init(api, cfg, db, resolver, engine); err != nil {
		log.Fatal().Err(err).Msg("failed to init rma handler")
	}

	return service
}

// requestID tags every request with an id, honoring one supplied by a
// proxy upstream.
func requestID(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}

	c.Locals("requestID", id)
	c.Set(fiber.HeaderXRequestID, id)

	return c.Next()
}

// metrics feeds the request counter. Routes are labeled by their
// registered pattern, not the raw path, to keep cardinality bounded.
func metrics(c *fiber.Ctx) error {
	err := c.Next()

	httpRequests.WithLabelValues(
		c.Method(),
		c.Route().Path,
		strconv.Itoa(c.Response().StatusCode()),
	).Inc()

	return err
}
