// Package fiber provides a fiber access-logging middleware built on
// zerolog. It writes one line per request, to a rolling access-log file
// and optionally to the console, independent of the application log.
package fiber

import (
	"bytes"
	"io"
	"os"
	"path"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/storehub/storehub/internal/logger"
)

// Config implements fiber middleware struct.
type Config struct {
	// Next defines a function to skip this middleware when returned true.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Config of the logger.
	Config logger.Log

	// CheckAliveURI for disabling logging of check alive http calls.
	CheckAliveURI string
}

// New creates a new fiber access logging middleware using zerolog.
func New(cfg Config) fiber.Handler {
	var (
		writers    []io.Writer
		once       sync.Once
		errHandler fiber.ErrorHandler
	)

	if cfg.Config.File.Enabled {
		writers = append(writers, newRollingAccessFile(&cfg.Config))
	}

	if cfg.Config.Console.Enabled && cfg.Config.EnableAccessLogToConsole {
		if cfg.Config.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				NoColor:      false,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{"level"},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	accessLogger := zerolog.New(
		zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(ctx *fiber.Ctx) error {
		// Don't execute middleware if Next returns true
		if cfg.Next != nil && cfg.Next(ctx) {
			return ctx.Next()
		}

		// set error handler once
		once.Do(func() {
			errHandler = ctx.App().ErrorHandler
		})

		start := time.Now()

		// Handle request, store err for logging
		chainErr := ctx.Next()
		if chainErr != nil {
			if errH := errHandler(ctx, chainErr); errH != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError) //nolint:errcheck // ok here
			}
		}

		elapsed := time.Since(start).Seconds()

		URI := ctx.Request().RequestURI()
		// do not log checkalive URI
		if cfg.Config.DisableCheckAlive && bytes.Equal(URI, []byte(cfg.CheckAliveURI)) {
			return nil
		}

		// Important note:
		// fiber uses fasthttp to normalize urls.
		// for example a url path like /2//test/2 will be normalized to /2/test/2
		// But for logging we need the unchanged url.
		p := ctx.Path()
		if len(ctx.Queries()) > 0 {
			p = p + "?" + string(ctx.Request().URI().QueryString())
		}

		requestID, _ := ctx.Locals("requestID").(string)

		loggerContext := accessLogger.Log().Str("IP", ctx.IP()).
			Int("status", ctx.Response().StatusCode()).
			Float64("elapsed", elapsed).
			Str("URI", p).
			Str("method", ctx.Method()).
			Str("request_id", requestID).
			Bytes("host", ctx.Request().Host()).
			Str(fiber.HeaderXForwardedFor, ctx.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, ctx.Get(fiber.HeaderUserAgent))

		if chainErr != nil {
			loggerContext.Err(chainErr)
		}

		loggerContext.Send()

		return nil
	}
}

// newRollingAccessFile uses lumberjack to create file based access log.
func newRollingAccessFile(cfg *logger.Log) io.Writer {
	if cfg.File.Path != "" {
		if err := os.MkdirAll(cfg.File.Path, 0o750); err != nil {
			log.Error().Err(err).Str("path", cfg.File.Path).Msg("can't create log directory")

			return nil
		}
	}

	return &lumberjack.Logger{
		Filename:   path.Join(cfg.File.Path, cfg.File.AccessLog),
		MaxSize:    cfg.File.AccessMaxSize,
		MaxAge:     cfg.File.AccessMaxAge,
		MaxBackups: cfg.File.AccessMaxBackups,
		LocalTime:  false,
		Compress:   false,
	}
}
