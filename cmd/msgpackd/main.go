// Command msgpackd serves a MessagePack record API backed by an in-process
// or redis store.
package main

import (
	"context"
	"errors"
	"fmt"
	stdslog "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/msgpackhttp"
	asynchook "github.com/unkn0wn-root/msgpackhttp/hooks/async"
	"github.com/unkn0wn-root/msgpackhttp/internal/config"
	"github.com/unkn0wn-root/msgpackhttp/internal/server"
	"github.com/unkn0wn-root/msgpackhttp/internal/store"
	mlogrus "github.com/unkn0wn-root/msgpackhttp/log/logrus"
	mslog "github.com/unkn0wn-root/msgpackhttp/log/slog"
	mzap "github.com/unkn0wn-root/msgpackhttp/log/zap"
	"github.com/unkn0wn-root/msgpackhttp/promhooks"
	"github.com/unkn0wn-root/msgpackhttp/sloghooks"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "msgpackd:", err)
		os.Exit(1)
	}
}

func run() error {
	fs := pflag.NewFlagSet("msgpackd", pflag.ContinueOnError)
	cfgPath := fs.StringP("config", "c", "", "path to TOML config")
	addr := fs.String("addr", "", "listen address (overrides config)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	zl, err := newZap(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close(context.Background()) }()

	reg := prometheus.NewRegistry()
	metrics, err := promhooks.New(reg, "msgpackd")
	if err != nil {
		return err
	}
	gwLog, logHooks := gatewayLogging(cfg.Log, zl)
	hooks := asynchook.New(msgpackhttp.MultiHooks{metrics, logHooks}, 1, 1024)
	defer hooks.Close()

	gw := msgpackhttp.New(msgpackhttp.Options{
		Config: msgpackhttp.NewConfig().Limit(cfg.Payload.Limit),
		Policy: cfg.Policy(),
		Logger: gwLog,
		Hooks:  hooks,
	})

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.New(server.Options{
			Gateway:     gw,
			Store:       st,
			UploadLimit: cfg.Payload.UploadLimit,
			Gatherer:    reg,
			Logger:      zl,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.String("store", cfg.Store.Kind),
			zap.Int64("limit", cfg.Payload.Limit),
			zap.String("policy", cfg.Policy().String()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	zl.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newZap(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

// gatewayLogging picks the Logger adapter named by cfg.Backend. The slog
// backend also gets sampled slog hooks; the others rely on metrics only.
func gatewayLogging(cfg config.LogConfig, zl *zap.Logger) (msgpackhttp.Logger, msgpackhttp.Hooks) {
	switch cfg.Backend {
	case "logrus":
		l := logrus.New()
		if lvl, err := logrus.ParseLevel(cfg.Level); err == nil {
			l.SetLevel(lvl)
		}
		l.SetFormatter(&logrus.JSONFormatter{})
		return mlogrus.LogrusLogger{E: logrus.NewEntry(l).WithField("component", "gateway")}, msgpackhttp.NopHooks{}
	case "slog":
		var lvl stdslog.Level
		_ = lvl.UnmarshalText([]byte(cfg.Level))
		sl := stdslog.New(stdslog.NewJSONHandler(os.Stderr, &stdslog.HandlerOptions{Level: lvl}))
		return mslog.Logger{L: sl}, sloghooks.New(sl, sloghooks.Options{RejectedEvery: 10})
	default:
		return mzap.ZapLogger{L: zl.Named("gateway")}, msgpackhttp.NopHooks{}
	}
}
