package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-bnb-gateway/apiservice"
	"github.com/jrsteele09/go-bnb-gateway/authapi"
	"github.com/jrsteele09/go-bnb-gateway/internal/config"
	"github.com/jrsteele09/go-bnb-gateway/internal/logging"
	"github.com/jrsteele09/go-bnb-gateway/metrics"
	"github.com/jrsteele09/go-bnb-gateway/server"
	"github.com/jrsteele09/go-bnb-gateway/sessions"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	c := config.New()
	logging.Setup(c.GetEnv(), c.GetLogLevel())

	if err := initSentry(c); err != nil {
		log.Err(err).Msg("Sentry disabled")
	}
	defer sentry.Flush(2 * time.Second)

	stop := stopSignals()
	defer signal.Stop(stop)

	for {
		if err := run(c, stop); err != nil {
			log.Err(err).Msg("Error running server, restarting")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run(c config.Config, stop <-chan os.Signal) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			sentry.CurrentHub().Recover(r)
			returnError = errors.New("panic recovered")
		}
	}()

	displayAppname(c.GetAppName())

	handler, err := newHandler(c)
	if err != nil {
		return fmt.Errorf("[main run] %w", err)
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(srv) }()

	select {
	case err := <-errs:
		return err
	case <-stop:
	}
	return shutdown(srv)
}

func newHandler(c config.Config) (http.Handler, error) {
	httpClient := &http.Client{Timeout: c.GetAPITimeout()}
	authClient := authapi.NewClient(c.GetAPIBaseURL(), httpClient)
	m := metrics.New()
	manager := sessions.NewManager(authClient, c, m)

	return server.New(c, server.Deps{
		Auth:     authClient,
		Sessions: manager,
		API:      apiservice.New(c.GetAPIBaseURL(), httpClient, manager),
		Metrics:  m,
	})
}

func initSentry(c config.Config) error {
	if c.GetSentryDSN() == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              c.GetSentryDSN(),
		Environment:      c.GetEnv(),
		AttachStacktrace: true,
	})
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

// stopSignals is registered once so restarts of run share one channel.
func stopSignals() chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
