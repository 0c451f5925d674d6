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
	"github.com/jrsteele09/go-flexcrew-dashboard/apiclient"
	"github.com/jrsteele09/go-flexcrew-dashboard/credentials"
	"github.com/jrsteele09/go-flexcrew-dashboard/internal/config"
	"github.com/jrsteele09/go-flexcrew-dashboard/internal/logging"
	"github.com/jrsteele09/go-flexcrew-dashboard/internal/metrics"
	"github.com/jrsteele09/go-flexcrew-dashboard/server"
	"github.com/jrsteele09/go-flexcrew-dashboard/session"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Error running dashboard")
	}
	log.Info().Msg("Dashboard stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Setup(c.GetEnv(), c.GetLogLevel())
	displayAppname(c.GetAppName())

	store, err := credentials.NewFileStore(c.GetCredentialsFile(), c.GetCredentialsKey())
	if err != nil {
		return fmt.Errorf("credentials.NewFileStore: %w", err)
	}

	m := metrics.New()
	sessions, err := session.NewManager(store)
	if err != nil {
		// An unreadable store starts logged out rather than refusing to serve
		log.Warn().Err(err).Str("path", store.Path()).Msg("Starting without persisted session")
	}
	m.SetAuthenticated(sessions.IsAuthenticated())
	sessions.Subscribe(func(s session.Session) {
		m.SetAuthenticated(s.IsAuthenticated())
		log.Debug().Bool("authenticated", s.IsAuthenticated()).Str("role", s.Role).Msg("Session changed")
	})

	// The refresh call authenticates with the refresh token, never the access token
	refreshClient := &http.Client{
		Timeout:   c.GetRequestTimeout(),
		Transport: &apiclient.Transport{Source: oauth2.StaticTokenSource(&oauth2.Token{})},
	}
	refresher := session.NewRefresher(sessions, c.GetAPIBaseURL(), refreshClient,
		session.WithRefreshTimeout(c.GetRefreshTimeout()),
		session.WithRefreshMetrics(m),
	)
	client := apiclient.NewClient(c.GetAPIBaseURL(), store,
		apiclient.WithRefresher(refresher, c.GetRetryOnUnauthorized()),
		apiclient.WithTimeout(c.GetRequestTimeout()),
	)

	gate := session.NewGate(sessions, refresher)
	gate.Mount(context.Background())
	defer gate.Unmount()

	handler, err := server.New(c, server.Deps{
		Sessions: sessions,
		Gate:     gate,
		API:      client,
		Metrics:  m,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(srv)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(srv)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Dashboard listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
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
