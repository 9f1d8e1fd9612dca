package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EnesGoktekin/detective-ai/internal/errors"
)

func (app *application) configureAndStartServer(ctx context.Context, addr string) error {
	var err error
	shutdownComplete := make(chan struct{})
	idleTimeout := time.Minute
	shutdownTimeout := 5 * time.Second
	// Write timeout has to cover a full model round-trip on the chat endpoint.
	writeTimeout := time.Minute
	srv := &http.Server{
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
		Handler:           app.routes(),
		IdleTimeout:       idleTimeout,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: time.Second,
	}
	go func() {
		sigint := make(chan os.Signal, 1)

		signal.Notify(sigint, os.Interrupt)
		signal.Notify(sigint, syscall.SIGTERM)

		<-sigint
		app.logger.LogAttrs(ctx, slog.LevelInfo, "shutting down server")

		var shutdownContext context.Context
		var cancel context.CancelFunc
		shutdownContext, cancel = context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err = srv.Shutdown(shutdownContext); err != nil {
			err = errors.Wrap(err, "shutdown server")
			app.logger.LogAttrs(ctx, slog.LevelError, "error shutting down server", errors.SlogError(err))
		}
		close(shutdownComplete)
	}()

	var listener net.Listener
	if listener, err = net.Listen("tcp", addr); err != nil {
		return errors.Wrap(err, "TCP listen")
	}
	app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server", slog.Any("addr", listener.Addr().String()))
	if err = srv.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server serve")
	}
	<-shutdownComplete

	return nil
}
