package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const shutdownTimeout = 5 * time.Second

// NewRouter registers every endpoint of the API. socket, when set, serves /ws.
func NewRouter(ping PingHandler, games GameHandler, socket http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", ping.PingHandler)

	if socket != nil {
		mux.Handle("GET /ws", socket)
	}

	mux.HandleFunc("POST /players", games.CreatePlayer)

	mux.HandleFunc("POST /games", games.StartGame)
	mux.HandleFunc("POST /games/turn", games.MakeTurn)
	mux.HandleFunc("POST /games/reset", games.ResetGame)
	mux.HandleFunc("POST /games/leave", games.LeaveGame)
	mux.HandleFunc("GET /games/{id}", games.GetGame)
	mux.HandleFunc("GET /games/{id}/log", games.GetMoveLog)
	mux.HandleFunc("POST /games/{id}/join", games.JoinGame)

	return mux
}

// Start serves handler on port until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
