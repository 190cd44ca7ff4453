package rest

import (
	"context"
	"log/slog"
	"net/http"
)

type PingHandler interface {
	PingHandler(w http.ResponseWriter, r *http.Request)
}

// StorageCheck reports whether the game storage answers.
type StorageCheck func(ctx context.Context) error

type pingHandler struct {
	logger *slog.Logger
	check  StorageCheck
}

// NewPingHandler answers pong while check succeeds. A nil check always succeeds.
func NewPingHandler(logger *slog.Logger, check StorageCheck) PingHandler {
	return &pingHandler{
		logger: logger,
		check:  check,
	}
}

func (that *pingHandler) PingHandler(w http.ResponseWriter, r *http.Request) {
	if that.check != nil {
		if err := that.check(r.Context()); err != nil {
			that.logger.Error("storage is unavailable", "method", "PingHandler", "error", err)
			http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}
