package websocket

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rocketscienceinc/kalah-backend/internal/entity"
	"github.com/rocketscienceinc/kalah-backend/internal/kalah"
	"github.com/rocketscienceinc/kalah-backend/internal/pkg"
	"github.com/rocketscienceinc/kalah-backend/internal/service"
)

type playerService interface {
	CreatePlayer(ctx context.Context) (*entity.Player, error)
	GetPlayerByID(ctx context.Context, id string) (*entity.Player, error)
}

type gamePlayService interface {
	StartGame(ctx context.Context, playerID, gameType, difficulty string) (*entity.Game, error)
	JoinGameByID(ctx context.Context, gameID, playerID string) (*entity.Game, error)

	GetGameByID(ctx context.Context, gameID string) (*entity.Game, error)
	GetMoveLog(ctx context.Context, gameID string) ([]kalah.MoveRecord, error)

	MakeTurn(ctx context.Context, playerID string, pit int) (*service.TurnResult, error)
	ResetGame(ctx context.Context, playerID string) (*entity.Game, error)
	LeaveGame(ctx context.Context, playerID string) error
}

type handlerFunc func(ctx context.Context, c *conn, req *RequestPayload) error

// conn is one upgraded client connection. Writes may come from other
// connections' goroutines when a game update is broadcast.
type conn struct {
	netConn net.Conn
	reader  *bufio.Reader

	mu     sync.Mutex
	writer *bufio.Writer

	// set by connect, only touched by the reading goroutine
	playerID string
}

func (that *conn) write(opCode byte, payload []byte) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	return writeFrame(that.writer, opCode, payload)
}

// Server pushes game updates to every connected player of a game.
type Server struct {
	logger *slog.Logger

	players  playerService
	gamePlay gamePlayService

	handlers map[string]handlerFunc

	connectionsMutex sync.RWMutex
	connections      map[string]*conn
	open             map[*conn]struct{}
}

func New(logger *slog.Logger, players playerService, gamePlay gamePlayService) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		players:  players,
		gamePlay: gamePlay,

		connections: make(map[string]*conn),
		open:        make(map[*conn]struct{}),
	}

	server.handlers = map[string]handlerFunc{
		actionConnect:   server.handleConnect,
		actionNewGame:   server.handleNewGame,
		actionJoinGame:  server.handleJoinGame,
		actionGameTurn:  server.handleGameTurn,
		actionGameReset: server.handleGameReset,
		actionGameLeave: server.handleGameLeave,
		actionGameLog:   server.handleGameLog,
	}

	return server
}

// ServeHTTP upgrades the connection to WebSocket and serves it until the client goes away.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeConnection")

	key := req.Header.Get("Sec-WebSocket-Key")
	if !strings.EqualFold(req.Header.Get("Upgrade"), "websocket") || key == "" {
		http.Error(writer, "not a websocket upgrade", http.StatusBadRequest)
		return
	}

	hijacker, ok := writer.(http.Hijacker)
	if !ok {
		log.Error("web server does not support hijacking")
		http.Error(writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	netConn, bufrw, err := hijacker.Hijack()
	if err != nil {
		log.Error("failed to hijack connection", "error", err)
		return
	}

	c := &conn{netConn: netConn, reader: bufrw.Reader, writer: bufrw.Writer}
	defer that.disconnect(c)

	if err = netConn.SetDeadline(time.Time{}); err != nil {
		log.Error("failed to clear deadline", "error", err)
		return
	}

	_, err = fmt.Fprintf(bufrw,
		"HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\nConnection: Upgrade\r\nSec-WebSocket-Accept: %s\r\n\r\n",
		pkg.GenerateAcceptKey(key))
	if err == nil {
		err = bufrw.Flush()
	}
	if err != nil {
		log.Error("failed to write handshake", "error", err)
		return
	}

	that.connectionsMutex.Lock()
	that.open[c] = struct{}{}
	that.connectionsMutex.Unlock()

	log.Debug("WebSocket connection established")

	that.handleMessages(req.Context(), c)
}

// Close drops every open connection.
func (that *Server) Close() {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for c := range that.open {
		_ = c.netConn.Close()
	}
}

// handleMessages - processes messages from the client.
func (that *Server) handleMessages(ctx context.Context, c *conn) {
	log := that.logger.With("method", "handleMessages")

	for {
		f, err := readFrame(c.reader)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Debug("connection dropped", "error", err)
			}
			return
		}

		switch f.opCode {
		case opClose:
			_ = c.write(opClose, nil)
			return
		case opPing:
			_ = c.write(opPong, f.payload)
			continue
		case opText:
		default:
			continue
		}

		if !f.isFin {
			that.sendError(c, actionError, errors.New("fragmented messages are not supported"))
			continue
		}

		var message Message
		if err = json.Unmarshal(f.payload, &message); err != nil {
			that.sendError(c, actionError, fmt.Errorf("invalid message: %w", err))
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			that.sendError(c, actionError, fmt.Errorf("unknown action %q", message.Action))
			continue
		}

		var req RequestPayload
		if len(message.Payload) > 0 {
			if err = json.Unmarshal(message.Payload, &req); err != nil {
				that.sendError(c, message.Action, fmt.Errorf("invalid payload: %w", err))
				continue
			}
		}

		if err = handler(ctx, c, &req); err != nil {
			log.Debug("action failed", "action", message.Action, "playerID", c.playerID, "error", err)
			that.sendError(c, message.Action, err)
		}
	}
}

func (that *Server) disconnect(c *conn) {
	that.connectionsMutex.Lock()
	delete(that.open, c)
	if c.playerID != "" && that.connections[c.playerID] == c {
		delete(that.connections, c.playerID)
	}
	that.connectionsMutex.Unlock()

	_ = c.netConn.Close()

	that.logger.Debug("WebSocket connection closed", "playerID", c.playerID)
}

func (that *Server) bind(c *conn, playerID string) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if c.playerID != "" && that.connections[c.playerID] == c {
		delete(that.connections, c.playerID)
	}

	c.playerID = playerID
	that.connections[playerID] = c
}

func (that *Server) connection(playerID string) (*conn, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	c, ok := that.connections[playerID]

	return c, ok
}

// broadcast sends payload to every connected human player of game, each with its own seat.
func (that *Server) broadcast(action string, game *entity.Game, payload ResponsePayload) {
	log := that.logger.With("method", "broadcast", "gameID", game.ID)

	payload.Game = game
	for _, player := range game.Players {
		if player.IsBot() {
			continue
		}

		c, ok := that.connection(player.ID)
		if !ok {
			continue
		}

		payload.Player = player
		if err := that.send(c, action, payload); err != nil {
			log.Error("failed to send game update", "playerID", player.ID, "error", err)
		}
	}
}

func (that *Server) send(c *conn, action string, payload ResponsePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	response, err := json.Marshal(Message{Action: action, Payload: body})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	return c.write(opText, response)
}

func (that *Server) sendError(c *conn, action string, cause error) {
	if err := that.send(c, action, ResponsePayload{Error: cause.Error()}); err != nil {
		that.logger.Error("failed to send error", "action", action, "error", err)
	}
}
