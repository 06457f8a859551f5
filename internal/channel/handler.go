// Package channel serves the game channel: a WebSocket carrying JSON
// CONNECT / SEND / DISCONNECT frames, with session lifecycle delegated to
// the session interceptor.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/websocket"

	"tteoksang-game-server/internal/auth"
	"tteoksang-game-server/internal/middleware"
	"tteoksang-game-server/internal/model"
	"tteoksang-game-server/internal/service"
	"tteoksang-game-server/internal/session"
	"tteoksang-game-server/pkg/uid"
)

const maxDecodeErrorsPerConn = 3

// Lifecycle receives the CONNECT and DISCONNECT events of a connection.
type Lifecycle interface {
	Connect(ctx context.Context, conn *session.Conn, headers map[string]string) (*model.UserIdentity, error)
	Disconnect(ctx context.Context, conn *session.Conn) error
}

// GameInfo reads the live snapshot of a connected user.
type GameInfo interface {
	Info(ctx context.Context, userID string) (*model.GameSessionSnapshot, error)
}

// Handler upgrades GET requests to the game channel.
type Handler struct {
	sessions Lifecycle
	games    GameInfo
	logger   *zap.Logger
	origins  map[string]bool
	ws       websocket.Server
}

// NewHandler creates a new channel handler. Browser upgrades are accepted
// from the server's own origin and from allowedOrigins ("*" allows any).
func NewHandler(sessions Lifecycle, games GameInfo, logger *zap.Logger, allowedOrigins ...string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		sessions: sessions,
		games:    games,
		logger:   logger.Named("channel"),
		origins:  make(map[string]bool, len(allowedOrigins)),
	}
	for _, o := range allowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			h.origins[strings.ToLower(o)] = true
		}
	}
	h.ws = websocket.Server{Handler: h.serve, Handshake: h.checkOrigin}
	return h
}

// checkOrigin rejects cross-site upgrades, which would otherwise ride on the
// access token cookie. Clients that send no Origin header are not browsers
// and are let through.
func (h *Handler) checkOrigin(config *websocket.Config, req *http.Request) error {
	origin, err := websocket.Origin(config, req)
	if err != nil {
		return err
	}
	config.Origin = origin
	if origin == nil || h.origins["*"] {
		return nil
	}
	if strings.EqualFold(origin.Host, req.Host) || h.origins[strings.ToLower(origin.Scheme+"://"+origin.Host)] {
		return nil
	}
	h.logger.Warn("channel upgrade from disallowed origin",
		zap.String("origin", origin.String()),
		zap.String("remote", req.RemoteAddr),
	)
	return fmt.Errorf("origin %s not allowed", origin)
}

// ServeHTTP handles GET /ws/game
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.ws.ServeHTTP(w, r)
}

func (h *Handler) serve(ws *websocket.Conn) {
	defer ws.Close()

	// The HTTP server's read/write deadlines stay on the hijacked socket.
	_ = ws.SetDeadline(time.Time{})

	req := ws.Request()
	ctx := req.Context()

	attrs := map[string]string{}
	if userID := middleware.GetHandshakeUserID(ctx); userID != "" {
		attrs[auth.UserIDAttribute] = userID
	}
	conn := session.NewConn(uid.New(), attrs)
	log := h.logger.With(zap.String("conn_id", conn.ID()), zap.String("remote", req.RemoteAddr))

	// Covers socket EOF and read errors; a no-op once DISCONNECT was handled.
	defer func() {
		if err := h.sessions.Disconnect(ctx, conn); err != nil {
			log.Error("disconnect after channel close failed", zap.Error(err))
		}
	}()

	decodeErrors := 0
	for {
		var frame Frame
		if err := websocket.JSON.Receive(ws, &frame); err != nil {
			if isDecodeError(err) {
				decodeErrors++
				h.write(ws, log, errorFrame(CodeBadFrame, "invalid frame payload"))
				if decodeErrors >= maxDecodeErrorsPerConn {
					return
				}
				continue
			}
			if !errors.Is(err, io.EOF) {
				log.Debug("channel read failed", zap.Error(err))
			}
			return
		}
		decodeErrors = 0

		switch frame.Command {
		case CommandConnect:
			if !h.handleConnect(ctx, ws, log, conn, frame) {
				return
			}
		case CommandSend:
			h.handleSend(ctx, ws, log, conn, frame)
		case CommandDisconnect:
			h.handleDisconnect(ctx, ws, log, conn, frame)
			return
		default:
			h.write(ws, log, errorFrame(CodeUnknownCommand, "unsupported command "+frame.Command))
		}
	}
}

// handleConnect reports whether the channel stays open.
func (h *Handler) handleConnect(ctx context.Context, ws *websocket.Conn, log *zap.Logger, conn *session.Conn, frame Frame) bool {
	identity, err := h.sessions.Connect(ctx, conn, frame.Headers)
	if err != nil {
		h.write(ws, log, errorFrame(session.RejectReason(err), "connect rejected"))
		// A repeated CONNECT leaves the established session in place.
		return conn.State() == session.StateActive
	}

	h.write(ws, log, Frame{
		Command: CommandConnected,
		Headers: map[string]string{HeaderUserID: identity.UserID},
	})
	return true
}

func (h *Handler) handleSend(ctx context.Context, ws *websocket.Conn, log *zap.Logger, conn *session.Conn, frame Frame) {
	identity := conn.Identity()
	if conn.State() != session.StateActive || identity == nil {
		h.write(ws, log, errorFrame(CodeNotConnected, "send before connect"))
		return
	}

	destination := frame.Header(HeaderDestination)
	if destination != DestinationGameInfo {
		h.write(ws, log, errorFrame(CodeUnknownDestination, "unknown destination "+destination))
		return
	}

	snap, err := h.games.Info(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveGame) {
			h.write(ws, log, errorFrame(CodeNoActiveGame, "no active game"))
			return
		}
		log.Error("game info lookup failed", zap.String("user_id", identity.UserID), zap.Error(err))
		h.write(ws, log, errorFrame(CodeUnavailable, "game info unavailable"))
		return
	}

	body, err := json.Marshal(snap)
	if err != nil {
		log.Error("encoding game info failed", zap.Error(err))
		h.write(ws, log, errorFrame(CodeUnavailable, "game info unavailable"))
		return
	}
	h.write(ws, log, Frame{
		Command: CommandMessage,
		Headers: map[string]string{
			HeaderDestination: destination,
			HeaderContentType: "application/json",
		},
		Body: body,
	})
}

func (h *Handler) handleDisconnect(ctx context.Context, ws *websocket.Conn, log *zap.Logger, conn *session.Conn, frame Frame) {
	if err := h.sessions.Disconnect(ctx, conn); err != nil {
		log.Error("disconnect failed", zap.Error(err))
	}
	if receipt := frame.Header(HeaderReceipt); receipt != "" {
		h.write(ws, log, Frame{
			Command: CommandReceipt,
			Headers: map[string]string{HeaderReceiptID: receipt},
		})
	}
}

func (h *Handler) write(ws *websocket.Conn, log *zap.Logger, frame Frame) {
	if err := websocket.JSON.Send(ws, frame); err != nil {
		log.Debug("channel write failed", zap.String("command", frame.Command), zap.Error(err))
	}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
