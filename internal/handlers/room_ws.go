// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/jason-s-yu/sweeper/internal/auth"
	"github.com/jason-s-yu/sweeper/internal/gateway"
	"github.com/jason-s-yu/sweeper/internal/middleware"
	"github.com/jason-s-yu/sweeper/internal/room"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Subprotocol must be requested by clients of the room websocket.
const Subprotocol = "minesweeper"

const (
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second

	// Inbound messages per connection: a burst of 10, refilled every 100ms.
	messageInterval = 100 * time.Millisecond
	messageBurst    = 10
)

// WSOptions tune the room websocket.
type WSOptions struct {
	OriginPatterns []string
	ReadLimit      int64
	// Shutdown, when closed, closes every socket with ServerShutdownError.
	Shutdown <-chan struct{}
}

// RoomWSHandler upgrades the request and bridges the socket to the gateway. Guests connect
// anonymously; a valid auth token links the connection to an account so finished matches
// are credited to it.
func RoomWSHandler(logger *logrus.Logger, gw *gateway.Gateway, opts WSOptions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != Subprotocol {
			c.Close(BadSubprotocolError, "client must speak the minesweeper subprotocol")
			return
		}
		if opts.ReadLimit > 0 {
			c.SetReadLimit(opts.ReadLimit)
		}

		userID := uuid.Nil
		if token := tokenFromRequest(r); token != "" {
			claims, err := auth.AuthenticateJWT(token)
			if err != nil {
				c.Close(InvalidAuthTokenError, "invalid auth token")
				return
			}
			userID, _ = claims.UserID()
		}

		connID := uuid.New()
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path, logrus.Fields{"conn": connID, "user": userID})

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		client := gw.Connect(connID, userID)
		go writePump(ctx, cancel, c, client, opts.Shutdown, logger)
		l := rate.NewLimiter(rate.Every(messageInterval), messageBurst)
		err = readPump(ctx, c, l, gw, client, logger)

		gw.Disconnect(connID)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
	}
}

// readPump feeds inbound frames to the gateway until the socket closes, throttled by l. A
// normal closure returns nil.
func readPump(ctx context.Context, c *websocket.Conn, l *rate.Limiter, gw *gateway.Gateway, client *gateway.Client, logger *logrus.Logger) error {
	for {
		if err := l.Wait(ctx); err != nil {
			return nil
		}
		typ, msg, err := c.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		if typ != websocket.MessageText {
			logger.Debugf("ignoring non-text frame from %s", client.ID)
			continue
		}

		in, err := gateway.DecodeInbound(msg)
		if err != nil {
			client.Write(room.ErrorEvent(err))
			continue
		}
		gw.Handle(client.ID, in)
	}
}

// writePump drains the client's outbox onto the socket and keeps the connection alive with
// pings. Any write failure cancels the connection.
func writePump(ctx context.Context, cancel context.CancelFunc, c *websocket.Conn, client *gateway.Client, shutdown <-chan struct{}, logger *logrus.Logger) {
	defer cancel()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-shutdown:
			c.Close(ServerShutdownError, "server shutting down")
			return
		case ev, ok := <-client.Outbox():
			if !ok {
				c.Close(websocket.StatusNormalClosure, "")
				return
			}
			writeCtx, cancelWrite := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, c, ev)
			cancelWrite()
			if err != nil {
				logger.Warnf("failed to write %s to %s: %v", ev.Type, client.ID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancelPing := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancelPing()
			if err != nil {
				logger.Warnf("ping to %s failed: %v", client.ID, err)
				return
			}
		}
	}
}
