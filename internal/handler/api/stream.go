package api

import (
	"net/http"
	"time"

	models "FxSignals/internal/domain/models"
	xlogger "FxSignals/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	streamBuffer     = 16
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10
)

// Stream pushes the current snapshot and then every new one over a websocket.
func (h *SignalsEchoHandler) Stream(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already replied to the client.
		h.logger.Debug("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer ws.Close()

	ch, cancel := h.pub.Subscribe(streamBuffer)
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		ws.SetReadLimit(512)
		_ = ws.SetReadDeadline(time.Now().Add(streamPongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	var (
		sent bool
		last uint64
	)
	send := func(s models.State) error {
		if sent && s.Version <= last {
			return nil
		}
		sent, last = true, s.Version
		_ = ws.SetWriteDeadline(time.Now().Add(streamWriteWait))
		return ws.WriteJSON(stateResponse(s))
	}

	if err := send(h.pub.Current()); err != nil {
		return nil
	}

	for {
		select {
		case <-closed:
			return nil
		case s, ok := <-ch:
			if !ok {
				_ = ws.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(streamWriteWait))
				return nil
			}
			if err := send(s); err != nil {
				h.logger.Debug("websocket write failed", xlogger.Error(err))
				return nil
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return nil
			}
		}
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
