package echoapi

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa/backend/core/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// stream pushes live events over a websocket. Each client gets a buffered
// fan-out channel; a slow client drops events rather than blocking the
// publishers.
func (api *realtimeApi) stream(ctx echo.Context) error {
	ws, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return errors.Wrap(err, "upgrading connection")
	}
	defer ws.Close()

	events := make(chan realtime.LiveEvent, 64)
	unsubscribe := api.svc.Subscribe("*", func(ev realtime.LiveEvent) {
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	// drain the client side to observe the close handshake
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return nil
		case ev := <-events:
			if err := ws.WriteJSON(ev); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					api.logger.Warn(fmt.Sprintf("writing live event: %v", err))
				}
				return nil
			}
		}
	}
}
