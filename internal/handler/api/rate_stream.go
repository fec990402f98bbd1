package api

import (
	"net/http"
	"time"

	"MyPay/internal/domain/service"
	xlogger "MyPay/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// RateStreamHandler pushes the cached conversion rate over a websocket.
type RateStreamHandler struct {
	logger   *xlogger.Logger
	rates    service.RateProvider
	interval time.Duration
	upgrader websocket.Upgrader
}

func NewRateStreamHandler(logger *xlogger.Logger, rates service.RateProvider, interval time.Duration) *RateStreamHandler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &RateStreamHandler{
		logger:   logger,
		rates:    rates,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *RateStreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/rate", h.Stream)
}

// Stream sends the rate on connect and then every interval until the client leaves.
func (h *RateStreamHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx := c.Request().Context()
	closed := make(chan struct{})

	// read loop: only control frames are expected
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() error {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(NewRateResponse(h.rates.Rate(ctx)))
	}
	if err := send(); err != nil {
		return nil
	}

	push := time.NewTicker(h.interval)
	defer push.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return nil
		case <-ctx.Done():
			return nil
		case <-push.C:
			if err := send(); err != nil {
				h.logger.Debug("websocket write", xlogger.Error(err))
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
