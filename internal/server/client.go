package server

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/engine"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/internal/network"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/api"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/logger"
	"github.com/arcade-cabinet/dragons-labyrinth-sub003/pkg/utils"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client — посредник между WebSocket-соединением коллаборатора и ядром.
// Одно соединение = один подписчик шины событий.
type Client struct {
	Core *engine.Service
	Conn *websocket.Conn

	ID   string
	Role string

	sub *network.Subscriber
}

func NewClient(core *engine.Service, conn *websocket.Conn) *Client {
	return &Client{Core: core, Conn: conn}
}

// readPump выполняет handshake и читает команды коллаборатора.
func (c *Client) readPump() {
	defer func() {
		if c.ID != "" {
			c.Core.Hub.Unregister(c.ID)
		}
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("close websocket")
		}
		logger.Log.WithField("collaborator", c.ID).Info("коллаборатор отключен")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.WithError(err).Warn("set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// 1. HANDSHAKE: первое сообщение обязано нести роль.
	var hello api.ClientCommand
	if err := c.Conn.ReadJSON(&hello); err != nil {
		logger.Log.Warn("handshake failed")
		return
	}
	switch hello.Role {
	case api.RoleRenderer, api.RoleAudio, api.RolePsychology, api.RoleObserver:
	default:
		logger.Log.WithField("role", hello.Role).Warn("неизвестная роль, соединение закрыто")
		return
	}

	c.Role = hello.Role
	c.ID = hello.Token
	if c.ID == "" {
		c.ID = utils.GenerateID()
	}

	// 2. ПОДПИСКА НА СОБЫТИЯ ЯДРА
	c.sub = c.Core.Hub.Register(c.ID, c.Role)
	go c.writePump()

	logger.Log.WithFields(logrus.Fields{
		"collaborator": c.ID,
		"role":         c.Role,
	}).Info("коллаборатор подключен")

	// INIT от имени подписчика (триггер первого снимка состояния)
	c.Core.ProcessCommand(api.ClientCommand{Action: "INIT", Token: c.ID})

	// 3. ЦИКЛ ЧТЕНИЯ КОМАНД
	for {
		var cmd api.ClientCommand
		if err := c.Conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.WithError(err).Error("websocket read")
			}
			return
		}
		cmd.Token = c.ID
		c.Core.ProcessCommand(cmd)
	}
}

// writePump пересылает события ядра коллаборатору + ping.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("close websocket in writePump")
		}
	}()

	for {
		select {
		case <-c.sub.Events():
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("set write deadline")
			}
			for _, ev := range c.sub.Drain() {
				if err := c.Conn.WriteJSON(ev); err != nil {
					logger.Log.WithError(err).Debug("write event")
					return
				}
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
