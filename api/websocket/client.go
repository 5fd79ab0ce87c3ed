package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/OldStager01/vitalwatch/internal/logger"
	"github.com/OldStager01/vitalwatch/pkg/validation"
)

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	patientID string
	mu        sync.RWMutex
}

type IncomingMessage struct {
	Type      string `json:"type"`
	PatientID string `json:"patient_id,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn, patientID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, hub.settings.ClientBuffer),
		patientID: patientID,
	}
}

func (c *Client) PatientID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.patientID
}

func (c *Client) setPatientID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patientID = id
}

func (c *Client) wants(patientID string, wardWide bool) bool {
	current := c.PatientID()
	if current == "" {
		return wardWide
	}
	return current == patientID
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	settings := c.hub.settings
	c.conn.SetReadLimit(settings.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(settings.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(settings.PongTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.handleMessage(&msg)
		}
	}
}

func (c *Client) WritePump() {
	settings := c.hub.settings
	ticker := time.NewTicker(settings.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(settings.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// one JSON document per frame
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(settings.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		if err := validation.ValidatePatientID(msg.PatientID); err != nil {
			c.sendConfirmation("rejected", msg.PatientID)
			return
		}
		c.setPatientID(msg.PatientID)
		logger.WithPatient(msg.PatientID).Info("Client subscribed to patient")
		c.sendConfirmation("subscribed", msg.PatientID)
	case "unsubscribe":
		old := c.PatientID()
		c.setPatientID("")
		logger.WithPatient(old).Info("Client unsubscribed from patient")
		c.sendConfirmation("unsubscribed", old)
	}
}

func (c *Client) sendConfirmation(action, patientID string) {
	msg := NewMessage(MessageTypeSubscription, patientID, map[string]string{"action": action})
	select {
	case c.send <- msg.JSON():
	default:
		logger.Warn("Client send channel full, dropping confirmation")
	}
}

// ServeWebSocket upgrades the request. ?patient_id= subscribes immediately;
// without it the client receives ward-wide alerts.
func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  hub.settings.ReadBufferSize,
		WriteBufferSize: hub.settings.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true // origin is enforced by the CORS middleware
		},
	}

	return func(c *gin.Context) {
		patientID := c.Query("patient_id")
		if patientID != "" {
			if err := validation.ValidatePatientID(patientID); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
		}
		if hub.Full() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many websocket connections"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(hub, conn, patientID)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
