package gateway

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/covechat/cove/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 64 << 10
)

// Client owns one WebSocket connection: a read loop that feeds the
// dispatcher and a single writer goroutine draining the send queue. Nothing
// writes to the socket except the writer.
type Client struct {
	sess *Session
	ws   *websocket.Conn
	srv  *Server

	send      chan []byte
	closeOnce sync.Once
	done      chan struct{}
}

func newClient(sess *Session, ws *websocket.Conn, srv *Server, queueSize int) *Client {
	c := &Client{
		sess: sess,
		ws:   ws,
		srv:  srv,
		send: make(chan []byte, queueSize),
		done: make(chan struct{}),
	}
	sess.client = c
	return c
}

func (c *Client) Session() *Session { return c.sess }

// enqueue queues an outbound payload without blocking. A full queue means a
// slow client; the frame is dropped and counted against it in the log.
func (c *Client) enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		logger.Warnf("[ws] send queue full, drop frame conn=%s user=%s", c.sess.ConnID, c.sess.UserID)
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
	})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// readPump is the connection's event loop. It returns on any read error
// (peer close, timeout, protocol error); the caller runs disconnect cleanup
// exactly once after it returns.
func (c *Client) readPump() {
	c.ws.SetReadLimit(maxFrameSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Debugf("[ws] peer closed conn=%s err=%v", c.sess.ConnID, err)
			} else if ne, ok := err.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s", c.sess.ConnID)
			} else {
				logger.Infof("[ws] read error conn=%s err=%v", c.sess.ConnID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrame(data)
		if perr != nil {
			c.srv.sendError(c, perr)
			continue
		}

		h := c.srv.disp.Get(frame.Event)
		if h == nil {
			logger.Debugf("[ws] no handler event=%s conn=%s", frame.Event, c.sess.ConnID)
			c.srv.sendErrorMsg(c, "unknown event: "+frame.Event)
			continue
		}
		// Handler failures answer the requester only; the loop stays up.
		if err := h(c, frame); err != nil {
			c.srv.sendError(c, err)
		}
	}
}
