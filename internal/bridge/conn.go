package bridge

import (
	log "log/slog"
	"time"

	ws "github.com/gorilla/websocket"
)

type conn struct {
	ws     *ws.Conn
	url    string
	reconn uint
}

func dial(url string, reconn uint) (*conn, error) {
	log.Debug("dialing host bridge", "url", url)

	c := &conn{url: url, reconn: reconn}

	socket, _, err := ws.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	c.ws = socket

	return c, nil
}

func (c *conn) write(payload []byte) error {
	log.Debug("bridge write", "msg", string(payload))
	return c.ws.WriteMessage(ws.TextMessage, payload)
}

type incomeKind uint

const (
	connClose incomeKind = iota
	readFailure
	readOK
)

type income struct {
	kind incomeKind
	msg  []byte
	err  error
}

func (c *conn) read() income {
	_, msg, err := c.ws.ReadMessage()
	if err != nil {
		if isClosed(err) {
			return income{kind: connClose, err: err}
		}
		return income{kind: readFailure, err: err}
	}

	log.Debug("bridge read", "msg", string(msg))
	return income{kind: readOK, msg: msg}
}

// tryReconn redials until the host accepts again, pausing reconn seconds
// between attempts.
func (c *conn) tryReconn() {
	for {
		socket, _, err := ws.DefaultDialer.Dial(c.url, nil)
		if err == nil {
			c.ws = socket
			break
		}
		time.Sleep(time.Second * time.Duration(c.reconn))
	}
}

func (c *conn) close() error {
	return c.ws.Close()
}

func isClosed(err error) bool {
	return ws.IsCloseError(err,
		ws.CloseNormalClosure,
		ws.CloseGoingAway,
		ws.CloseAbnormalClosure)
}
