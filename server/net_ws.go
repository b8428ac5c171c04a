package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ViewerConn 调试叠加层观察端的轻量包装（只负责写出状态、读入控制命令）
type ViewerConn struct {
	ws        *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func NewViewerConn(ws *websocket.Conn) *ViewerConn {
	return &ViewerConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue 将要发送的帧压入队列（非阻塞，满则丢弃并返回 false）
func (c *ViewerConn) Enqueue(b []byte) bool {
	select {
	case c.send <- b:
		return true
	default:
		// 为了实时性，丢弃该帧（防止阻塞 Tick）
		return false
	}
}

// Close 关闭发送队列与底层连接，可重复调用
func (c *ViewerConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		// 关闭发送通道以结束写协程
		close(c.send)
		err = c.ws.Close()
	})
	return err
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ViewerConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			Log.Debugf("viewer write: %v", err)
			return
		}
	}
}

// readPump 读取观察端命令，转换为 Command 注入对局
func (c *ViewerConn) readPump(e *Engagement, viewerID string) {
	defer c.ws.Close()
	// 读泵退出时，通知对局在 Tick 线程中移除该观察端
	defer e.RequestLeave(viewerID)
	c.ws.SetReadLimit(1 << 20) // 1MB
	_ = c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		var msg CommandMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if cmd := parseCommand(strings.ToLower(msg.Type)); cmd != CmdNone {
			e.OnCommand(cmd)
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 调试叠加层：允许所有来源
		return true
	},
}

// HandleWS WebSocket 接入：?engagement=eng_xxx，缺省接入默认对局
func HandleWS(w http.ResponseWriter, r *http.Request) {
	e, ok := lookupEngagement(w, r)
	if !ok {
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	viewerID := fmt.Sprintf("viewer_%s", uuid.NewString())
	client := NewViewerConn(ws)
	e.JoinViewer(viewerID, client)

	go client.writePump()
	go client.readPump(e, viewerID)
}
