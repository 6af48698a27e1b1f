package service

import (
	"sync"

	"mafia-be/internal/service/game"

	"go.uber.org/zap"
)

type hubConn struct {
	room   string
	respCh chan game.ResponseWrapper
}

// Hub 按连接 ID 保存每个 WebSocket 的响应通道，实现 game.Messenger。
// 通道只由 Hub 关闭，关闭前先从表中删除，保证不会向已关闭的通道发送
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*hubConn
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]*hubConn),
	}
}

func (h *Hub) Register(connID string, respCh chan game.ResponseWrapper) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[connID] = &hubConn{respCh: respCh}
}

// Bind 把连接加入房间的广播范围，room 为空表示解绑
func (h *Hub) Bind(connID, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.conns[connID]; ok {
		c.room = room
	}
}

// Unregister 删除连接并关闭其响应通道，重复调用是安全的
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[connID]
	if !ok {
		return
	}
	delete(h.conns, connID)
	close(c.respCh)
}

func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns)
}

func (h *Hub) SendPlayerMessage(connID string, resp game.ResponseWrapper) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	c, ok := h.conns[connID]
	if !ok {
		zap.L().Warn(
			"无法找到连接进行单播响应",
			zap.String("conn_id", connID),
		)
		return
	}

	h.send(connID, c, resp)
}

func (h *Hub) SendRoomMessage(room string, resp game.ResponseWrapper) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for connID, c := range h.conns {
		if c.room == room {
			h.send(connID, c, resp)
		}
	}
}

// DisconnectSockets 关闭房间内所有连接的响应通道，写协程随之退出并关闭连接
func (h *Hub) DisconnectSockets(room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for connID, c := range h.conns {
		if c.room != room {
			continue
		}
		delete(h.conns, connID)
		close(c.respCh)
	}

	zap.L().Info(
		"已断开房间内所有连接",
		zap.String("room", room),
	)
}

func (*Hub) send(connID string, c *hubConn, resp game.ResponseWrapper) {
	select {
	case c.respCh <- resp:
	default:
		zap.L().Warn(
			"发送响应失败：玩家响应通道已满",
			zap.String("conn_id", connID),
			zap.String("response_type", resp.RespType),
		)
	}
}
