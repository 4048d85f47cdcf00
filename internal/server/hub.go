// Package server 对外暴露分析服务：CSV 上传分析、报告查询与 WebSocket 推送。
package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trade-bias-analyzer/internal/core/model"
)

const (
	// writeWait 单次推送的写超时
	writeWait = 10 * time.Second
	// sendBuffer 单个客户端的推送缓冲
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 本服务面向本机/内网看板，放开跨域检查
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub 管理全部 WebSocket 订阅者
// 每完成一次分析即把报告推送给所有已连接的客户端；
// 推送缓冲写满的慢客户端直接断开，避免拖慢广播。
type Hub struct {
	mu sync.RWMutex
	// clients 每个连接一个推送通道
	clients map[*websocket.Conn]chan []byte

	logger *zap.Logger
}

// NewHub 创建推送中心
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]chan []byte),
		logger:  logger,
	}
}

// Broadcast 将报告推送给全部订阅者
func (h *Hub) Broadcast(report *model.Report) {
	if report == nil {
		return
	}
	b, err := json.Marshal(report)
	if err != nil {
		h.logger.Warn("编码推送报告失败", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, send := range h.clients {
		select {
		case send <- b:
		default:
			// 缓冲写满：由写循环负责收尾，这里只关闭连接触发退出
			h.logger.Warn("客户端推送缓冲已满，断开连接", zap.String("remote", conn.RemoteAddr().String()))
			_ = conn.Close()
		}
	}
}

// Serve 将一个已升级的连接纳入推送，阻塞直到连接断开
func (h *Hub) Serve(conn *websocket.Conn) {
	send := make(chan []byte, sendBuffer)

	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		_ = conn.Close()
	}()

	// 读循环只用于感知断开，客户端消息一律丢弃
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case b := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// ClientCount 当前订阅者数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
