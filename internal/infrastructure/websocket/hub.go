package websocket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ragtrainer/gateway/internal/infrastructure/config"
	"github.com/ragtrainer/gateway/internal/infrastructure/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 64
)

// Hub WebSocket 连接管理中心，按工作区分组
type Hub struct {
	workspaces map[string]map[*Connection]bool
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *Message
	mu         sync.RWMutex

	upgrader websocket.Upgrader
	logger   *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
}

// Connection 订阅某个工作区的连接
type Connection struct {
	WorkspaceID string
	Send        chan []byte
}

// Message 待广播的消息
type Message struct {
	WorkspaceID string
	Data        []byte
}

// NewHub 创建 Hub
func NewHub(cfg *config.WebSocketConfig) *Hub {
	return &Hub{
		workspaces: make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *Message, 256),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: log.NewModuleLogger("websocket", "hub"),
		stopCh: make(chan struct{}),
	}
}

// Run 运行 Hub（需要在 goroutine 中运行）
func (h *Hub) Run() {
	for {
		select {
		case <-h.stopCh:
			h.mu.Lock()
			for id, conns := range h.workspaces {
				for conn := range conns {
					close(conn.Send)
				}
				delete(h.workspaces, id)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.workspaces[conn.WorkspaceID] == nil {
				h.workspaces[conn.WorkspaceID] = make(map[*Connection]bool)
			}
			h.workspaces[conn.WorkspaceID][conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.remove(conn)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.workspaces[msg.WorkspaceID] {
				select {
				case conn.Send <- msg.Data:
				default:
					// 消费过慢的连接直接断开
					close(conn.Send)
					delete(h.workspaces[msg.WorkspaceID], conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) remove(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.workspaces[conn.WorkspaceID]; ok {
		if _, ok := conns[conn]; ok {
			delete(conns, conn)
			close(conn.Send)
			if len(conns) == 0 {
				delete(h.workspaces, conn.WorkspaceID)
			}
		}
	}
}

// Start 启动 Hub（启动后台 goroutine）
func (h *Hub) Start() {
	go h.Run()
}

// Stop 停止 Hub 并关闭所有连接
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

// Register 注册连接
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.stopCh:
	}
}

// Unregister 注销连接
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.stopCh:
	}
}

// Subscribers 返回工作区当前的连接数
func (h *Hub) Subscribers(workspaceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.workspaces[workspaceID])
}

// BroadcastToWorkspace 向订阅某工作区的连接广播
// 广播队列已满时丢弃消息
func (h *Hub) BroadcastToWorkspace(workspaceID string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- &Message{WorkspaceID: workspaceID, Data: jsonData}:
	case <-h.stopCh:
	default:
		h.logger.Warn("Broadcast queue full, dropping event", "workspace_id", workspaceID)
	}
	return nil
}

// Serve 升级 HTTP 连接并订阅工作区事件，直到连接关闭
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, workspaceID string) error {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	conn := &Connection{WorkspaceID: workspaceID, Send: make(chan []byte, sendBuffer)}
	h.Register(conn)
	h.logger.Debug("Subscriber connected", "workspace_id", workspaceID)

	go h.writePump(ws, conn)
	h.readPump(ws, conn)
	return nil
}

// readPump 只处理控制帧，客户端消息被忽略
func (h *Hub) readPump(ws *websocket.Conn, conn *Connection) {
	defer func() {
		h.Unregister(conn)
		_ = ws.Close()
		h.logger.Debug("Subscriber disconnected", "workspace_id", conn.WorkspaceID)
	}()

	ws.SetReadLimit(4096)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(ws *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case data, ok := <-conn.Send:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
