package singleton

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// HealthCheckTimeout 探测已运行实例的超时时间
const HealthCheckTimeout = 2 * time.Second

// ErrAlreadyRunning 端口上已有健康的网关实例
var ErrAlreadyRunning = errors.New("gateway already running")

// Acquire 占用服务端口，保证同一台机器只运行一个网关
// 端口被健康实例占用时返回 ErrAlreadyRunning
// 返回的 listener 直接交给 HTTP 服务器使用
func Acquire(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err == nil {
		return ln, nil
	}
	if !isAddrInUse(err) {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if isInstanceRunning(addr) {
		return nil, ErrAlreadyRunning
	}
	return nil, fmt.Errorf("address %s is in use by a process that fails the health check", addr)
}

// isAddrInUse 判断是否为地址占用错误
// Windows 的 WSAEADDRINUSE 为 10048
func isAddrInUse(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.EADDRINUSE) {
		return true
	}
	var errno syscall.Errno
	if errors.As(err, &errno) && errno == 10048 {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "address already in use") ||
		strings.Contains(msg, "Only one usage of each socket address")
}

// healthURL 由监听地址推导健康检查地址
func healthURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://localhost" + addr + "/health"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/health"
}

// isInstanceRunning 探测健康检查端点
func isInstanceRunning(addr string) bool {
	client := &http.Client{Timeout: HealthCheckTimeout}
	resp, err := client.Get(healthURL(addr))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
