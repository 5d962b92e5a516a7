package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ragtrainer/gateway/internal/application/proxy"
	"github.com/ragtrainer/gateway/internal/interfaces/http/response"
)

// AuthHandler 登录与会话
type AuthHandler struct {
	auth     *proxy.AuthService
	sessions *proxy.SessionService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(auth *proxy.AuthService, sessions *proxy.SessionService) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login 登录
// @Summary 登录并保存凭据
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body LoginRequest true "邮箱和密码"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Failure 408 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	data, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWith(c, data)
}

// Logout 清除保存的凭据
// @Summary 登出
// @Tags 认证
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context()); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// SessionRequest 创建会话请求，userId 可以是数字或字符串
type SessionRequest struct {
	UserID any `json:"userId"`
}

// CreateSession 创建对话会话
// @Summary 创建对话会话
// @Description 优先使用请求头的 Authorization，否则使用登录时保存的凭据
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body SessionRequest true "用户 id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.Response
// @Router /session [post]
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	data, err := h.sessions.Create(c.Request.Context(), req.UserID, c.GetHeader("Authorization"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	fields := gin.H{"sessionId": data["id"]}
	for k, v := range data {
		fields[k] = v
	}
	response.SuccessWith(c, fields)
}
