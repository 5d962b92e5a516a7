package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ragtrainer/gateway/internal/application/proxy"
	"github.com/ragtrainer/gateway/internal/domain/trainer"
	"github.com/ragtrainer/gateway/internal/interfaces/http/response"
)

// SettingsHandler 训练器设置
type SettingsHandler struct {
	settings *proxy.SettingsService
}

// NewSettingsHandler 创建设置处理器
func NewSettingsHandler(settings *proxy.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get 读取设置
// @Summary 读取设置
// @Tags 设置
// @Produce json
// @Success 200 {object} response.Response{data=trainer.Settings}
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.Header("ETag", strconv.FormatInt(s.Version, 10))
	response.Success(c, s)
}

// Update 部分更新设置
// @Summary 更新设置
// @Description 携带 If-Match 时按版本检查，不一致返回 409
// @Tags 设置
// @Accept json
// @Produce json
// @Param If-Match header string false "期望的版本号"
// @Param body body trainer.SettingsPatch true "要修改的字段"
// @Success 200 {object} response.Response{data=trainer.Settings}
// @Failure 409 {object} response.Response
// @Router /settings [post]
func (h *SettingsHandler) Update(c *gin.Context) {
	var patch trainer.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	expected := proxy.NoVersionCheck
	if v := strings.Trim(c.GetHeader("If-Match"), `" `); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			response.Error(c, http.StatusBadRequest, "If-Match must be a settings version")
			return
		}
		expected = n
	}

	s, err := h.settings.Update(c.Request.Context(), patch, expected)
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.Header("ETag", strconv.FormatInt(s.Version, 10))
	response.Success(c, s)
}
