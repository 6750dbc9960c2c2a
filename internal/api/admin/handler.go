package admin

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ytstream.api/internal/config"
	"ytstream.api/internal/keys"
	"ytstream.api/internal/middleware"
	"ytstream.api/pkg/logger"
	"ytstream.api/pkg/response"
	"ytstream.api/pkg/token"
)

const maxRecentLogs = 1000

type Handler struct {
	logger    logger.Logger
	cfg       *config.Config
	keys      KeyAdmin
	token     token.Provider
	cookies   CookieStatus
	refresher RefresherStatus
}

func NewHandler(l logger.Logger, cfg *config.Config, k KeyAdmin, t token.Provider, cookies CookieStatus, refresher RefresherStatus) AdminHandler {
	return &Handler{
		logger:    l,
		cfg:       cfg,
		keys:      k,
		token:     t,
		cookies:   cookies,
		refresher: refresher,
	}
}

// @Summary      Usage metrics
// @Description  Total and today's requests, active keys and error rate
// @Tags         admin
// @Produce      json
// @Param        api_key  query  string  false  "Admin API key"
// @Success      200  {object}  keys.Metrics
// @Failure      401  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Router       /admin/metrics [get]
// @Security     BearerAuth
func (h *Handler) Metrics(c *gin.Context) {
	m, err := h.keys.Metrics(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute metrics", "error", err)
		response.Fail(c, "Failed to get metrics")
		return
	}
	response.Success(c, m)
}

// @Summary      List API keys
// @Tags         admin
// @Produce      json
// @Param        api_key  query  string  false  "Admin API key"
// @Success      200  {array}   keys.APIKey
// @Failure      401  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Router       /admin/list_api_keys [get]
// @Security     BearerAuth
func (h *Handler) ListAPIKeys(c *gin.Context) {
	list, err := h.keys.List(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list api keys", "error", err)
		response.Fail(c, "Failed to list API keys")
		return
	}
	if list == nil {
		list = []keys.APIKey{}
	}
	response.Success(c, list)
}

// @Summary      Create API key
// @Description  Issue a new key. days_valid defaults to 30 and daily_limit to the configured default.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        api_key  query  string            false  "Admin API key"
// @Param        request  body   CreateKeyRequest  true   "Key parameters"
// @Success      200  {object}  CreateKeyResponse
// @Failure      400  {object}  response.ErrorBody
// @Failure      401  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Router       /admin/create_api_key [post]
// @Security     BearerAuth
func (h *Handler) CreateAPIKey(c *gin.Context) {
	var req CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		response.Error(c, http.StatusBadRequest, "Name is required")
		return
	}
	if req.DailyLimit <= 0 {
		req.DailyLimit = h.cfg.Auth.DefaultDailyLimit
	}

	params := keys.CreateParams{
		Name:       req.Name,
		DaysValid:  req.DaysValid,
		DailyLimit: req.DailyLimit,
		IsAdmin:    req.IsAdmin,
	}
	if id, ok := c.Get(middleware.ContextAdminID); ok {
		if adminID, ok := id.(uint); ok {
			params.CreatedBy = &adminID
		}
	}

	k, err := h.keys.Create(c.Request.Context(), params)
	if err != nil {
		h.logger.Error("Failed to create api key", "name", req.Name, "error", err)
		response.Fail(c, "Failed to create API key")
		return
	}

	h.logger.Info("API key created", "id", k.ID, "name", k.Name, "is_admin", k.IsAdmin)
	response.Success(c, CreateKeyResponse{
		Message:    "API key created successfully",
		APIKey:     k.Key,
		Name:       k.Name,
		ValidUntil: k.ValidUntil,
	})
}

// @Summary      Revoke API key
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        api_key  query  string            false  "Admin API key"
// @Param        request  body   RevokeKeyRequest  true   "Key to revoke"
// @Success      200  {object}  response.Message
// @Failure      400  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Router       /admin/revoke_api_key [post]
// @Security     BearerAuth
func (h *Handler) RevokeAPIKey(c *gin.Context) {
	var req RevokeKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		response.Error(c, http.StatusBadRequest, "Key ID is required")
		return
	}

	err := h.keys.Revoke(c.Request.Context(), req.ID)
	switch {
	case err == nil:
		h.logger.Info("API key revoked", "id", req.ID)
		response.OK(c, "API key revoked successfully")
	case errors.Is(err, keys.ErrNotFound):
		response.Error(c, http.StatusNotFound, "API key not found")
	case errors.Is(err, keys.ErrAdminKey):
		response.Error(c, http.StatusForbidden, "Cannot revoke admin keys")
	default:
		h.logger.Error("Failed to revoke api key", "id", req.ID, "error", err)
		response.Fail(c, "Failed to revoke API key")
	}
}

// @Summary      Recent request log
// @Tags         admin
// @Produce      json
// @Param        api_key  query  string  false  "Admin API key"
// @Param        limit    query  int     false  "Rows to return (default 50)"
// @Success      200  {array}   keys.LogView
// @Failure      401  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Router       /admin/recent_logs [get]
// @Security     BearerAuth
func (h *Handler) RecentLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	limit = min(limit, maxRecentLogs)

	logs, err := h.keys.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to load recent logs", "error", err)
		response.Fail(c, "Failed to get recent logs")
		return
	}
	response.Success(c, logs)
}

// @Summary      Admin session
// @Description  Exchange an admin API key for a short-lived bearer token
// @Tags         admin
// @Produce      json
// @Param        api_key  query  string  true  "Admin API key"
// @Success      200  {object}  SessionResponse
// @Failure      401  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Router       /admin/session [post]
func (h *Handler) CreateSession(c *gin.Context) {
	v, ok := c.Get(middleware.ContextKey)
	k, _ := v.(*keys.APIKey)
	if !ok || k == nil {
		// bearer sessions cannot mint further sessions
		response.Error(c, http.StatusForbidden, "Admin API key is required")
		return
	}

	s, err := h.token.IssueSession(k.ID, k.Name)
	if err != nil {
		h.logger.Error("Failed to issue admin session", "key_id", k.ID, "error", err)
		response.Fail(c, "Failed to create session")
		return
	}
	response.Success(c, SessionResponse{
		Token:     s.Token,
		TokenType: "Bearer",
		ExpiresAt: s.ExpiresAt,
	})
}

// @Summary      Cookie authentication status
// @Description  State of the cookie artifact handed to the extractor and of its refresher
// @Tags         admin
// @Produce      json
// @Param        api_key  query  string  false  "Admin API key"
// @Success      200  {object}  AuthStatusResponse
// @Failure      401  {object}  response.ErrorBody
// @Failure      403  {object}  response.ErrorBody
// @Router       /admin/auth_status [get]
// @Security     BearerAuth
func (h *Handler) AuthStatus(c *gin.Context) {
	response.Success(c, AuthStatusResponse{
		Status:    h.cookies.Status(),
		Refresher: h.refresher.Status(),
	})
}
