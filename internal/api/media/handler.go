package media

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ytstream.api/internal/config"
	"ytstream.api/internal/resolver"
	"ytstream.api/internal/stream"
	"ytstream.api/pkg/logger"
	"ytstream.api/pkg/response"
)

type Handler struct {
	logger   logger.Logger
	cfg      *config.Config
	resolver Resolver
	handles  Handles
	relay    Relay
}

func NewHandler(l logger.Logger, cfg *config.Config, r Resolver, h Handles, relay Relay) MediaHandler {
	return &Handler{
		logger:   l,
		cfg:      cfg,
		resolver: r,
		handles:  h,
		relay:    relay,
	}
}

// @Summary      Resolve a YouTube video
// @Description  Resolve a search term, video ID or watch URL to metadata and a proxied stream URL
// @Tags         media
// @Produce      json
// @Param        query    query     string  true   "Search term, 11-character video ID or YouTube URL"
// @Param        video    query     bool    false  "Stream video instead of audio"
// @Param        api_key  query     string  true   "API key"
// @Success      200  {object}  YoutubeResponse
// @Failure      400  {object}  response.ErrorBody
// @Failure      401  {object}  response.ErrorBody
// @Failure      404  {object}  response.ErrorBody
// @Failure      429  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Router       /youtube [get]
func (h *Handler) Youtube(c *gin.Context) {
	raw := c.Query("query")
	if strings.TrimSpace(raw) == "" {
		response.Error(c, http.StatusBadRequest, "Query parameter is required")
		return
	}
	mode := resolver.ModeFor(strings.EqualFold(c.Query("video"), "true"))
	q := resolver.Classify(raw)
	ctx := c.Request.Context()

	meta, err := h.resolver.Lookup(ctx, q)
	if err != nil {
		if errors.Is(err, resolver.ErrNotFound) {
			msg := "No video found"
			if q.Kind == resolver.SearchTerm {
				msg = "No videos found"
			}
			response.Error(c, http.StatusNotFound, msg)
			return
		}
		h.logger.Error("Failed to resolve query", "query", raw, "error", err)
		response.Fail(c, "Failed to resolve video")
		return
	}

	upstream, err := h.resolver.StreamURL(ctx, meta.ID, mode)
	if err != nil {
		h.logger.Error("Failed to get stream URL", "id", meta.ID, "mode", string(mode), "error", err)
		response.Fail(c, "Failed to get stream URL")
		return
	}

	handle, err := h.handles.Create(ctx, upstream, mode)
	if err != nil {
		h.logger.Error("Failed to create stream handle", "id", meta.ID, "error", err)
		response.Fail(c, "Failed to get stream URL")
		return
	}

	response.Success(c, YoutubeResponse{
		ID:         meta.ID,
		Title:      meta.Title,
		Duration:   meta.Duration,
		Link:       meta.Link,
		Channel:    meta.Channel,
		Views:      meta.Views,
		Thumbnail:  meta.Thumbnail,
		StreamURL:  stream.URLFor(BaseURL(c, h.cfg.Server.PublicURL), handle.ID),
		StreamType: mode.StreamType(),
	})
}

// @Summary      Stream media
// @Description  Relay the upstream media behind a stream handle, honouring Range
// @Tags         media
// @Produce      octet-stream
// @Param        id   path      string  true  "Stream handle"
// @Param        Range  header  string  false "Byte range"
// @Success      200  {file}    binary
// @Success      206  {file}    binary
// @Failure      404  {object}  response.ErrorBody
// @Failure      500  {object}  response.ErrorBody
// @Failure      502  {object}  response.ErrorBody
// @Router       /stream/{id} [get]
func (h *Handler) Stream(c *gin.Context) {
	h.relay.Serve(c, c.Param("id"))
}

// BaseURL is publicURL when set, otherwise the scheme and host the client
// used to reach us.
func BaseURL(c *gin.Context, publicURL string) string {
	if publicURL != "" {
		return strings.TrimRight(publicURL, "/")
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}
	host := c.Request.Host
	if fwd := c.GetHeader("X-Forwarded-Host"); fwd != "" {
		host = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	return scheme + "://" + host
}
