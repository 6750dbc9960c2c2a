package stream

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ytstream.api/pkg/logger"
	"ytstream.api/pkg/response"
)

const (
	defaultChunkSize = 1024 * 1024

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	referer   = "https://www.youtube.com/"
)

// Proxy relays upstream media for a handle in fixed-size chunks.
type Proxy struct {
	registry  *Registry
	client    *http.Client
	chunkSize int
	l         logger.Logger
	onBytes   func(n int)
}

type ProxyConfig struct {
	ChunkSize int
	// HeaderTimeout bounds the wait for upstream response headers. The body
	// itself is not time bounded.
	HeaderTimeout time.Duration
	Client        *http.Client
	Logger        logger.Logger
	// OnBytes is called with the size of every relayed chunk.
	OnBytes func(n int)
}

func NewProxy(registry *Registry, cfg ProxyConfig) *Proxy {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}
	if cfg.Client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = cfg.HeaderTimeout
		cfg.Client = &http.Client{Transport: transport}
	}
	return &Proxy{
		registry:  registry,
		client:    cfg.Client,
		chunkSize: cfg.ChunkSize,
		l:         cfg.Logger,
		onBytes:   cfg.OnBytes,
	}
}

// Serve writes the media for handle id to c. Failures before the first byte
// produce a JSON error; failures after it only end the response.
func (p *Proxy) Serve(c *gin.Context, id string) {
	h, err := p.registry.Lookup(c.Request.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrHandleNotFound) {
			p.l.Error("stream handle lookup failed", "id", id, "error", err)
		}
		response.Error(c, http.StatusNotFound, "Stream not found or expired")
		return
	}
	if h.URL == "" {
		response.Error(c, http.StatusInternalServerError, "Invalid stream URL")
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, h.URL, nil)
	if err != nil {
		p.l.Error("bad upstream url", "id", id, "error", err)
		response.Error(c, http.StatusInternalServerError, "Invalid stream URL")
		return
	}
	rangeHeader := c.GetHeader("Range")
	if rangeHeader == "" {
		rangeHeader = "bytes=0-"
	}
	req.Header.Set("Range", rangeHeader)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)
	req.Header.Set("Accept", "*/*")

	resp, err := p.client.Do(req)
	if err != nil {
		p.l.Warn("upstream connect failed", "id", id, "error", err)
		response.Error(c, http.StatusBadGateway, "Failed to connect to upstream")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		p.l.Warn("upstream rejected stream", "id", id, "status", resp.StatusCode)
		response.Error(c, http.StatusBadGateway, "Upstream returned an error")
		return
	}

	header := c.Writer.Header()
	header.Set("Content-Type", h.Mode.ContentType())
	header.Set("Accept-Ranges", "bytes")
	header.Set("Cache-Control", "no-cache")
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		header.Set("Content-Range", cr)
	}
	c.Status(resp.StatusCode)

	p.relay(c, resp.Body, id)
}

// relay copies body to the client one chunk at a time, flushing after each.
// It stops when the client goes away or the upstream ends.
func (p *Proxy) relay(c *gin.Context, body io.Reader, id string) {
	defer func() {
		if r := recover(); r != nil {
			p.l.Error("stream relay panicked", "id", id, "panic", r)
			c.Abort()
		}
	}()

	buf := make([]byte, p.chunkSize)
	for {
		n, err := io.ReadFull(body, buf)
		if n > 0 {
			if _, werr := c.Writer.Write(buf[:n]); werr != nil {
				return
			}
			c.Writer.Flush()
			if p.onBytes != nil {
				p.onBytes(n)
			}
		}
		switch {
		case err == nil:
			continue
		case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
			return
		default:
			if c.Request.Context().Err() == nil {
				p.l.Warn("upstream stream interrupted", "id", id, "error", err)
			}
			return
		}
	}
}
