package media

import (
	"context"

	"github.com/gin-gonic/gin"

	"ytstream.api/internal/resolver"
	"ytstream.api/internal/stream"
)

// MediaHandler defines the public resolution and streaming endpoints
type MediaHandler interface {
	Youtube(c *gin.Context)
	Stream(c *gin.Context)
}

// Resolver is the subset of *resolver.Resolver the handler needs
type Resolver interface {
	Lookup(ctx context.Context, q resolver.Query) (*resolver.VideoMetadata, error)
	StreamURL(ctx context.Context, id string, mode resolver.Mode) (string, error)
}

// Handles issues stream handles; satisfied by *stream.Registry
type Handles interface {
	Create(ctx context.Context, url string, mode resolver.Mode) (*stream.Handle, error)
}

// Relay serves a handle's media; satisfied by *stream.Proxy
type Relay interface {
	Serve(c *gin.Context, id string)
}

// YoutubeResponse is the body of a successful GET /youtube
type YoutubeResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Duration   int64  `json:"duration"`
	Link       string `json:"link"`
	Channel    string `json:"channel"`
	Views      int64  `json:"views"`
	Thumbnail  string `json:"thumbnail"`
	StreamURL  string `json:"stream_url"`
	StreamType string `json:"stream_type"`
}
