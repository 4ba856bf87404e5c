// Package imagecache resolves paint image URLs to shared, lazily decoded
// handles.
//
// A Cache hands out one Handle per (url, scale) pair for its whole
// lifetime, so every paint that references the same image, across any
// number of catalog loads, shares the same bitmap. Handles fetch and decode
// on first use; png, jpeg, gif and webp are supported.
package imagecache

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/chatpaint/paintd/pkg/paint"
)

// DefaultTimeout bounds a single image fetch.
const DefaultTimeout = 20 * time.Second

// MaxImageBytes caps the size of a fetched image body.
const MaxImageBytes = 16 << 20

type key struct {
	url   string
	scale float64
}

// Cache implements paint.ImageResolver.
type Cache struct {
	client *http.Client
	logger *slog.Logger

	mu      sync.Mutex
	handles map[key]*Handle
}

// New creates a Cache. A nil client uses one with DefaultTimeout.
func New(client *http.Client, logger *slog.Logger) *Cache {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = slog.Default().With("component", "imagecache")
	}
	return &Cache{
		client:  client,
		logger:  logger,
		handles: make(map[key]*Handle),
	}
}

// Resolve returns the shared handle for rawURL at scale. It returns nil for
// empty or non-http(s) URLs and non-positive scales. Resolve never blocks on
// the network.
func (c *Cache) Resolve(rawURL string, scale float64) paint.ImageHandle {
	if scale <= 0 || !validURL(rawURL) {
		return nil
	}

	k := key{url: rawURL, scale: scale}

	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.handles[k]; ok {
		return h
	}
	h := &Handle{url: rawURL, scale: scale, cache: c}
	c.handles[k] = h
	return h
}

// Len returns the number of handles created so far.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

func validURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Handle is a lazily loaded image shared by every paint using its URL.
type Handle struct {
	url   string
	scale float64
	cache *Cache

	mu     sync.Mutex
	done   bool
	loaded atomic.Bool
	img    image.Image
	err    error
}

// URL implements paint.ImageHandle.
func (h *Handle) URL() string { return h.url }

// Loaded implements paint.ImageHandle.
func (h *Handle) Loaded() bool { return h.loaded.Load() }

// Image implements paint.ImageHandle, loading the image on first call.
func (h *Handle) Image() (image.Image, error) {
	return h.Load(context.Background())
}

// Load fetches and decodes the image once. Later calls return the cached
// result, including a cached fetch or decode error. A load cut short by
// ctx is not cached; the next caller tries again.
func (h *Handle) Load(ctx context.Context) (image.Image, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.done {
		return h.img, h.err
	}

	img, err := h.cache.fetch(ctx, h.url, h.scale)
	if err != nil && ctx.Err() != nil {
		return nil, err
	}
	if err != nil {
		h.cache.logger.Warn("image load failed", "url", h.url, "error", err)
	}

	h.img, h.err, h.done = img, err, true
	h.loaded.Store(true)
	return img, err
}

func (c *Cache) fetch(ctx context.Context, rawURL string, scale float64) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagecache: %s returned status %d", rawURL, resp.StatusCode)
	}

	img, format, err := image.Decode(io.LimitReader(resp.Body, MaxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("imagecache: decode %s: %w", rawURL, err)
	}

	if scale != 1 {
		b := img.Bounds()
		w := int(float64(b.Dx()) * scale)
		hgt := int(float64(b.Dy()) * scale)
		if w > 0 && hgt > 0 {
			img = imaging.Resize(img, w, hgt, imaging.Lanczos)
		}
	}

	c.logger.Debug("image loaded", "url", rawURL, "format", format, "scale", scale)
	return img, nil
}
