package datasource

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/daishaoxing/kegg-animate-pathway/pkg/metrics"
	"github.com/daishaoxing/kegg-animate-pathway/pkg/pathway"
)

// DefaultBaseURL is the public KEGG REST endpoint.
const DefaultBaseURL = "https://rest.kegg.jp"

// maxResponseBytes bounds a single KEGG response. Base diagrams are a
// few hundred KB; anything past this is a wrong URL or a broken proxy.
const maxResponseBytes = 32 << 20

// Client fetches KGML documents and base diagram images. Responses go
// through the cache when one is attached.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Cache   *Cache
	Logger  *log.Logger // nil means silent
}

// NewClient returns a client with ordinary timeout policy. cache may
// be nil to disable caching.
func NewClient(cache *Cache) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
		Cache:   cache,
	}
}

// Pathway fetches and parses the KGML document for a pathway id such
// as "hsa00010".
func (c *Client) Pathway(ctx context.Context, pathwayID string) (*pathway.Pathway, error) {
	defer metrics.Timer(metrics.FetchPathway)()

	url := fmt.Sprintf("%s/get/%s/kgml", c.BaseURL, pathwayID)
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching KGML for %s: %w", pathwayID, err)
	}

	stop := metrics.Timer(metrics.ParseKGML)
	p, err := pathway.ParseKGML(bytes.NewReader(body))
	stop()
	if err != nil {
		return nil, fmt.Errorf("parsing KGML for %s: %w", pathwayID, err)
	}
	return p, nil
}

// BaseImage fetches and decodes the pathway's base diagram raster.
// The URL normally comes from the KGML image attribute; a pathway id
// is also accepted and resolved against the conventional KEGG layout.
func (c *Client) BaseImage(ctx context.Context, ref string) (image.Image, error) {
	defer metrics.Timer(metrics.FetchPathway)()

	url := ref
	if !strings.Contains(ref, "://") {
		org := strings.TrimRight(ref, "0123456789")
		url = fmt.Sprintf("https://www.kegg.jp/kegg/pathway/%s/%s.png", org, ref)
	}
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching base image: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decoding base image: %w", err)
	}
	return img, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	if body, ok, err := c.Cache.Get(url); err != nil {
		return nil, err
	} else if ok {
		if c.Logger != nil {
			c.Logger.Printf("cache hit: %s", url)
		}
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if err := c.Cache.Put(url, body); err != nil && c.Logger != nil {
		c.Logger.Printf("cache write failed for %s: %v", url, err)
	}
	return body, nil
}
