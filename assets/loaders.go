package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Fetcher retrieves raw asset bytes from a locator. HTTP(S) URLs go
// through the client (wire an instrumented transport there); anything else
// is read from disk, relative to BaseDir when set.
type Fetcher struct {
	Client  *http.Client
	BaseDir string
}

func (f *Fetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		return f.fetchHTTP(ctx, locator)
	}

	path := locator
	if f.BaseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(f.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", locator, err)
	}
	return data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	return data, nil
}

// RegisterBuiltinLoaders installs loaders for the three built-in kinds.
// The texture loader applies the descriptor's color-space option, tagging
// untagged textures as srgb.
func RegisterBuiltinLoaders(c *Coordinator, f *Fetcher) {
	c.RegisterLoader(KindTexture, LoaderFunc(func(ctx context.Context, d Descriptor) (Handle, error) {
		data, err := f.Fetch(ctx, d.URL)
		if err != nil {
			return nil, err
		}
		colorSpace := d.Options.ColorSpace
		if colorSpace == "" {
			colorSpace = "srgb"
		}
		return NewTexture(d.Name, data, colorSpace), nil
	}))

	c.RegisterLoader(KindEnvironmentMap, LoaderFunc(func(ctx context.Context, d Descriptor) (Handle, error) {
		data, err := f.Fetch(ctx, d.URL)
		if err != nil {
			return nil, err
		}
		return NewEnvironmentMap(d.Name, data), nil
	}))

	c.RegisterLoader(KindModel, LoaderFunc(func(ctx context.Context, d Descriptor) (Handle, error) {
		data, err := f.Fetch(ctx, d.URL)
		if err != nil {
			return nil, err
		}
		return NewModel(d.Name, data), nil
	}))
}
