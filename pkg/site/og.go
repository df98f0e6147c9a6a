package site

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pkgz/lgr"
)

const maxImageSize = 10 << 20

// cacheImage makes sure the hero image of an article is stored under og/ and returns its public url.
// A cached file is never refreshed. Any failure is logged and gives an empty url.
func (b *Builder) cacheImage(ctx context.Context, src, articleID string) string {
	src = strings.TrimSpace(src)
	if src == "" || articleID == "" {
		return ""
	}

	rel := "og/" + articleID + guessExt(src)
	dst := filepath.Join(b.SiteDir, filepath.FromSlash(rel))
	if fi, err := os.Stat(dst); err == nil && fi.Size() > 0 {
		return b.BaseURL + "/" + rel
	}

	if err := b.download(ctx, src, dst); err != nil {
		lgr.Printf("[WARN] can't cache og image for %s: %v", articleID, err)
		return ""
	}
	lgr.Printf("[DEBUG] cached og image %s", rel)
	return b.BaseURL + "/" + rel
}

func (b *Builder) download(ctx context.Context, src, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", b.UserAgent)

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", src, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code %d for %s", resp.StatusCode, src)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("empty image %s", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create og directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil { //nolint:gosec // public site content
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

// guessExt picks the image extension from the url path, .jpg if unknown
func guessExt(src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return ".jpg"
	}
	p := strings.ToLower(u.Path)
	for _, ext := range []string{".jpg", ".jpeg", ".png", ".webp"} {
		if strings.HasSuffix(p, ext) {
			return ext
		}
	}
	return ".jpg"
}
