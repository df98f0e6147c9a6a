// Package site renders the static website from the article archive
package site

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsmith/pkg/domain"
	"github.com/umputun/newsmith/pkg/feed"
	"github.com/umputun/newsmith/pkg/novelty"
)

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	listSize     = 10 // ranking, new and rss item count
	relatedSize  = 6
	descriptionN = 200
)

var tmplFuncs = template.FuncMap{
	"date":    func(t time.Time) string { return t.UTC().Format("2006-01-02") },
	"isoTime": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}

// Params configures Builder
type Params struct {
	SiteDir      string
	BaseURL      string
	BrandName    string
	Description  string
	ContactEmail string
	UserAgent    string           // used for og image downloads
	CacheImages  bool             // download hero images into og/
	ImageTimeout time.Duration    // per image download
	Now          func() time.Time // build clock, time.Now if nil
}

// Builder regenerates the whole site on every Build call
type Builder struct {
	Params
	pages  map[string]*template.Template
	feeds  *feed.Generator
	client *http.Client
}

// siteInfo is the site metadata exposed to templates
type siteInfo struct {
	BrandName    string
	Description  string
	BaseURL      string
	ContactEmail string
}

// pageData is the template context shared by all pages
type pageData struct {
	Site        siteInfo
	Ranking     []domain.Article
	NewArticles []domain.Article
	NowISO      string
	Title       string
	Description string
	Canonical   string
	OGType      string
	OGImage     string

	// article pages
	Article *domain.Article
	Body    template.HTML
	Related []domain.Article

	// static pages
	PageTitle string
	PageBody  template.HTML
}

// staticPage is an informational page with an inline body
type staticPage struct {
	slug  string
	title string
	body  template.HTML
}

// NewBuilder parses templates and makes a site builder
func NewBuilder(params Params) (*Builder, error) {
	params.BaseURL = strings.TrimRight(strings.TrimSpace(params.BaseURL), "/")
	if params.Now == nil {
		params.Now = time.Now
	}

	pages := map[string]*template.Template{}
	for _, name := range []string{"index.html", "article.html", "static.html"} {
		t, err := template.New("base.html").Funcs(tmplFuncs).ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}

	return &Builder{
		Params: params,
		pages:  pages,
		feeds:  feed.NewGenerator(params.BaseURL, params.BrandName, params.Description),
		client: &http.Client{Timeout: params.ImageTimeout},
	}, nil
}

// Build writes assets, robots.txt, sitemap.xml, feed.xml, the home page, static pages
// and one page per article into the site directory
func (b *Builder) Build(ctx context.Context, articles []domain.Article) error {
	now := b.Now().UTC().Truncate(time.Second)
	lgr.Printf("[INFO] building site in %s, %d articles", b.SiteDir, len(articles))

	for _, dir := range []string{b.SiteDir, filepath.Join(b.SiteDir, "articles"), filepath.Join(b.SiteDir, "assets")} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	if err := b.copyAssets(); err != nil {
		return err
	}

	robots := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", b.BaseURL)
	if err := b.writeFile("robots.txt", []byte(robots)); err != nil {
		return err
	}

	sitemap, err := b.feeds.GenerateSitemap(articles)
	if err != nil {
		return fmt.Errorf("generate sitemap: %w", err)
	}
	if err := b.writeFile("sitemap.xml", []byte(sitemap)); err != nil {
		return err
	}

	rss, err := b.feeds.GenerateRSS(articles, now, listSize)
	if err != nil {
		return fmt.Errorf("generate rss: %w", err)
	}
	if err := b.writeFile("feed.xml", []byte(rss)); err != nil {
		return err
	}

	// there is no popularity signal, ranking is the same recency order as new articles
	latest := feed.Latest(articles, listSize)
	base := pageData{
		Site:        siteInfo{BrandName: b.BrandName, Description: b.Description, BaseURL: b.BaseURL, ContactEmail: b.ContactEmail},
		Ranking:     latest,
		NewArticles: latest,
		NowISO:      now.Format(time.RFC3339),
	}

	home := base
	home.Title, home.Description = b.BrandName, b.Description
	home.Canonical, home.OGType = b.BaseURL+"/", "website"
	if err := b.render("index.html", home, "index.html"); err != nil {
		return err
	}

	for _, p := range b.staticPages() {
		page := base
		page.PageTitle, page.PageBody = p.title, p.body
		page.Title, page.Description = p.title, b.Description
		page.Canonical, page.OGType = b.BaseURL+"/"+p.slug+".html", "website"
		if err := b.render("static.html", page, p.slug+".html"); err != nil {
			return err
		}
	}

	for i := range articles {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("build interrupted: %w", err)
		}
		if err := b.renderArticle(ctx, base, &articles[i], articles); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) renderArticle(ctx context.Context, base pageData, a *domain.Article, articles []domain.Article) error {
	page := base
	page.Article = a
	page.Body = template.HTML(a.BodyHTML) //nolint:gosec // generated body is trusted, script openers are neutralized upstream
	page.Related = novelty.Related(*a, articles, relatedSize)
	page.Title = a.Title
	if page.Title == "" {
		page.Title = b.BrandName
	}
	page.Description = a.Summary
	if page.Description == "" {
		page.Description = b.Description
	}
	if r := []rune(page.Description); len(r) > descriptionN {
		page.Description = string(r[:descriptionN])
	}
	page.Canonical, page.OGType = b.BaseURL+a.Path, "article"
	if b.CacheImages {
		page.OGImage = b.cacheImage(ctx, a.HeroImage, a.ID)
	}

	rel := strings.TrimLeft(path.Clean("/"+a.Path), "/")
	if rel == "" || rel == "." {
		return fmt.Errorf("article %s has no path", a.ID)
	}
	return b.render("article.html", page, rel)
}

func (b *Builder) staticPages() []staticPage {
	email := template.HTMLEscapeString(b.ContactEmail)
	return []staticPage{
		{slug: "about", title: "About", body: "<p>This is a lite demo build: one run, one generated article.</p>"},
		{slug: "privacy", title: "Privacy", body: "<p>No accounts required. Third-party services may collect device identifiers.</p>"},
		{slug: "terms", title: "Terms", body: "<p>Use at your own risk. No guarantees.</p>"},
		{slug: "disclaimer", title: "Disclaimer", body: "<p>Not affiliated with any source. Trademarks belong to their owners.</p>"},
		{slug: "contact", title: "Contact",
			body: template.HTML(fmt.Sprintf("<p>Email: <a href='mailto:%s'>%s</a></p>", email, email))}, //nolint:gosec // escaped above
	}
}

// render executes the page template and writes the result to rel path under the site directory
func (b *Builder) render(page string, data pageData, rel string) error {
	var buf bytes.Buffer
	if err := b.pages[page].ExecuteTemplate(&buf, "base.html", data); err != nil {
		return fmt.Errorf("render %s: %w", rel, err)
	}
	return b.writeFile(rel, buf.Bytes())
}

func (b *Builder) copyAssets() error {
	err := fs.WalkDir(staticFS, "static", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := staticFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		return b.writeFile(path.Join("assets", strings.TrimPrefix(p, "static/")), data)
	})
	if err != nil {
		return fmt.Errorf("copy assets: %w", err)
	}
	return nil
}

func (b *Builder) writeFile(rel string, data []byte) error {
	dst := filepath.Join(b.SiteDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil { //nolint:gosec // public site content
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}
