package feed

import (
	"encoding/xml"
	"fmt"
	stdhtml "html"
	"sort"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/newsmith/pkg/domain"
)

const descriptionLimit = 240

// Generator creates the site RSS feed and sitemap from archived articles
type Generator struct {
	baseURL     string
	title       string
	description string
	stripper    *bluemonday.Policy
}

// NewGenerator creates a new feed generator
func NewGenerator(baseURL, title, description string) *Generator {
	stripper := bluemonday.StrictPolicy()
	stripper.AddSpaceWhenStrippingTag(true)
	return &Generator{
		baseURL:     strings.TrimRight(baseURL, "/"),
		title:       title,
		description: description,
		stripper:    stripper,
	}
}

// GenerateRSS creates an RSS 2.0 feed with up to limit most recently published articles
func (g *Generator) GenerateRSS(articles []domain.Article, buildTime time.Time, limit int) (string, error) {
	latest := Latest(articles, limit)

	rssItems := make([]*RSSItem, 0, len(latest))
	for _, a := range latest {
		rssItems = append(rssItems, g.convertToRSSItem(a))
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         g.title,
			Link:          g.baseURL + "/",
			Description:   g.description,
			AtomLink:      &AtomLink{Href: g.baseURL + "/feed.xml", Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: buildTime.UTC().Format(time.RFC1123Z),
			Items:         rssItems,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal RSS: %w", err)
	}
	return xml.Header + string(output) + "\n", nil
}

// GenerateSitemap lists the home page followed by every article, in archive order
func (g *Generator) GenerateSitemap(articles []domain.Article) (string, error) {
	set := URLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	set.URLs = append(set.URLs, SitemapURL{Loc: g.baseURL + "/"})
	for _, a := range articles {
		set.URLs = append(set.URLs, SitemapURL{Loc: g.baseURL + a.Path})
	}

	output, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal sitemap: %w", err)
	}
	return xml.Header + string(output) + "\n", nil
}

// convertToRSSItem converts an article to an RSS item
func (g *Generator) convertToRSSItem(a domain.Article) *RSSItem {
	link := g.baseURL + a.Path
	return &RSSItem{
		Title:       a.Title,
		Link:        link,
		GUID:        &RSSGUID{IsPermaLink: true, Value: link},
		PubDate:     a.PublishedTS.UTC().Format(time.RFC1123Z),
		Description: g.describe(a),
	}
}

// describe returns the summary, or the first characters of the body text if there is no summary
func (g *Generator) describe(a domain.Article) string {
	if a.Summary != "" {
		return a.Summary
	}
	text := stdhtml.UnescapeString(g.stripper.Sanitize(a.BodyHTML))
	text = strings.Join(strings.Fields(text), " ")
	if r := []rune(text); len(r) > descriptionLimit {
		text = string(r[:descriptionLimit])
	}
	return text
}

// Latest returns up to limit articles ordered by publish time, newest first.
// Articles published at the same time keep their archive order.
func Latest(articles []domain.Article, limit int) []domain.Article {
	sorted := make([]domain.Article, len(articles))
	copy(sorted, articles)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].PublishedTS.After(sorted[j].PublishedTS) })
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
