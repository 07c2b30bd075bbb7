package content

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// PrivacyDir holds one markdown file per app, named by slug.
const PrivacyDir = "privacy"

type Page struct {
	Slug          string
	Title         string
	App           string
	Summary       string
	EffectiveDate time.Time
	Body          template.HTML
}

type frontMatter struct {
	Title         string `yaml:"title"`
	App           string `yaml:"app"`
	Summary       string `yaml:"summary"`
	EffectiveDate string `yaml:"effective_date"`
}

// Pages renders privacy policies from markdown. Output is sanitized, so
// page authors cannot inject script even with raw HTML in the source.
type Pages struct {
	fsys   fs.FS
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewPages(fsys fs.FS) *Pages {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	return &Pages{
		fsys:   fsys,
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: policy,
	}
}

func (p *Pages) Get(slug string) (Page, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Page{}, ErrNotFound
	}
	raw, err := fs.ReadFile(p.fsys, path.Join(PrivacyDir, slug+".md"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Page{}, ErrNotFound
		}
		return Page{}, err
	}

	fmText, body := splitFrontMatter(string(raw))
	var meta frontMatter
	if fmText != "" {
		if err := yaml.Unmarshal([]byte(fmText), &meta); err != nil {
			return Page{}, fmt.Errorf("front matter %s: %w", slug, err)
		}
	}

	var buf bytes.Buffer
	if err := p.md.Convert([]byte(body), &buf); err != nil {
		return Page{}, fmt.Errorf("render %s: %w", slug, err)
	}

	page := Page{
		Slug:          slug,
		Title:         meta.Title,
		App:           meta.App,
		Summary:       meta.Summary,
		EffectiveDate: parseDate(meta.EffectiveDate),
		Body:          template.HTML(p.policy.SanitizeBytes(buf.Bytes())),
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug) + " Privacy Policy"
	}
	return page, nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseDate(v string) time.Time {
	v = strings.TrimSpace(v)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func sanitizeSlug(slug string) string {
	slug = strings.Trim(strings.TrimSpace(strings.ToLower(slug)), "/")
	if slug == "" || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}

func prettifySlug(slug string) string {
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part != "" {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}
