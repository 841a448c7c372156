package seo

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"regexp"

	"go.uber.org/zap"

	"qancha/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	titleTag       = regexp.MustCompile(`(?is)<title[^>]*>.*?</title>\s*`)
	descriptionTag = regexp.MustCompile(`(?is)<meta\s+[^>]*name=["'](?:description|title)["'][^>]*>\s*`)
	keywordsTag    = regexp.MustCompile(`(?is)<meta\s+[^>]*name=["']keywords["'][^>]*>\s*`)
	socialTag      = regexp.MustCompile(`(?is)<meta\s+[^>]*(?:name|property)=["'](?:og|twitter|product):[^"']*["'][^>]*>\s*`)
	canonicalTag   = regexp.MustCompile(`(?is)<link\s+[^>]*rel=["']canonical["'][^>]*>\s*`)
	headClose      = regexp.MustCompile(`(?i)</head>`)
)

// Renderer turns head tags into HTML: a standalone document for crawlers, or
// the SPA index page with its head rewritten.
type Renderer struct {
	site      Site
	templates *template.Template
	shell     string
}

// NewRenderer parses the embedded templates and loads the SPA index page from
// shellPath. A missing index page falls back to a minimal embedded shell.
func NewRenderer(site Site, shellPath string) (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/head.html", "templates/document.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	shell, err := os.ReadFile(shellPath)
	if errors.Is(err, fs.ErrNotExist) {
		zap.S().Warnf("NewRenderer: %s not found, using embedded shell", shellPath)
		shell, err = templateFS.ReadFile("templates/shell.html")
	}
	if err != nil {
		return nil, fmt.Errorf("read shell: %w", err)
	}

	return &Renderer{
		site:      site,
		templates: templates,
		shell:     stripHeadTags(string(shell)),
	}, nil
}

func (r *Renderer) Site() Site {
	return r.site
}

// Document renders the crawler-facing page for product, or the home page
// when product is nil.
func (r *Renderer) Document(product *models.Product) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "document.html", BuildHeadTags(r.site, product)); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}

// Shell returns the SPA index page with the same head tags a crawler would get.
func (r *Renderer) Shell(product *models.Product) ([]byte, error) {
	var head bytes.Buffer
	if err := r.templates.ExecuteTemplate(&head, "head", BuildHeadTags(r.site, product)); err != nil {
		return nil, fmt.Errorf("render head: %w", err)
	}
	return injectHead(r.shell, head.Bytes()), nil
}

// stripHeadTags drops the tags BuildHeadTags owns so the page never carries
// two titles or descriptions.
func stripHeadTags(page string) string {
	page = titleTag.ReplaceAllString(page, "")
	page = descriptionTag.ReplaceAllString(page, "")
	page = keywordsTag.ReplaceAllString(page, "")
	page = socialTag.ReplaceAllString(page, "")
	return canonicalTag.ReplaceAllString(page, "")
}

func injectHead(page string, head []byte) []byte {
	loc := headClose.FindStringIndex(page)
	if loc == nil {
		out := make([]byte, 0, len(head)+len(page))
		return append(append(out, head...), page...)
	}

	out := make([]byte, 0, len(page)+len(head))
	out = append(out, page[:loc[0]]...)
	out = append(out, head...)
	out = append(out, page[loc[0]:]...)
	return out
}
