package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qancha/internal/models"
	"qancha/internal/seo"
	"qancha/internal/store"
)

const (
	htmlContentType   = "text/html; charset=utf-8"
	crawlerCacheValue = "public, max-age=0, must-revalidate"
)

// PageRenderer produces the HTML served on page routes.
type PageRenderer interface {
	Document(product *models.Product) ([]byte, error)
	Shell(product *models.Product) ([]byte, error)
}

// Home serves the landing page: crawlers get the site-wide metadata document,
// browsers get the SPA.
func Home(renderer PageRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /"
		defer handlePanic(c, route)

		if seo.IsCrawler(c.Request.UserAgent()) {
			renderCrawlerPage(c, route, renderer, nil)
			return
		}
		serveShell(c, route, renderer)
	}
}

// ProductPage serves /product/:id. Browsers get the SPA without a store
// read; the SPA loads the product through the API and renders its own
// not-found state. Crawlers get the product's metadata document, a 404 for
// unknown ids, and a 500 when the store read fails.
func ProductPage(products ProductStore, renderer PageRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /product/:id"
		defer handlePanic(c, route)

		if !seo.IsCrawler(c.Request.UserAgent()) {
			serveShell(c, route, renderer)
			return
		}

		id := c.Param("id")

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := products.FindByID(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			zap.S().Infof("[%s] crawler asked for unknown product %q", route, id)
			c.String(http.StatusNotFound, "Product not found")
			return
		}
		if err != nil {
			zap.S().Errorf("[%s] store read failed for %q: %v", route, id, err)
			c.String(http.StatusInternalServerError, "Internal Server Error")
			return
		}

		renderCrawlerPage(c, route, renderer, &product)
	}
}

func renderCrawlerPage(c *gin.Context, route string, renderer PageRenderer, product *models.Product) {
	page, err := renderer.Document(product)
	if err != nil {
		zap.S().Errorf("[%s] render failed: %v", route, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Header("Cache-Control", crawlerCacheValue)
	c.Data(http.StatusOK, htmlContentType, page)
}

func serveShell(c *gin.Context, route string, renderer PageRenderer) {
	page, err := renderer.Shell(nil)
	if err != nil {
		zap.S().Errorf("[%s] shell render failed: %v", route, err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(http.StatusOK, htmlContentType, page)
}

// SPAFallback serves the SPA for client-side routes such as /liked or
// /admin. A product path without an id is a plain 404; API paths and non-GET
// requests get a JSON 404.
func SPAFallback(renderer PageRenderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "NoRoute"

		path := c.Request.URL.Path
		if strings.TrimRight(path, "/") == "/product" {
			zap.S().Infof("[%s] product page requested without id", route)
			c.String(http.StatusNotFound, "Product ID not found")
			return
		}
		if c.Request.Method != http.MethodGet || strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/admin/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		serveShell(c, route, renderer)
	}
}
