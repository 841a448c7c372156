package server

import (
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"qancha/internal/handlers"
	"qancha/internal/middleware"
	"qancha/internal/prefs"
	"qancha/internal/storage"
)

// Deps is everything the router hands to handlers.
type Deps struct {
	Products handlers.ProductStore
	Images   storage.Storage
	Renderer handlers.PageRenderer
	Prefs    *prefs.CookieStore

	Admin     handlers.AdminCredentials
	JWTSecret string
	AccessTTL time.Duration

	PageSize     int64
	BulkMaxBytes int64

	PublicDir string
	AssetsDir string
	UploadDir string
}

var publicFiles = []string{
	"favicon.ico",
	"favicon-16x16.png",
	"favicon-32x32.png",
	"apple-touch-icon.png",
	"site.webmanifest",
	"robots.txt",
	"main.png",
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	for _, name := range publicFiles {
		r.StaticFile("/"+name, filepath.Join(d.PublicDir, name))
	}
	r.Static("/assets", d.AssetsDir)
	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	r.GET("/healthz", handlers.Health(d.Products))

	r.GET("/", handlers.Home(d.Renderer))
	r.GET("/product/:id", handlers.ProductPage(d.Products, d.Renderer))

	api := r.Group("/api")
	{
		api.GET("/products", handlers.GetProducts(d.Products, d.PageSize))
		api.GET("/products/:id", handlers.GetProduct(d.Products))
		api.POST("/products/:id/views", handlers.IncrementViews(d.Products))
		api.POST("/products/:id/forwards", handlers.IncrementForwards(d.Products))
		api.GET("/product-types", handlers.GetProductTypes())

		api.GET("/likes", handlers.GetLikes(d.Prefs))
		api.POST("/likes/:id", handlers.ToggleLike(d.Prefs))
	}

	r.POST("/admin/login", handlers.AdminLogin(d.Admin, d.JWTSecret, d.AccessTTL))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(d.JWTSecret))
	{
		admin.GET("/me", handlers.AdminMe())

		admin.GET("/products", handlers.GetAdminProducts(d.Products, d.PageSize))
		admin.POST("/products", handlers.CreateProduct(d.Products, d.Images))
		admin.POST("/products/bulk", handlers.BulkUploadProducts(d.Products, d.BulkMaxBytes))
		admin.PUT("/products/:id", handlers.UpdateProduct(d.Products, d.Images))
		admin.DELETE("/products/:id", handlers.DeleteProduct(d.Products, d.Images))
	}

	r.NoRoute(handlers.SPAFallback(d.Renderer))

	return r
}
