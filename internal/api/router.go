// Package api wires the storefront HTTP surface onto gin.
package api

import (
	_ "embed"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Wang-tianhao/storefront-api/internal/metrics"
	"github.com/Wang-tianhao/storefront-api/internal/store"
	"github.com/Wang-tianhao/storefront-api/jwtauth"
)

// Collection names in the document store
const (
	ProductsCollection = "Products"
	CartCollection     = "cartCollection"
)

// DefaultMaxBodyBytes matches the 100kb JSON limit existing clients expect
const DefaultMaxBodyBytes = 100 << 10

//go:embed brands.json
var defaultBrands []byte

// Options carries the collaborators the router is built from.
type Options struct {
	Auth           *jwtauth.Config
	Products       store.Collection
	Cart           store.Collection
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	Brands         []byte // defaults to the embedded brand list
	MaxBodyBytes   int64  // defaults to DefaultMaxBodyBytes
}

type handlers struct {
	auth     *jwtauth.Config
	products store.Collection
	cart     store.Collection
	logger   *slog.Logger
	metrics  *metrics.Metrics
	brands   []byte
}

// NewRouter builds the gin engine with every route from the route table.
func NewRouter(opts Options) (*gin.Engine, error) {
	if opts.Auth == nil {
		return nil, errors.New("api: auth config is required")
	}
	if opts.Products == nil || opts.Cart == nil {
		return nil, errors.New("api: products and cart collections are required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	if opts.Brands == nil {
		opts.Brands = defaultBrands
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	h := &handlers{
		auth:     opts.Auth,
		products: opts.Products,
		cart:     opts.Cart,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		brands:   opts.Brands,
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(opts.Logger), instrument(opts.Metrics), limitBody(opts.MaxBodyBytes))

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", jwtauth.RequestIDHeader},
			ExposeHeaders:    []string{jwtauth.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	for _, route := range h.routes() {
		r.Handle(route.Method, route.Path, route.chain(opts.Auth)...)
	}
	r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r, nil
}

// Routes returns the route table with its access classes.
func Routes() []Route {
	return (&handlers{}).routes()
}

func (h *handlers) root(c *gin.Context) {
	c.String(http.StatusOK, "Server is running")
}

func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *handlers) listBrands(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", h.brands)
}
