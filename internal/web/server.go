// Package web — HTTP-слой магазина на gin: каталог, корзина, админка, профиль, вход.
package web

import (
	"embed"
	"encoding/gob"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"storefront/internal/cart"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/store"
	"storefront/internal/upload"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

const sessionName = "shop_session"

func init() {
	// flashes лежат в сессии как []interface{}
	gob.Register([]interface{}{})
}

// Deps — всё, что нужно роутеру
type Deps struct {
	DB       *gorm.DB
	Products *store.Products
	Users    *store.Users
	Cart     *cart.Service
	Uploads  *upload.Uploader
	Metrics  *metrics.Metrics
	Log      *slog.Logger

	SessionSecret string
	SecureCookies bool
	// UploadRoot/UploadURL: раздавать локальный диск как статику; пусто - не раздавать (S3)
	UploadRoot string
	UploadURL  string
}

type handlers struct {
	Deps
	csrf csrf
}

// NewRouter собирает gin.Engine со всеми маршрутами
func NewRouter(d Deps) (*gin.Engine, error) {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	h := &handlers{Deps: d, csrf: csrf{secret: []byte(d.SessionSecret)}}

	tmpl, err := template.New("").Funcs(h.funcs()).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.Requests(d.Log), d.Metrics.Middleware())
	r.SetHTMLTemplate(tmpl)

	if d.UploadRoot != "" {
		r.Static(d.UploadURL, d.UploadRoot)
	}

	sessStore := cookie.NewStore([]byte(d.SessionSecret))
	sessStore.Options(sessions.Options{Path: "/", HttpOnly: true, Secure: d.SecureCookies, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, sessStore), h.ensureSession(), h.loadUser())

	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	// каталог
	r.GET("/", h.catalogIndex)
	r.GET("/producto/:id", h.catalogShow)
	r.GET("/products", h.productsJSON)

	// корзина
	r.POST("/cart/add/:id", h.cartAdd)
	r.POST("/cart/remove/:id", h.cartRemove)
	r.GET("/cart", h.cartIndex)

	// вход / регистрация
	r.GET("/login", h.loginForm)
	r.POST("/login", h.login)
	r.GET("/logout", h.logout)
	r.GET("/register", h.registerForm)
	r.POST("/register", h.register)

	profile := r.Group("/profile", h.mustLogin())
	profile.GET("", h.profile)
	profile.POST("/password", h.changePassword)

	admin := r.Group("/admin", h.mustAdmin())
	admin.GET("", h.adminIndex)
	admin.GET("/producto/new", h.adminNewForm)
	admin.POST("/producto/new", h.adminCreate)
	admin.GET("/producto/:id/edit", h.adminEditForm)
	admin.POST("/producto/:id/edit", h.adminUpdate)
	admin.POST("/producto/:id/delete", h.adminDelete)

	r.NoRoute(func(c *gin.Context) { h.notFound(c) })
	return r, nil
}

func (h *handlers) funcs() template.FuncMap {
	return template.FuncMap{
		"price": func(d decimal.Decimal) string { return d.StringFixed(2) },
		"image": h.Uploads.URL,
	}
}

func (h *handlers) health(c *gin.Context) {
	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
