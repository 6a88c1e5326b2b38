// Package web serves the server-rendered catalog front-end on top of the REST API.
package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"anoa.com/catalog/internal/middleware"
	"anoa.com/catalog/internal/web/apiclient"
	"anoa.com/catalog/internal/web/session"
	"anoa.com/catalog/pkg/response"
	"anoa.com/catalog/pkg/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	AuthCookie = "AuthToken"
	loginPath  = "/account/login"

	rememberMeTTL = 7 * 24 * time.Hour
	defaultTTL    = time.Hour
)

type Options struct {
	API          *apiclient.Client
	Sessions     *session.Manager
	CookieSecure bool
	Logger       *zap.Logger
}

type Handler struct {
	api          *apiclient.Client
	sessions     *session.Manager
	cookieSecure bool
	log          *zap.Logger
}

// NewRouter builds the front-end engine with its middleware, templates and routes.
func NewRouter(opts Options) (*gin.Engine, error) {
	if err := validator.Register(); err != nil {
		return nil, err
	}

	pages, err := loadTemplates()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		api:          opts.API,
		sessions:     opts.Sessions,
		cookieSecure: opts.CookieSecure,
		log:          opts.Logger.Named("web"),
	}

	r := gin.New()
	r.HTMLRender = pages

	r.Use(middleware.RequestID(opts.Logger))
	r.Use(middleware.Logger(opts.Logger))
	r.Use(middleware.Recovery(opts.Logger))
	r.Use(opts.Sessions.Middleware())
	r.Use(session.CSRF())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/products")
	})
	r.GET("/about", h.About)

	account := r.Group("/account")
	account.GET("/login", h.LoginPage)
	account.POST("/login", h.Login)
	account.GET("/logout", h.Logout)

	guarded := r.Group("")
	guarded.Use(h.RequireLogin())

	products := guarded.Group("/products")
	products.GET("", h.ProductIndex)
	products.GET("/grouped", h.ProductGrouped)
	products.GET("/grouped/export", h.ProductGroupedExport)
	products.GET("/create", h.ProductCreatePage)
	products.POST("/create", h.ProductCreate)
	products.GET("/:id", h.ProductDetails)
	products.GET("/:id/edit", h.ProductEditPage)
	products.POST("/:id/edit", h.ProductEdit)
	products.GET("/:id/delete", h.ProductDeletePage)
	products.POST("/:id/delete", h.ProductDelete)

	categories := guarded.Group("/categories")
	categories.GET("", h.CategoryIndex)
	categories.GET("/create", h.CategoryCreatePage)
	categories.POST("/create", h.CategoryCreate)
	categories.GET("/:id", h.CategoryDetails)
	categories.GET("/:id/edit", h.CategoryEditPage)
	categories.POST("/:id/edit", h.CategoryEdit)
	categories.GET("/:id/delete", h.CategoryDeletePage)
	categories.POST("/:id/delete", h.CategoryDelete)

	return r, nil
}

// authenticated reports whether the request carries an auth cookie and a
// session that knows the user.
func (h *Handler) authenticated(c *gin.Context) bool {
	tok, err := c.Cookie(AuthCookie)
	if err != nil || tok == "" {
		return false
	}
	sess := session.Get(c)
	return sess != nil && sess.Username() != ""
}

func (h *Handler) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.authenticated(c) {
			c.Redirect(http.StatusFound, loginURL(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// client returns the API client carrying the caller's token.
func (h *Handler) client(c *gin.Context) *apiclient.Client {
	tok, _ := c.Cookie(AuthCookie)
	return h.api.WithToken(tok)
}

func (h *Handler) setAuthCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookie, token, int(ttl.Seconds()), "/", "", h.cookieSecure || c.Request.TLS != nil, true)
}

func (h *Handler) clearAuth(c *gin.Context) *session.Session {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookie, "", -1, "/", "", h.cookieSecure || c.Request.TLS != nil, true)
	return h.sessions.Destroy(c)
}

// apiFailed handles an API error for a page that cannot render without the
// data by flashing a message and redirecting.
func (h *Handler) apiFailed(c *gin.Context, err error, notFound, fallback, redirect string) {
	sess := session.Get(c)

	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		h.expire(c)
		return
	case errors.Is(err, apiclient.ErrNotFound):
		sess.AddFlash(session.FlashError, notFound)
	default:
		response.Logger(c).Error("api call failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		sess.AddFlash(session.FlashError, fallback)
	}
	c.Redirect(http.StatusFound, redirect)
}

// expire logs the user out after the API rejected their token.
func (h *Handler) expire(c *gin.Context) {
	h.log.Info("api rejected token, logging out", zap.String("path", c.Request.URL.Path))
	h.clearAuth(c).AddFlash(session.FlashError, "Your session has expired. Please log in again.")
	c.Redirect(http.StatusFound, loginURL(c.Request.URL.RequestURI()))
}

// render executes page inside the layout with the per-request values every page needs.
func (h *Handler) render(c *gin.Context, status int, page, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	sess := session.Get(c)

	data["Title"] = title
	if sess != nil {
		data["Username"] = sess.Username()
		data["Flashes"] = sess.Flashes()
		data["CSRFToken"] = sess.CSRFToken()
	}
	data["Authenticated"] = h.authenticated(c)

	c.HTML(status, page, data)
}

func loginURL(returnURL string) string {
	if returnURL == "" || returnURL == "/" {
		return loginPath
	}
	return loginPath + "?return_url=" + url.QueryEscape(returnURL)
}

// isLocalURL accepts absolute paths on this host only.
func isLocalURL(raw string) bool {
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return false
	}
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && u.Host == "" && u.Scheme == ""
}
