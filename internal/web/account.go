package web

import (
	"errors"
	"net/http"

	"anoa.com/catalog/internal/web/apiclient"
	"anoa.com/catalog/internal/web/session"
	"anoa.com/catalog/pkg/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginForm struct {
	Username   string `form:"username" binding:"required,max=50"`
	Password   string `form:"password" binding:"required"`
	RememberMe bool   `form:"remember_me"`
	ReturnURL  string `form:"return_url"`
}

func (h *Handler) redirectLocal(c *gin.Context, returnURL string) {
	if isLocalURL(returnURL) {
		c.Redirect(http.StatusFound, returnURL)
		return
	}
	c.Redirect(http.StatusFound, "/products")
}

func (h *Handler) LoginPage(c *gin.Context) {
	returnURL := c.Query("return_url")

	if h.authenticated(c) {
		h.redirectLocal(c, returnURL)
		return
	}

	h.render(c, http.StatusOK, "account/login", "Log in", gin.H{
		"Form": LoginForm{ReturnURL: returnURL},
	})
}

func (h *Handler) Login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		form.Password = ""
		h.render(c, http.StatusBadRequest, "account/login", "Log in", gin.H{
			"Form":  form,
			"Error": validator.FormatValidationError(err),
		})
		return
	}

	h.log.Info("login attempt", zap.String("username", form.Username))

	res, err := h.api.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil || res.Token == "" {
		form.Password = ""
		h.render(c, http.StatusOK, "account/login", "Log in", gin.H{
			"Form":  form,
			"Error": loginErrorMessage(err),
		})
		if err != nil && !errors.Is(err, apiclient.ErrUnauthorized) {
			h.log.Error("login failed", zap.String("username", form.Username), zap.Error(err))
		} else {
			h.log.Warn("login rejected", zap.String("username", form.Username))
		}
		return
	}

	ttl := defaultTTL
	if form.RememberMe {
		ttl = rememberMeTTL
	}
	h.setAuthCookie(c, res.Token, ttl)

	// Rotate the session id on login.
	sess := h.sessions.Destroy(c)
	sess.SetUser(res.Username, res.ExpiresAt)
	sess.AddFlash(session.FlashSuccess, "Login successful!")

	h.log.Info("user logged in", zap.String("username", res.Username))
	h.redirectLocal(c, form.ReturnURL)
}

func loginErrorMessage(err error) string {
	var apiErr *apiclient.APIError
	switch {
	case err == nil, errors.Is(err, apiclient.ErrUnauthorized):
		return "Invalid username or password."
	case errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError:
		return apiErr.Error()
	default:
		return "An error occurred during login. Please try again."
	}
}

func (h *Handler) Logout(c *gin.Context) {
	h.clearAuth(c).AddFlash(session.FlashSuccess, "You have been logged out successfully.")
	h.log.Info("user logged out")
	c.Redirect(http.StatusFound, loginPath)
}

func (h *Handler) About(c *gin.Context) {
	h.render(c, http.StatusOK, "home/about", "About", nil)
}
