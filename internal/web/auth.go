package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	models "storefront/internal/models"
	"storefront/internal/store"
)

// Login (email + password)
func (h *handlers) loginForm(c *gin.Context) {
	if currentUser(c) != nil {
		redirect(c, "/")
		return
	}
	h.render(c, http.StatusOK, "login.tmpl", nil)
}

func (h *handlers) login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	pw := c.PostForm("password")
	if email == "" || pw == "" {
		h.render(c, http.StatusBadRequest, "login.tmpl", ViewData{"Error": "Fill all fields.", "LastEmail": email})
		return
	}
	u, err := h.Users.FindByEmail(c.Request.Context(), email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.serverError(c, err)
		return
	}
	if u == nil || !models.CheckPassword(u.PasswordHash, pw) {
		h.render(c, http.StatusUnauthorized, "login.tmpl", ViewData{"Error": "Invalid credentials.", "LastEmail": email})
		return
	}
	h.signIn(c, u)
	h.Log.Info("user logged in", "user_id", u.ID)
	redirect(c, "/")
}

// Logout: сессия очищается, корзина вместе с ней
func (h *handlers) logout(c *gin.Context) {
	h.Cart.Clear(c.Request.Context(), sessionID(c))
	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		h.Log.Warn("session save failed", "err", err)
	}
	redirect(c, "/")
}

// Register (email + password twice)
func (h *handlers) registerForm(c *gin.Context) {
	if currentUser(c) != nil {
		redirect(c, "/")
		return
	}
	h.render(c, http.StatusOK, "register.tmpl", nil)
}

func (h *handlers) register(c *gin.Context) {
	var f registerForm
	if errs := fieldErrors(c.ShouldBind(&f)); len(errs) > 0 {
		h.render(c, http.StatusUnprocessableEntity, "register.tmpl", ViewData{"Errors": errs, "LastEmail": f.Email})
		return
	}
	u := &models.User{Email: f.Email, Role: models.RoleUser}
	if err := u.SetPassword(f.Password); err != nil {
		h.serverError(c, err)
		return
	}
	err := h.Users.Create(c.Request.Context(), u)
	if errors.Is(err, store.ErrEmailTaken) {
		h.render(c, http.StatusUnprocessableEntity, "register.tmpl", ViewData{
			"Errors": map[string]string{"Email": "This email is already registered."}, "LastEmail": f.Email,
		})
		return
	}
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.signIn(c, u)
	h.Log.Info("user registered", "user_id", u.ID)
	h.addFlash(c, flashSuccess, "Welcome! Your account has been created.")
	redirect(c, "/")
}
