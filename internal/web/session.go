package web

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	models "storefront/internal/models"
)

const (
	keySessionID = "sid"
	keyUserID    = "user_id"
	ctxUser      = "currentUser"
)

// Виды flash-сообщений, совпадают с классами alert в шаблонах
const (
	flashSuccess = "success"
	flashWarning = "warning"
	flashDanger  = "danger"
)

var flashKinds = []string{flashSuccess, flashWarning, flashDanger}

type ViewData map[string]any

type flash struct {
	Kind    string
	Message string
}

// ensureSession выдаёт посетителю идентификатор сессии, к нему привязана корзина
func (h *handlers) ensureSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		if id, _ := sess.Get(keySessionID).(string); id == "" {
			sess.Set(keySessionID, uuid.NewString())
			if err := sess.Save(); err != nil {
				h.Log.Warn("session save failed", "err", err)
			}
		}
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	id, _ := sessions.Default(c).Get(keySessionID).(string)
	return id
}

// loadUser кладёт в контекст пользователя из сессии; протухший user_id выкидывается
func (h *handlers) loadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		id, ok := sess.Get(keyUserID).(uint)
		if !ok {
			c.Next()
			return
		}
		u, err := h.Users.FindByID(c.Request.Context(), id)
		if err != nil {
			sess.Delete(keyUserID)
			_ = sess.Save()
			c.Next()
			return
		}
		c.Set(ctxUser, u)
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

func (h *handlers) signIn(c *gin.Context, u *models.User) {
	sess := sessions.Default(c)
	sess.Set(keyUserID, u.ID)
	if err := sess.Save(); err != nil {
		h.Log.Warn("session save failed", "err", err)
	}
	c.Set(ctxUser, u)
}

func (h *handlers) addFlash(c *gin.Context, kind, msg string) {
	sess := sessions.Default(c)
	sess.AddFlash(msg, kind)
	if err := sess.Save(); err != nil {
		h.Log.Warn("session save failed", "err", err)
	}
}

// redirect после POST - всегда 303
func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// render дополняет данные общими полями шаблона и забирает flash-сообщения
func (h *handlers) render(c *gin.Context, status int, name string, data ViewData) {
	if data == nil {
		data = ViewData{}
	}
	sess := sessions.Default(c)
	var flashes []flash
	for _, kind := range flashKinds {
		for _, m := range sess.Flashes(kind) {
			if s, ok := m.(string); ok {
				flashes = append(flashes, flash{Kind: kind, Message: s})
			}
		}
	}
	if len(flashes) > 0 {
		if err := sess.Save(); err != nil {
			h.Log.Warn("session save failed", "err", err)
		}
	}

	if _, ok := data["Errors"]; !ok {
		data["Errors"] = map[string]string{}
	}
	u := currentUser(c)
	data["User"] = u
	data["IsAdmin"] = u != nil && u.IsAdmin()
	data["CartCount"] = h.Cart.Count(c.Request.Context(), sessionID(c))
	data["Flashes"] = flashes
	c.HTML(status, name, data)
}

func (h *handlers) notFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "error.tmpl", ViewData{
		"Status": http.StatusNotFound, "Message": "Page not found.",
	})
}

func (h *handlers) forbidden(c *gin.Context) {
	h.render(c, http.StatusForbidden, "error.tmpl", ViewData{
		"Status": http.StatusForbidden, "Message": "Access denied.",
	})
}

func (h *handlers) serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	h.render(c, http.StatusInternalServerError, "error.tmpl", ViewData{
		"Status": http.StatusInternalServerError, "Message": "Something went wrong, please try again.",
	})
}
