package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	models "storefront/internal/models"
)

const minPasswordLen = 6

func (h *handlers) profile(c *gin.Context) {
	h.render(c, http.StatusOK, "profile.tmpl", nil)
}

// changePassword: текущий пароль, длина, совпадение - в таком порядке
func (h *handlers) changePassword(c *gin.Context) {
	u := currentUser(c)
	current := c.PostForm("current_password")
	newPass := c.PostForm("new_password")
	confirm := c.PostForm("confirm_password")

	switch {
	case !models.CheckPassword(u.PasswordHash, current):
		h.addFlash(c, flashDanger, "The current password is incorrect.")
	case len(newPass) < minPasswordLen:
		h.addFlash(c, flashDanger, "The new password must be at least 6 characters long.")
	case newPass != confirm:
		h.addFlash(c, flashDanger, "The passwords do not match.")
	default:
		if err := u.SetPassword(newPass); err != nil {
			h.serverError(c, err)
			return
		}
		if err := h.Users.UpdatePassword(c.Request.Context(), u); err != nil {
			h.serverError(c, err)
			return
		}
		h.Log.Info("password changed", "user_id", u.ID)
		h.addFlash(c, flashSuccess, "Password updated.")
	}
	redirect(c, "/profile")
}
