package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/cart"
)

// ------ Cart ------
func (h *handlers) cartAdd(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.notFound(c)
		return
	}
	qty, err := strconv.Atoi(strings.TrimSpace(c.DefaultPostForm("quantity", "1")))
	if err != nil {
		qty = 1
	}
	qty = max(1, qty)

	ctx := c.Request.Context()
	added := h.Cart.Add(ctx, sessionID(c), id, qty)
	h.Metrics.ObserveCartAdd(qty, added)

	name := "Product"
	if p, err := h.Products.FindByID(ctx, id); err == nil {
		name = p.Name
	}
	switch {
	case added == 0:
		h.addFlash(c, flashDanger, fmt.Sprintf("Cannot add %s: you already have all available stock in your cart.", name))
	case added < qty:
		h.addFlash(c, flashWarning, fmt.Sprintf("Only %d units of %s were added (stock limit reached).", added, name))
	default:
		h.addFlash(c, flashSuccess, fmt.Sprintf("%s × %d added to cart.", name, added))
	}
	redirect(c, backTo(c, "/"))
}

func (h *handlers) cartRemove(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.notFound(c)
		return
	}
	h.Cart.Remove(c.Request.Context(), sessionID(c), id)
	h.addFlash(c, flashSuccess, "Product removed from cart.")
	redirect(c, "/cart")
}

func (h *handlers) cartIndex(c *gin.Context) {
	items := h.Cart.Items(c.Request.Context(), sessionID(c))
	h.render(c, http.StatusOK, "cart.tmpl", ViewData{
		"Items": items,
		"Total": cart.Sum(items),
	})
}

// backTo — путь из Referer, если он с нашего хоста; иначе fallback
func backTo(c *gin.Context, fallback string) string {
	ref := c.GetHeader("Referer")
	if ref == "" {
		return fallback
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Host != "" && u.Host != c.Request.Host) {
		return fallback
	}
	if u.Path == "" || !strings.HasPrefix(u.Path, "/") {
		return fallback
	}
	if u.RawQuery != "" {
		return u.Path + "?" + u.RawQuery
	}
	return u.Path
}
