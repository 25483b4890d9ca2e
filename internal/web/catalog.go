package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	models "storefront/internal/models"
	"storefront/internal/store"
)

func (h *handlers) catalogIndex(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	items, err := h.Products.Search(c.Request.Context(), q)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "list.tmpl", ViewData{"Items": items, "Query": q})
}

func (h *handlers) catalogShow(c *gin.Context) {
	p, ok := h.productParam(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, "show.tmpl", ViewData{"Item": p})
}

// JSON-выдача каталога, тот же поиск что и на главной
func (h *handlers) productsJSON(c *gin.Context) {
	items, err := h.Products.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list products"})
		return
	}
	out := make([]gin.H, 0, len(items))
	for _, p := range items {
		out = append(out, gin.H{
			"id":          p.ID,
			"name":        p.Name,
			"description": p.Description,
			"price":       p.Price.StringFixed(2),
			"stock":       p.Stock,
			"image":       h.Uploads.URL(p.Image),
		})
	}
	c.JSON(http.StatusOK, out)
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// productParam достаёт товар по :id; если его нет, уже ответил 404
func (h *handlers) productParam(c *gin.Context) (*models.Product, bool) {
	id, ok := parseID(c)
	if !ok {
		h.notFound(c)
		return nil, false
	}
	p, err := h.Products.FindByID(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		h.notFound(c)
		return nil, false
	}
	if err != nil {
		h.serverError(c, err)
		return nil, false
	}
	return p, true
}
