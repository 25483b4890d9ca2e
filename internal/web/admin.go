package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	models "storefront/internal/models"
	"storefront/internal/upload"
)

type adminRow struct {
	Product     models.Product
	DeleteToken string
}

func deleteIntent(id uint) string { return "delete" + strconv.FormatUint(uint64(id), 10) }

func (h *handlers) adminIndex(c *gin.Context) {
	items, err := h.Products.FindAll(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	sid := sessionID(c)
	rows := make([]adminRow, 0, len(items))
	for _, p := range items {
		rows = append(rows, adminRow{Product: p, DeleteToken: h.csrf.token(sid, deleteIntent(p.ID))})
	}
	h.render(c, http.StatusOK, "admin_index.tmpl", ViewData{"Rows": rows})
}

func (h *handlers) adminNewForm(c *gin.Context) {
	h.renderProductForm(c, http.StatusOK, nil, productForm{}, nil)
}

func (h *handlers) adminCreate(c *gin.Context) {
	var p models.Product
	if !h.bindProduct(c, &p) {
		return
	}
	ctx := c.Request.Context()
	if err := h.Products.Create(ctx, &p); err != nil {
		h.Uploads.Remove(ctx, p.Image)
		h.serverError(c, err)
		return
	}
	h.Log.Info("product created", "product_id", p.ID)
	h.addFlash(c, flashSuccess, "Product created.")
	redirect(c, "/admin")
}

func (h *handlers) adminEditForm(c *gin.Context) {
	p, ok := h.productParam(c)
	if !ok {
		return
	}
	h.renderProductForm(c, http.StatusOK, p, formFromProduct(p), nil)
}

func (h *handlers) adminUpdate(c *gin.Context) {
	p, ok := h.productParam(c)
	if !ok {
		return
	}
	oldImage := p.Image
	if !h.bindProduct(c, p) {
		return
	}
	ctx := c.Request.Context()
	if err := h.Products.Save(ctx, p); err != nil {
		if p.Image != oldImage {
			h.Uploads.Remove(ctx, p.Image)
		}
		h.serverError(c, err)
		return
	}
	// старую картинку удаляем только когда новая уже записана в товар
	if p.Image != oldImage {
		h.Uploads.Remove(ctx, oldImage)
	}
	h.Log.Info("product updated", "product_id", p.ID)
	h.addFlash(c, flashSuccess, "Product updated.")
	redirect(c, "/admin")
}

// adminDelete: неверный токен - молча назад в список, как и раньше
func (h *handlers) adminDelete(c *gin.Context) {
	p, ok := h.productParam(c)
	if !ok {
		return
	}
	if !h.csrf.valid(sessionID(c), deleteIntent(p.ID), c.PostForm("_token")) {
		h.Log.Warn("delete rejected: bad csrf token", "product_id", p.ID)
		redirect(c, "/admin")
		return
	}
	ctx := c.Request.Context()
	if err := h.Products.Delete(ctx, p); err != nil {
		h.serverError(c, err)
		return
	}
	h.Uploads.Remove(ctx, p.Image)
	h.Log.Info("product deleted", "product_id", p.ID)
	h.addFlash(c, flashSuccess, "Product deleted.")
	redirect(c, "/admin")
}

// bindProduct валидирует форму и картинку и переносит их в p.
// false - ответ (форма с ошибками) уже отдан.
func (h *handlers) bindProduct(c *gin.Context, p *models.Product) bool {
	var f productForm
	errs := fieldErrors(c.ShouldBind(&f))
	delete(errs, "_form")
	f.apply(p, errs)

	fh, fileErr := c.FormFile("image")
	if fileErr != nil && !errors.Is(fileErr, http.ErrMissingFile) {
		errs["Image"] = "Could not read the uploaded file."
	}
	if len(errs) > 0 {
		h.renderProductForm(c, http.StatusUnprocessableEntity, existing(p), f, errs)
		return false
	}
	if fh == nil {
		return true
	}

	name, err := h.Uploads.Store(c.Request.Context(), fh)
	switch {
	case err == nil:
		h.Metrics.ObserveUpload("ok")
		p.Image = name
	case errors.Is(err, upload.ErrTooLarge):
		h.Metrics.ObserveUpload("rejected")
		errs["Image"] = fmt.Sprintf("The image is too large (max %s).", sizeLabel(h.Uploads.MaxBytes()))
	case errors.Is(err, upload.ErrUnsupportedType):
		h.Metrics.ObserveUpload("rejected")
		errs["Image"] = "Please upload a valid image (JPEG, PNG, WebP or GIF)."
	default:
		// товар всё равно сохраняем, без новой картинки
		h.Metrics.ObserveUpload("error")
		h.Log.Error("image upload failed", "err", err, "file", fh.Filename)
		h.addFlash(c, flashDanger, "Error uploading the image. The product was saved without it.")
	}
	if len(errs) > 0 {
		h.renderProductForm(c, http.StatusUnprocessableEntity, existing(p), f, errs)
		return false
	}
	return true
}

func existing(p *models.Product) *models.Product {
	if !p.Persisted() {
		return nil
	}
	return p
}

func (h *handlers) renderProductForm(c *gin.Context, status int, p *models.Product, f productForm, errs map[string]string) {
	mode := "create"
	action := "/admin/producto/new"
	if p != nil {
		mode = "edit"
		action = "/admin/producto/" + strconv.FormatUint(uint64(p.ID), 10) + "/edit"
	}
	h.render(c, status, "admin_form.tmpl", ViewData{
		"Mode": mode, "Action": action, "Item": p, "Form": f, "Errors": errs,
		"MaxImageSize": sizeLabel(h.Uploads.MaxBytes()),
	})
}

// sizeLabel: 4<<20 -> "4 MB", некруглое - в KB
func sizeLabel(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%d MB", n>>20)
	}
	return fmt.Sprintf("%d KB", (n+1023)>>10)
}
