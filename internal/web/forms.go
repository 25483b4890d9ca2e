package web

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	models "storefront/internal/models"
)

var maxPrice = decimal.RequireFromString("99999999.99")

// productForm — поля формы товара; Price/Stock строками, разбираются в apply
type productForm struct {
	Name        string `form:"name" binding:"required,max=255"`
	Description string `form:"description" binding:"max=5000"`
	Price       string `form:"price" binding:"required"`
	Stock       string `form:"stock" binding:"required"`
}

func formFromProduct(p *models.Product) productForm {
	return productForm{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       strconv.Itoa(p.Stock),
	}
}

// apply разбирает цену и остаток и переносит поля в товар; ошибки - по полям
func (f *productForm) apply(p *models.Product, errs map[string]string) {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)

	price, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(f.Price), ",", "."))
	switch {
	case err != nil:
		setOnce(errs, "Price", "Enter a valid price.")
	case price.IsNegative():
		setOnce(errs, "Price", "Price must be zero or greater.")
	case price.GreaterThan(maxPrice):
		setOnce(errs, "Price", "Price is too large.")
	}
	stock, err := strconv.Atoi(strings.TrimSpace(f.Stock))
	switch {
	case err != nil:
		setOnce(errs, "Stock", "Stock must be a whole number.")
	case stock < 0:
		setOnce(errs, "Stock", "Stock must be zero or greater.")
	}
	if f.Name == "" {
		setOnce(errs, "Name", "This field is required.")
	}
	if len(errs) > 0 {
		return
	}
	p.Name = f.Name
	p.Description = f.Description
	p.Price = price.Round(2)
	p.Stock = stock
}

type registerForm struct {
	Email           string `form:"email" binding:"required,email,max=180"`
	Password        string `form:"password" binding:"required,min=6,max=4096"`
	ConfirmPassword string `form:"confirm_password" binding:"required,eqfield=Password"`
}

// fieldErrors переводит ошибки валидатора gin в сообщения по имени поля
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err != nil {
			out["_form"] = "Invalid form submission."
		}
		return out
	}
	for _, fe := range verrs {
		setOnce(out, fe.Field(), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "eqfield":
		return "Passwords do not match."
	default:
		return "Invalid value."
	}
}

func setOnce(m map[string]string, k, v string) {
	if _, ok := m[k]; !ok {
		m[k] = v
	}
}
