package models

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product — таблица products
type Product struct {
	Base
	Name        string          `gorm:"size:255;not null;index"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Stock       int             `gorm:"not null;default:0"`
	Image       string          `gorm:"size:255"` // имя файла внутри каталога загрузок, напр. "chair-1f0c.jpg"
	// имя и описание в нижнем регистре для поиска; LOWER в sqlite понимает только ASCII
	SearchText string `gorm:"type:text;not null;default:''"`
}

// InStock сообщает, можно ли положить товар в корзину
func (p Product) InStock() bool { return p.Stock > 0 }

// FoldedText — значение для SearchText
func (p Product) FoldedText() string {
	return strings.ToLower(p.Name + "\n" + p.Description)
}

// BeforeSave срабатывает и на Create, и на Save
func (p *Product) BeforeSave(*gorm.DB) error {
	p.SearchText = p.FoldedText()
	return nil
}
