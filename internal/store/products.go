// Package store — доступ к товарам и пользователям через gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	models "storefront/internal/models"
)

// ErrNotFound — записи нет
var ErrNotFound = errors.New("store: not found")

type Products struct {
	db *gorm.DB
}

func NewProducts(db *gorm.DB) *Products {
	return &Products{db: db}
}

// FindByID возвращает ErrNotFound, если товара нет
func (s *Products) FindByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: find product %d: %w", id, err)
	}
	return &p, nil
}

// FindAll — все товары по имени
func (s *Products) FindAll(ctx context.Context) ([]models.Product, error) {
	var items []models.Product
	if err := s.db.WithContext(ctx).Order("name asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("store: list products: %w", err)
	}
	return items, nil
}

// Search ищет подстроку в имени или описании без учёта регистра.
// Пустой запрос = FindAll.
func (s *Products) Search(ctx context.Context, q string) ([]models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.FindAll(ctx)
	}
	pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
	var items []models.Product
	err := s.db.WithContext(ctx).
		Where(`search_text LIKE ? ESCAPE '\'`, pattern).
		Order("name asc").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("store: search products %q: %w", q, err)
	}
	return items, nil
}

func (s *Products) Create(ctx context.Context, p *models.Product) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("store: create product: %w", err)
	}
	return nil
}

// Save обновляет существующий товар, новые идут через Create
func (s *Products) Save(ctx context.Context, p *models.Product) error {
	if !p.Persisted() {
		return fmt.Errorf("store: save product: %w", ErrNotFound)
	}
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("store: save product %d: %w", p.ID, err)
	}
	return nil
}

func (s *Products) Delete(ctx context.Context, p *models.Product) error {
	res := s.db.WithContext(ctx).Delete(&models.Product{}, p.ID)
	if res.Error != nil {
		return fmt.Errorf("store: delete product %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
