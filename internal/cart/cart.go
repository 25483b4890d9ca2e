// Package cart держит корзину посетителя: product id -> количество, с потолком по остатку.
//
// Корзина принадлежит сессии и хранится во внешнем Store по идентификатору сессии.
// Каждая операция - read-modify-write без блокировок: два параллельных запроса одной
// сессии могут потерять обновление (последняя запись выигрывает).
package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	models "storefront/internal/models"
	"storefront/internal/store"
)

// Line — строка корзины; порядок строк = порядок добавления
type Line struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// Item — строка, гидрированная товаром
type Item struct {
	Product  *models.Product
	Quantity int
}

// Subtotal = цена * количество
func (i Item) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Store хранит строки корзины по идентификатору сессии
type Store interface {
	Get(ctx context.Context, sessionID string) ([]Line, error)
	Put(ctx context.Context, sessionID string, lines []Line) error
	Delete(ctx context.Context, sessionID string) error
}

// ProductFinder — всё, что корзине нужно от каталога
type ProductFinder interface {
	FindByID(ctx context.Context, id uint) (*models.Product, error)
}

// Service не возвращает ошибок: все бизнес-исходы выражены возвращаемыми значениями
type Service struct {
	store    Store
	products ProductFinder
	log      *slog.Logger
}

func NewService(s Store, products ProductFinder, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: s, products: products, log: log.With("component", "cart")}
}

// Add кладёт до qty единиц товара, но не больше остатка минус уже лежащее в корзине.
// Возвращает сколько реально добавлено: qty - полностью, меньше - упёрлись в остаток,
// 0 - товара нет или места нет.
func (s *Service) Add(ctx context.Context, sessionID string, productID uint, qty int) int {
	if qty <= 0 {
		return 0
	}
	p := s.product(ctx, productID)
	if p == nil {
		return 0
	}

	lines := s.load(ctx, sessionID)
	idx := indexOf(lines, productID)
	current := 0
	if idx >= 0 {
		current = lines[idx].Quantity
	}
	available := max(0, p.Stock-current)
	toAdd := min(qty, available)
	if toAdd == 0 {
		return 0
	}

	if idx >= 0 {
		lines[idx].Quantity = current + toAdd
	} else {
		lines = append(lines, Line{ProductID: productID, Quantity: toAdd})
	}
	if err := s.store.Put(ctx, sessionID, lines); err != nil {
		s.log.WarnContext(ctx, "save cart failed", "product_id", productID, "err", err)
		return 0
	}
	return toAdd
}

// Remove удаляет строку; отсутствующая строка - no-op
func (s *Service) Remove(ctx context.Context, sessionID string, productID uint) {
	lines := s.load(ctx, sessionID)
	idx := indexOf(lines, productID)
	if idx < 0 {
		return
	}
	lines = append(lines[:idx], lines[idx+1:]...)
	if err := s.store.Put(ctx, sessionID, lines); err != nil {
		s.log.WarnContext(ctx, "save cart failed", "product_id", productID, "err", err)
	}
}

// Clear очищает корзину целиком
func (s *Service) Clear(ctx context.Context, sessionID string) {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.WarnContext(ctx, "clear cart failed", "err", err)
	}
}

// Cart — сырой снимок без товаров
func (s *Service) Cart(ctx context.Context, sessionID string) map[uint]int {
	lines := s.load(ctx, sessionID)
	out := make(map[uint]int, len(lines))
	for _, l := range lines {
		out[l.ProductID] = l.Quantity
	}
	return out
}

// Items гидрирует строки товарами в порядке добавления.
// Строки удалённых товаров молча пропускаются.
func (s *Service) Items(ctx context.Context, sessionID string) []Item {
	lines := s.load(ctx, sessionID)
	items := make([]Item, 0, len(lines))
	for _, l := range lines {
		if p := s.product(ctx, l.ProductID); p != nil {
			items = append(items, Item{Product: p, Quantity: l.Quantity})
		}
	}
	return items
}

// Total считается заново при каждом вызове по текущим ценам
func (s *Service) Total(ctx context.Context, sessionID string) decimal.Decimal {
	return Sum(s.Items(ctx, sessionID))
}

// Count — сумма количеств, включая строки удалённых товаров
func (s *Service) Count(ctx context.Context, sessionID string) int {
	n := 0
	for _, l := range s.load(ctx, sessionID) {
		n += l.Quantity
	}
	return n
}

// Sum складывает подытоги уже гидрированных строк
func Sum(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total.Round(2)
}

func (s *Service) load(ctx context.Context, sessionID string) []Line {
	lines, err := s.store.Get(ctx, sessionID)
	if err != nil {
		s.log.WarnContext(ctx, "load cart failed", "err", err)
		return nil
	}
	return compact(lines)
}

func (s *Service) product(ctx context.Context, id uint) *models.Product {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.WarnContext(ctx, "product lookup failed", "product_id", id, "err", err)
		}
		return nil
	}
	return p
}

func indexOf(lines []Line, productID uint) int {
	for i, l := range lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// compact выкидывает нулевые строки и склеивает дубли, если хранилище их вернуло
func compact(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i := indexOf(out, l.ProductID); i >= 0 {
			out[i].Quantity += l.Quantity
			continue
		}
		out = append(out, l)
	}
	return out
}
