// Package service holds the checkout engine: cart validation against
// trusted catalog prices, atomic order persistence and post-commit
// notification dispatch.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/tiendaf1/shop/internal/events"
	"github.com/tiendaf1/shop/internal/logging"
	"github.com/tiendaf1/shop/internal/mailer"
	"github.com/tiendaf1/shop/internal/models"
	"github.com/tiendaf1/shop/internal/notify"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidCard  = errors.New("invalid card number")
	ErrInvalidPhone = errors.New("invalid phone number")
	ErrNoValidItems = errors.New("no valid items")
)

var (
	cardRe     = regexp.MustCompile(`^\d{16}$`)
	phoneRe    = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
	nonDigitRe = regexp.MustCompile(`\D`)
)

// CartLine is one client-submitted cart entry. Prices are never accepted
// from the client; only the product reference and quantity are.
type CartLine struct {
	ProductID uint `json:"productId"`
	Quantity  int  `json:"quantity"`
}

type CheckoutResult struct {
	OrderID uint
	Total   float64
}

type CheckoutService struct {
	DB     *gorm.DB
	Notify *notify.Dispatcher
	Events *events.Producer
}

// Checkout validates the cart fail-fast, recomputes the total from catalog
// prices, persists the order with its lines in one transaction and fires
// notifications without making the caller wait on them.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, email string, lines []CartLine, cardNumber, phone string) (*CheckoutResult, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if !cardRe.MatchString(cardNumber) {
		return nil, ErrInvalidCard
	}
	phone = strings.TrimSpace(phone)
	if !validPhone(phone) {
		return nil, ErrInvalidPhone
	}

	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		if line.ProductID != 0 {
			ids = append(ids, line.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoValidItems
	}

	var products []models.Product
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	priceByID := make(map[uint]float64, len(products))
	nameByID := make(map[uint]string, len(products))
	for _, p := range products {
		priceByID[p.ID] = p.Price
		nameByID[p.ID] = p.Name
	}

	// Lines referencing unknown products are dropped, not rejected, as long
	// as at least one survives.
	var (
		total float64
		safe  []models.OrderItem
	)
	for _, line := range lines {
		price, ok := priceByID[line.ProductID]
		if !ok {
			continue
		}
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		total += price * float64(qty)
		safe = append(safe, models.OrderItem{
			ProductID: line.ProductID,
			Quantity:  uint(qty),
			Price:     price,
		})
	}
	if len(safe) == 0 {
		return nil, ErrNoValidItems
	}

	order := models.Order{UserID: userID, Total: total}
	txErr := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range safe {
			safe[i].OrderID = order.ID
			if err := tx.Create(&safe[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, fmt.Errorf("persist order: %w", txErr)
	}

	sum := mailer.OrderSummary{
		OrderID:    order.ID,
		Total:      total,
		BuyerEmail: email,
		BuyerPhone: phone,
	}
	for _, it := range safe {
		name := nameByID[it.ProductID]
		if name == "" {
			name = fmt.Sprintf("Product #%d", it.ProductID)
		}
		sum.Items = append(sum.Items, mailer.OrderLine{
			Name:     name,
			Quantity: it.Quantity,
			Price:    it.Price,
		})
	}
	s.Notify.OrderCustomer(email, sum)
	s.Notify.OrderAdmin(sum)

	if err := s.Events.Publish(ctx, events.TopicOrderEvents, fmt.Sprint(userID), map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   total,
	}); err != nil {
		logging.FromContext(ctx).Error("order event publish failed", "error", err)
	}

	return &CheckoutResult{OrderID: order.ID, Total: total}, nil
}

// validPhone accepts digits, spaces, hyphens, parentheses and an optional
// leading "+", with 8 to 15 digits overall.
func validPhone(raw string) bool {
	if raw == "" || !phoneRe.MatchString(raw) {
		return false
	}
	digits := nonDigitRe.ReplaceAllString(raw, "")
	return len(digits) >= 8 && len(digits) <= 15
}
