// Package orders defines the immutable order records kept in the
// session's purchase history.
package orders

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shophub/storefront/internal/cart"
	"github.com/shophub/storefront/pkg/enums"
	"github.com/shophub/storefront/pkg/types"
)

// ShippingInfo is the recipient and destination recorded on an order.
type ShippingInfo struct {
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone"`
	Address   types.Address `json:"address"`
}

// Draft carries everything needed to synthesize an order.
type Draft struct {
	UserID          int
	Items           []cart.Line
	Total           decimal.Decimal
	ShippingAddress ShippingInfo
	PaymentMethod   string
}

// Order is one entry in the purchase history. Items are a value
// snapshot of the cart at purchase time: later cart mutations must not
// alter a past order.
type Order struct {
	ID              string            `json:"id"`
	UserID          int               `json:"userId"`
	Items           []cart.Line       `json:"items"`
	Total           decimal.Decimal   `json:"total"`
	Status          enums.OrderStatus `json:"status"`
	CreatedAt       time.Time         `json:"date"`
	ShippingAddress ShippingInfo      `json:"shippingAddress"`
	PaymentMethod   string            `json:"paymentMethod"`
}

// FromDraft synthesizes a pending order with a time-derived id. Status
// stays pending; no transition logic drives it further.
func FromDraft(draft Draft, now time.Time) Order {
	return Order{
		ID:              strconv.FormatInt(now.UnixMilli(), 10),
		UserID:          draft.UserID,
		Items:           CloneLines(draft.Items),
		Total:           draft.Total,
		Status:          enums.OrderStatusPending,
		CreatedAt:       now,
		ShippingAddress: draft.ShippingAddress,
		PaymentMethod:   draft.PaymentMethod,
	}
}

// CloneLines copies a line slice so orders never share backing arrays
// with the live cart.
func CloneLines(lines []cart.Line) []cart.Line {
	if lines == nil {
		return nil
	}
	return append([]cart.Line(nil), lines...)
}
