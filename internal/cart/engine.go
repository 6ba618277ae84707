// Package cart holds the storefront's cart state: the line list, the
// derived pricing summary and the durable persistence of both.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/shophub/storefront/internal/catalog"
	"github.com/shophub/storefront/internal/storage"
	"github.com/shophub/storefront/pkg/logger"
	"github.com/shophub/storefront/pkg/metrics"
)

// Line is one cart entry. A product id appears at most once; repeat
// adds increment Quantity instead of duplicating the line.
type Line struct {
	ProductID int             `json:"id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `json:"image"`
	Category  string          `json:"category"`
}

// Engine owns the cart state. All mutations run through the action
// reducer, then the line list is persisted as a whole.
type Engine struct {
	mu      sync.Mutex
	lines   []Line
	store   storage.Store
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewEngine builds a cart engine and loads any previously saved lines.
// A corrupt saved cart is discarded with a warning; it never fails
// construction.
func NewEngine(ctx context.Context, store storage.Store, logg *logger.Logger, m *metrics.StorefrontMetrics) *Engine {
	engine := &Engine{store: store, logg: logg, metrics: m}
	engine.load(ctx)
	return engine
}

func (e *Engine) load(ctx context.Context) {
	data, err := e.store.Get(ctx, storage.KeyCart)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		e.warn(ctx, "failed to read saved cart, starting empty", err)
		return
	}
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		e.warn(ctx, "saved cart is corrupt, starting empty", err)
		if delErr := e.store.Delete(ctx, storage.KeyCart); delErr != nil {
			e.warn(ctx, "failed to drop corrupt cart", delErr)
		}
		return
	}
	e.lines = lines
}

// AddItem appends a new line for the product, or increments the
// existing line's quantity. It always succeeds.
func (e *Engine) AddItem(ctx context.Context, product catalog.Product) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = apply(e.lines, addItem{line: Line{
		ProductID: product.ID,
		Title:     product.Title,
		UnitPrice: product.Price,
		Image:     product.Image,
		Category:  product.Category,
	}})
	e.metrics.IncCartOp("add_item")
	e.persist(ctx)
}

// RemoveItem drops the matching line. Removing an absent product is a
// no-op, not an error.
func (e *Engine) RemoveItem(ctx context.Context, productID int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = apply(e.lines, removeItem{productID: productID})
	e.metrics.IncCartOp("remove_item")
	e.persist(ctx)
}

// SetQuantity replaces the line's quantity. A quantity of zero or less
// removes the line. No upper bound is enforced here.
func (e *Engine) SetQuantity(ctx context.Context, productID, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = apply(e.lines, setQuantity{productID: productID, quantity: quantity})
	e.metrics.IncCartOp("set_quantity")
	e.persist(ctx)
}

// Clear empties the cart and removes its persisted representation.
func (e *Engine) Clear(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = apply(e.lines, clearCart{})
	e.metrics.IncCartOp("clear")
	if err := e.store.Delete(ctx, storage.KeyCart); err != nil {
		e.warn(ctx, "failed to remove persisted cart", err)
	}
}

// Summary recomputes the derived totals from the current lines.
func (e *Engine) Summary() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return computeSummary(e.lines)
}

// Lines returns a copy of the current line list.
func (e *Engine) Lines() []Line {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Line(nil), e.lines...)
}

// Contains reports whether the product has a line in the cart.
func (e *Engine) Contains(productID int) bool {
	return e.QuantityOf(productID) > 0
}

// QuantityOf returns the line quantity for the product, or zero.
func (e *Engine) QuantityOf(productID int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, line := range e.lines {
		if line.ProductID == productID {
			return line.Quantity
		}
	}
	return 0
}

// persist writes the full line list under the cart key. Callers hold
// the engine lock. Persistence failures are logged, never surfaced:
// the in-memory cart stays authoritative for the session.
func (e *Engine) persist(ctx context.Context) {
	data, err := json.Marshal(e.lines)
	if err != nil {
		e.warn(ctx, "failed to encode cart", err)
		return
	}
	if err := e.store.Set(ctx, storage.KeyCart, data); err != nil {
		e.warn(ctx, "failed to persist cart", err)
	}
}

func (e *Engine) warn(ctx context.Context, msg string, err error) {
	if e.logg == nil {
		return
	}
	e.logg.Warn(e.logg.WithField(ctx, "error", err.Error()), msg)
}
