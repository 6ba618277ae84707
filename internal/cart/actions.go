package cart

import "fmt"

// action is the closed set of cart mutations. Every mutation flows
// through apply so the reducer handles each variant exactly once.
type action interface {
	isAction()
}

type addItem struct {
	line Line
}

type removeItem struct {
	productID int
}

type setQuantity struct {
	productID int
	quantity  int
}

type clearCart struct{}

func (addItem) isAction()     {}
func (removeItem) isAction()  {}
func (setQuantity) isAction() {}
func (clearCart) isAction()   {}

// apply transitions the line list for one action and returns the new
// list. Lines are never mutated in place.
func apply(lines []Line, act action) []Line {
	switch a := act.(type) {
	case addItem:
		for i, line := range lines {
			if line.ProductID == a.line.ProductID {
				next := append([]Line(nil), lines...)
				next[i].Quantity++
				return next
			}
		}
		a.line.Quantity = 1
		return append(append([]Line(nil), lines...), a.line)

	case removeItem:
		next := make([]Line, 0, len(lines))
		for _, line := range lines {
			if line.ProductID != a.productID {
				next = append(next, line)
			}
		}
		return next

	case setQuantity:
		if a.quantity <= 0 {
			return apply(lines, removeItem{productID: a.productID})
		}
		next := append([]Line(nil), lines...)
		for i := range next {
			if next[i].ProductID == a.productID {
				next[i].Quantity = a.quantity
			}
		}
		return next

	case clearCart:
		return nil

	default:
		panic(fmt.Sprintf("cart: unhandled action %T", act))
	}
}
