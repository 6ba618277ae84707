package orders

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shophub/storefront/internal/cart"
	"github.com/shophub/storefront/pkg/enums"
)

func TestFromDraft(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	draft := Draft{
		UserID:        4,
		Items:         []cart.Line{{ProductID: 1, Title: "Monitor", UnitPrice: decimal.NewFromFloat(10), Quantity: 2}},
		Total:         decimal.NewFromFloat(31.59),
		PaymentMethod: "**** **** **** 4242",
	}

	order := FromDraft(draft, now)

	if order.ID != "1700000000000" {
		t.Fatalf("unexpected order id %q", order.ID)
	}
	if order.Status != enums.OrderStatusPending {
		t.Fatalf("expected pending status, got %q", order.Status)
	}
	if !order.CreatedAt.Equal(now) {
		t.Fatalf("unexpected createdAt %v", order.CreatedAt)
	}
	if order.UserID != 4 || len(order.Items) != 1 {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestOrderSerializesTimestampAsDate(t *testing.T) {
	order := FromDraft(Draft{}, time.UnixMilli(1700000000000).UTC())

	data, err := json.Marshal(order)
	if err != nil {
		t.Fatalf("marshal order: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal order document: %v", err)
	}
	if _, ok := doc["date"]; !ok {
		t.Fatalf("order document missing date field: %s", data)
	}
	if _, ok := doc["createdAt"]; ok {
		t.Fatalf("order document has unexpected createdAt field: %s", data)
	}
}

func TestFromDraftSnapshotsItems(t *testing.T) {
	items := []cart.Line{{ProductID: 1, Title: "Monitor", Quantity: 2}}
	order := FromDraft(Draft{Items: items}, time.Now())

	items[0].Quantity = 50

	if order.Items[0].Quantity != 2 {
		t.Fatalf("order items mutated through draft slice: %+v", order.Items)
	}
}
