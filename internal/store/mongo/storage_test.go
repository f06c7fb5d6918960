package mongo

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecimal128Conversion(t *testing.T) {
	price := decimal.RequireFromString("20.005")

	v, err := toDecimal128(price)
	if err != nil {
		t.Fatal(err)
	}
	back, err := fromDecimal128(v)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Equal(price) {
		t.Errorf("round trip = %s, want %s", back, price)
	}
}

func TestDecimal128RejectsNaN(t *testing.T) {
	nan := primitive.NewDecimal128(0x7C00000000000000, 0)

	if _, err := fromDecimal128(nan); err == nil {
		t.Error("expected error decoding NaN")
	}

	doc := orderItemDoc{ID: "item-1", UnitPrice: nan}
	if _, err := doc.domain(); err == nil {
		t.Error("order item with NaN price decoded without error")
	}
}
