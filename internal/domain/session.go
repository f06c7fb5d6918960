package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

// TableSession is the billing window of one physical table.
type TableSession struct {
	ID          uuid.UUID     `json:"id"`
	TableNumber int           `json:"table_number"`
	Status      SessionStatus `json:"status"`
	OpenedAt    time.Time     `json:"opened_at"`
	ClosedAt    *time.Time    `json:"closed_at,omitempty"`
}

type BillLine struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

type Bill struct {
	Session    TableSession    `json:"session"`
	OrderCount int             `json:"order_count"`
	Lines      []BillLine      `json:"lines"`
	Total      decimal.Decimal `json:"total"`
}

// BuildBill merges the items of every order in the session by name. The first unit price
// seen for a name is kept, so differently priced items sharing a name collapse into one line.
func BuildBill(session TableSession, orders []Order) Bill {
	bill := Bill{
		Session:    session,
		OrderCount: len(orders),
		Lines:      []BillLine{},
		Total:      decimal.Zero,
	}
	index := make(map[string]int)
	for _, o := range orders {
		for _, item := range o.Items {
			if i, ok := index[item.Name]; ok {
				bill.Lines[i].Quantity += item.Quantity
				continue
			}
			index[item.Name] = len(bill.Lines)
			bill.Lines = append(bill.Lines, BillLine{
				Name:      item.Name,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
			})
		}
	}
	for i := range bill.Lines {
		line := &bill.Lines[i]
		line.Amount = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		bill.Total = bill.Total.Add(line.Amount)
	}
	return bill
}
