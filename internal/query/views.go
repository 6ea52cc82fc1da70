package query

import (
	"time"

	"github.com/example/marketplace-orders/internal/domain/order"
	"github.com/example/marketplace-orders/internal/readmodel"
	"github.com/shopspring/decimal"
)

// Amount is a money value that marshals as a JSON number
type Amount struct {
	decimal.Decimal
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// OrderView is the order as returned by the API: the stored aggregate plus the
// buyer summary and the vendors derived from its items.
type OrderView struct {
	ID             int64           `json:"id"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Status         order.Status    `json:"status"`
	Packed         bool            `json:"packed"`
	TotalAmount    Amount          `json:"totalAmount"`
	GatewayOrderID *string         `json:"razorpayOrderId"`
	PaymentID      *string         `json:"paymentId"`
	User           *UserSummary    `json:"user,omitempty"`
	Items          []ItemView      `json:"orderItems"`
	VendorIDs      []int64         `json:"vendorIds"`
}

type ItemView struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName"`
	VendorID    int64           `json:"vendorId,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       Amount          `json:"price"`
	Packed      bool            `json:"packed"`
}

type UserSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// NewOrderView maps an enriched order. buyer may be nil.
func NewOrderView(o *order.Order, buyer *readmodel.UserReadModel) OrderView {
	items := make([]ItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemView{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			VendorID:    it.VendorID,
			Quantity:    it.Quantity,
			Price:       Amount{it.UnitPrice},
			Packed:      it.Packed,
		}
	}

	v := OrderView{
		ID:             o.ID,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Status:         o.Status,
		Packed:         o.Packed,
		TotalAmount:    Amount{o.TotalAmount},
		GatewayOrderID: o.GatewayOrderID,
		PaymentID:      o.PaymentID,
		Items:          items,
		VendorIDs:      o.VendorIDs(),
	}
	if v.VendorIDs == nil {
		v.VendorIDs = []int64{}
	}
	if buyer != nil {
		v.User = &UserSummary{
			ID:        buyer.ID,
			FirstName: buyer.FirstName,
			LastName:  buyer.LastName,
			Email:     buyer.Email,
		}
	}
	return v
}
