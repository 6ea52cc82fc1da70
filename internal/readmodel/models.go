package readmodel

import "github.com/shopspring/decimal"

// ProductReadModel is the catalog view of a product the order subsystem needs:
// its current price and the vendor that owns it.
type ProductReadModel struct {
	ID       int64           `json:"id"`
	Name     string          `json:"productName"`
	Price    decimal.Decimal `json:"cost"`
	VendorID int64           `json:"vendorId"`
}

// UserReadModel is the catalog view of a buyer
type UserReadModel struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}
