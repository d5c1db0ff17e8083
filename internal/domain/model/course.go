package model

// Course is a read-only projection of the catalog entry: the payment core only
// needs the title (for receipts and notifications) and the listed price.
type Course struct {
	ID         string // UUID
	Title      string
	PriceCents int64
}
