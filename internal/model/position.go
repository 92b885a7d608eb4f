package model

// Position represents an open holding for a single instrument as reported
// by the portfolio collaborator. Quantity is in instrument units, not lots.
type Position struct {
	Figi     string  `json:"figi"`
	Quantity float64 `json:"quantity"`  // available (unblocked) quantity
	AvgPrice float64 `json:"avg_price"` // average entry price in currency
}

// Open reports whether any quantity is currently held.
func (p *Position) Open() bool {
	return p.Quantity > 0
}
