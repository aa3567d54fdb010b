package entity

// Product is one catalog row as exported in a tenant's JSON data file.
// Field tags follow the store-export column names, which is why several
// carry spaces.
type Product struct {
	ID               int64   `json:"ID"`
	SKU              string  `json:"SKU"`
	Name             string  `json:"Name"`
	ShortDescription string  `json:"Short description"`
	Description      string  `json:"Description"`
	Categories       string  `json:"Categories"`
	Brand            string  `json:"Brand"`
	RegularPrice     float64 `json:"Regular price"`
	SalePrice        float64 `json:"Sale price"`
	InStock          int     `json:"In stock?"`
	Images           string  `json:"Images"`
}

// DisplayPrice prefers the sale price when one is set.
func (p Product) DisplayPrice() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.RegularPrice
}
