package models

// Cart item types.
const (
	ItemTypeProduct = "producto"
	ItemTypeRecipe  = "receta"
)

// CartItem is one line of a session cart.
type CartItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
	Type     string  `json:"type"`
}

// LineTotal is price times quantity.
func (i CartItem) LineTotal() float64 {
	return i.Price * float64(i.Quantity)
}

// ShippingAddress is entered once per checkout session.
type ShippingAddress struct {
	Name       string `json:"name"`
	Street     string `json:"street"`
	Floor      string `json:"floor"`
	Locality   string `json:"locality"`
	Department string `json:"department"`
	Province   string `json:"province"`
	Phone      string `json:"phone"`
}

// Coordinate is a resolved map position.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
