package models

import (
	"encoding/json"
	"slices"
	"time"
)

// Paquete (shipment) states.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
)

// PaqueteStatuses lists every selectable state. Any state may follow any other.
var PaqueteStatuses = []string{StatusPending, StatusProcessing, StatusShipped, StatusDelivered}

// ValidStatus reports whether s is a known paquete state.
func ValidStatus(s string) bool {
	for _, st := range PaqueteStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Paquete is the model for the 'paquetes' table (a shipped order).
type Paquete struct {
	ID              int64           `json:"id" db:"id"`
	OrderNumber     string          `json:"numero_orden" db:"numero_orden"`
	UserID          int64           `json:"usuario_id" db:"usuario_id"`
	Total           float64         `json:"total" db:"total"`
	Status          string          `json:"estado" db:"estado"`
	ShippingAddress string          `json:"direccion_envio" db:"direccion_envio"`
	Items           json.RawMessage `json:"items" db:"items"`
	CreatedAt       time.Time       `json:"fecha_creacion" db:"fecha_creacion"`
}

// IsShipped reports whether the package already left the warehouse.
func (p Paquete) IsShipped() bool {
	return p.Status == StatusShipped || p.Status == StatusDelivered
}

// SortNewestFirst orders paquetes by creation date, newest first. Paquetes
// created at the same instant keep their relative order.
func SortNewestFirst(ps []Paquete) {
	slices.SortStableFunc(ps, func(a, b Paquete) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
