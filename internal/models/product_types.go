package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Product is the model for the 'productos' table.
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Price       float64   `json:"price" db:"price"`
	Category    string    `json:"category" db:"category"`
	Stock       int       `json:"stock" db:"stock"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Catalog accessors used by the filter engine.
func (p Product) ItemName() string     { return p.Name }
func (p Product) ItemPrice() float64   { return p.Price }
func (p Product) ItemCategory() string { return p.Category }

// Category is a distinct product category with its URL slug.
type Category struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

var (
	// ErrInvalidNumber is returned when a numeric field cannot be parsed.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrInvalidPrice is the ErrInvalidNumber raised by Amount.
	ErrInvalidPrice = fmt.Errorf("%w: price", ErrInvalidNumber)
)

// Amount is a price that accepts both JSON numbers and numeric strings
// ("450" and "450.00"), as sent by the admin forms.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	f, err := parseFlexible(data)
	if err != nil {
		return ErrInvalidPrice
	}
	*a = Amount(f)
	return nil
}

// Cents rounds the amount to two decimals.
func (a Amount) Cents() float64 {
	return RoundCents(float64(a))
}

// Count is an integer that also accepts numeric strings ("12").
type Count int

func (n *Count) UnmarshalJSON(data []byte) error {
	f, err := parseFlexible(data)
	if err != nil {
		return err
	}
	if f != math.Trunc(f) {
		return ErrInvalidNumber
	}
	*n = Count(f)
	return nil
}

func parseFlexible(data []byte) (float64, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return 0, nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, ErrInvalidNumber
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, ErrInvalidNumber
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, ErrInvalidNumber
		}
		return f, nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, ErrInvalidNumber
	}
	return f, nil
}

// RoundCents rounds a monetary value to two decimals.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
