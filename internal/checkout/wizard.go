// Package checkout implements the three-step checkout flow (review, address,
// pay), the shipping price rules and the duplicate-submission guard.
package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/01moynul/farinez-golang/internal/cart"
	"github.com/01moynul/farinez-golang/internal/models"
)

// Step is a position in the wizard.
type Step int

const (
	StepReview  Step = 1
	StepAddress Step = 2
	StepPay     Step = 3
)

func (s Step) String() string {
	switch s {
	case StepReview:
		return "review"
	case StepAddress:
		return "address"
	case StepPay:
		return "pay"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrAddressIncomplete  = errors.New("shipping address is incomplete")
	ErrShippingUnresolved = errors.New("shipping cost not resolved")
	ErrWrongStep          = errors.New("action not available at this step")
)

// Wizard is the per-session checkout state.
type Wizard struct {
	Step    Step                   `json:"step"`
	Address models.ShippingAddress `json:"address"`
	Quote   Quote                  `json:"shipping"`
	Marker  *models.Coordinate     `json:"marker,omitempty"`
	// Geocoded selects the map variant, where leaving the address step needs
	// a resolved shipping quote.
	Geocoded bool `json:"geocoded"`
	// PreferenceID is the gateway preference created from the pay step. It is
	// dropped whenever the wizard leaves that step.
	PreferenceID string `json:"preference_id,omitempty"`
}

// NewWizard starts a wizard at the review step.
func NewWizard(geocoded bool) Wizard {
	return Wizard{Step: StepReview, Geocoded: geocoded}
}

func (w *Wizard) normalize() {
	if w.Step < StepReview {
		w.Step = StepReview
	}
	if w.Step > StepPay {
		w.Step = StepPay
	}
}

// Next advances one step if the current step's guard passes. At the pay step
// it is a no-op.
func (w *Wizard) Next(c cart.Cart) error {
	w.normalize()
	switch w.Step {
	case StepReview:
		if c.Empty() {
			return ErrEmptyCart
		}
	case StepAddress:
		if err := w.addressReady(); err != nil {
			return err
		}
	case StepPay:
		return nil
	}
	w.Step++
	return nil
}

// ReadyToPay reports whether the pay step may submit the cart. The address
// guard is checked again so a later edit cannot slip past it.
func (w Wizard) ReadyToPay(c cart.Cart) error {
	if w.Step != StepPay {
		return ErrWrongStep
	}
	if c.Empty() {
		return ErrEmptyCart
	}
	return w.addressReady()
}

func (w Wizard) addressReady() error {
	if !AddressComplete(w.Address) {
		return ErrAddressIncomplete
	}
	if w.Geocoded && !w.Quote.Resolved {
		return ErrShippingUnresolved
	}
	return nil
}

// Prev goes back one step, never before review.
func (w *Wizard) Prev() {
	w.normalize()
	if w.Step > StepReview {
		w.Step--
		w.PreferenceID = ""
	}
}

// SetAddress replaces the address. Any earlier quote is discarded because it
// belonged to the previous address; in flat mode the default tier applies
// once every field is present. On the pay step an address that fails the
// guard moves the wizard back to the address step.
func (w *Wizard) SetAddress(a models.ShippingAddress, tiers Tiers) {
	w.Address = trimAddress(a)
	w.Quote = Quote{Tier: TierUnresolved}
	w.Marker = nil
	if !w.Geocoded && AddressComplete(w.Address) {
		w.Quote = FlatQuote(tiers)
	}
	w.recheckAddress()
}

// ApplyPlace records a geocoding result and its shipping quote.
func (w *Wizard) ApplyPlace(p Place, tiers Tiers) Quote {
	w.Quote = ShippingCost(p, tiers)
	w.Marker = nil
	if p.Found {
		w.Marker = &models.Coordinate{Lat: p.Lat, Lon: p.Lon}
	}
	w.recheckAddress()
	return w.Quote
}

// recheckAddress sends a wizard past the address step back to it when the
// address or its quote no longer passes the guard.
func (w *Wizard) recheckAddress() {
	if w.Step > StepAddress && w.addressReady() != nil {
		w.Step = StepAddress
		w.PreferenceID = ""
	}
}

// Shipping is the cost added to the cart subtotal.
func (w Wizard) Shipping() float64 {
	if !w.Quote.Resolved {
		return 0
	}
	return w.Quote.Cost
}

// Reset returns the wizard to the review step keeping the mode.
func (w *Wizard) Reset() {
	*w = NewWizard(w.Geocoded)
}

// AddressComplete reports whether every address field is non-blank.
func AddressComplete(a models.ShippingAddress) bool {
	for _, v := range addressFields(a) {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

func addressFields(a models.ShippingAddress) []string {
	return []string{a.Name, a.Street, a.Floor, a.Locality, a.Department, a.Province, a.Phone}
}

func trimAddress(a models.ShippingAddress) models.ShippingAddress {
	return models.ShippingAddress{
		Name:       strings.TrimSpace(a.Name),
		Street:     strings.TrimSpace(a.Street),
		Floor:      strings.TrimSpace(a.Floor),
		Locality:   strings.TrimSpace(a.Locality),
		Department: strings.TrimSpace(a.Department),
		Province:   strings.TrimSpace(a.Province),
		Phone:      strings.TrimSpace(a.Phone),
	}
}

// GeocodeQuery is the free-text lookup for an address.
func GeocodeQuery(a models.ShippingAddress) string {
	parts := []string{a.Street, a.Locality, a.Department, a.Province, "Argentina"}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}

// FormatAddress renders an address as one line for the paquete record.
func FormatAddress(a models.ShippingAddress) string {
	return fmt.Sprintf("%s, %s %s, %s, %s, %s. Tel: %s",
		a.Name, a.Street, a.Floor, a.Locality, a.Department, a.Province, a.Phone)
}

// Totals is the money summary shown on every step.
type Totals struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// Compute derives the totals of a cart under this wizard.
func (w Wizard) Compute(c cart.Cart) Totals {
	sub := models.RoundCents(c.Total())
	ship := models.RoundCents(w.Shipping())
	return Totals{Subtotal: sub, Shipping: ship, Total: models.RoundCents(sub + ship)}
}
