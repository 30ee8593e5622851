package handlers

import (
	"errors"
	"net/http"

	"github.com/01moynul/farinez-golang/internal/cart"
	"github.com/01moynul/farinez-golang/internal/checkout"
	"github.com/01moynul/farinez-golang/internal/geocode"
	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/01moynul/farinez-golang/internal/payment"
	"github.com/01moynul/farinez-golang/internal/session"
	"github.com/gin-gonic/gin"
)

// CheckoutView is the wizard as served to the storefront.
type CheckoutView struct {
	Step     checkout.Step          `json:"step"`
	StepName string                 `json:"step_name"`
	Address  models.ShippingAddress `json:"address"`
	Shipping checkout.Quote         `json:"shipping"`
	Marker   *models.Coordinate     `json:"marker,omitempty"`
	Geocoded bool                   `json:"geocoded"`
	Cart     cart.Summary           `json:"cart"`
	Totals   checkout.Totals        `json:"totals"`
}

func checkoutView(st session.State) CheckoutView {
	w := st.Checkout
	return CheckoutView{
		Step:     w.Step,
		StepName: w.Step.String(),
		Address:  w.Address,
		Shipping: w.Quote,
		Marker:   w.Marker,
		Geocoded: w.Geocoded,
		Cart:     st.Cart.Summarize(),
		Totals:   w.Compute(st.Cart),
	}
}

// wizardError maps a step guard failure to a 400 with a customer message.
func wizardError(c *gin.Context, err error) {
	msg := "No se puede avanzar"
	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		msg = "El carrito está vacío"
	case errors.Is(err, checkout.ErrAddressIncomplete):
		msg = "Completá todos los campos de la dirección de envío"
	case errors.Is(err, checkout.ErrShippingUnresolved):
		msg = "No pudimos calcular el costo de envío para esa dirección"
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// GetCheckout handles GET /api/checkout
func (h *Handlers) GetCheckout(c *gin.Context) {
	st, ok := h.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, checkoutView(st))
}

// NextStep handles POST /api/checkout/siguiente
func (h *Handlers) NextStep(c *gin.Context) {
	st, ok := h.loadSession(c)
	if !ok {
		return
	}
	if err := st.Checkout.Next(st.Cart); err != nil {
		wizardError(c, err)
		return
	}
	if !h.saveSession(c, st) {
		return
	}
	c.JSON(http.StatusOK, checkoutView(st))
}

// PrevStep handles POST /api/checkout/anterior
func (h *Handlers) PrevStep(c *gin.Context) {
	st, ok := h.loadSession(c)
	if !ok {
		return
	}
	st.Checkout.Prev()
	if !h.saveSession(c, st) {
		return
	}
	c.JSON(http.StatusOK, checkoutView(st))
}

// SetAddress handles PUT /api/checkout/direccion. In geocoding mode a
// complete address is looked up right away and priced.
func (h *Handlers) SetAddress(c *gin.Context) {
	var input models.ShippingAddress
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dirección inválida"})
		return
	}
	st, ok := h.loadSession(c)
	if !ok {
		return
	}

	tiers := h.Config.Shipping
	st.Checkout.SetAddress(input, tiers)

	var lookupErr error
	if st.Checkout.Geocoded && h.Geocoder != nil && checkout.AddressComplete(st.Checkout.Address) {
		place, err := h.Geocoder.Search(c.Request.Context(), checkout.GeocodeQuery(st.Checkout.Address))
		switch {
		case err == nil:
			st.Checkout.ApplyPlace(place, tiers)
		case errors.Is(err, geocode.ErrNoMatch):
			st.Checkout.ApplyPlace(checkout.Place{}, tiers)
		default:
			lookupErr = err
		}
	}

	if !h.saveSession(c, st) {
		return
	}
	if lookupErr != nil {
		h.Log.WithError(lookupErr).WithField("session", sessionID(c)).Warn("address geocoding failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "No se pudo consultar el servicio de mapas", "checkout": checkoutView(st)})
		return
	}
	c.JSON(http.StatusOK, checkoutView(st))
}

type LocationInput struct {
	Lat float64 `json:"lat" binding:"gte=-90,lte=90"`
	Lon float64 `json:"lon" binding:"gte=-180,lte=180"`
}

// SetLocation handles POST /api/checkout/ubicacion: a click on the map is
// reverse geocoded and priced with the same rules as a typed address.
func (h *Handlers) SetLocation(c *gin.Context) {
	if h.Geocoder == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "La selección en el mapa no está habilitada"})
		return
	}
	var input LocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coordenadas inválidas"})
		return
	}
	st, ok := h.loadSession(c)
	if !ok {
		return
	}

	place, err := h.Geocoder.Reverse(c.Request.Context(), input.Lat, input.Lon)
	if err != nil && !errors.Is(err, geocode.ErrNoMatch) {
		h.Log.WithError(err).WithField("session", sessionID(c)).Warn("reverse geocoding failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "No se pudo consultar el servicio de mapas"})
		return
	}
	st.Checkout.ApplyPlace(place, h.Config.Shipping)

	if !h.saveSession(c, st) {
		return
	}
	c.JSON(http.StatusOK, checkoutView(st))
}

// paymentRequest turns the session into the gateway request.
func paymentRequest(id string, st session.State) payment.Request {
	items := make([]payment.Item, 0, len(st.Cart.Lines))
	for _, l := range st.Cart.Items() {
		items = append(items, payment.Item{Title: l.Name, Quantity: l.Quantity, UnitPrice: l.Price})
	}
	totals := st.Checkout.Compute(st.Cart)
	return payment.Request{
		Items:             items,
		ShippingCost:      totals.Shipping,
		Total:             totals.Total,
		ExternalReference: id,
	}
}

// Pay handles POST /api/checkout/pagar. Only one submission per session may
// be in flight; the wizard stays on the pay step whatever the outcome.
func (h *Handlers) Pay(c *gin.Context) {
	id := sessionID(c)

	// 1. --- Submission Guard ---
	release, err := h.Guard.Acquire(id)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Ya hay un pago en curso"})
		return
	}
	defer release()

	// 2. --- Check Wizard State ---
	st, ok := h.loadSession(c)
	if !ok {
		return
	}
	if err := st.Checkout.ReadyToPay(st.Cart); err != nil {
		if errors.Is(err, checkout.ErrWrongStep) {
			c.JSON(http.StatusConflict, gin.H{"error": "Completá los pasos anteriores antes de pagar"})
			return
		}
		wizardError(c, err)
		return
	}

	// 3. --- Create Preference ---
	log := h.Log.WithField("session", id)
	pref, err := h.Payments.CreatePreference(c.Request.Context(), paymentRequest(id, st))
	if err != nil {
		if errors.Is(err, payment.ErrMissingRedirect) {
			log.WithError(err).Error("payment preference without redirect")
			c.JSON(http.StatusBadGateway, gin.H{"error": "La pasarela de pago no devolvió una URL de pago"})
			return
		}
		log.WithError(err).Error("create payment preference")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error al crear la preferencia de pago"})
		return
	}

	st.Checkout.PreferenceID = pref.ID
	if !h.saveSession(c, st) {
		return
	}

	redirect, _ := pref.RedirectURL()
	log.WithField("preference_id", pref.ID).Info("payment preference created")
	c.JSON(http.StatusOK, gin.H{"redirect_url": redirect, "preference_id": pref.ID})
}
