package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/01moynul/farinez-golang/internal/checkout"
	"github.com/01moynul/farinez-golang/internal/geocode"
	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/01moynul/farinez-golang/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toPayStep fills the cart with two loaves and walks the wizard to the pay
// step with a complete address.
func (e *testEnv) toPayStep(t *testing.T) {
	t.Helper()
	e.seedProduct(models.Product{Name: "Pan", Price: 450})
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/carrito/items", map[string]any{"id": 1, "quantity": 2}, "").Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/checkout/siguiente", nil, "").Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/api/checkout/direccion", fullAddress(), "").Code)
	w := e.do(t, http.MethodPost, "/api/checkout/siguiente", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, checkout.StepPay, decode[CheckoutView](t, w).Step)
}

func TestCheckoutFlatShipping(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/checkout/siguiente", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "El carrito está vacío", errorOf(t, w))

	e.seedProduct(models.Product{Name: "Pan", Price: 450})
	e.do(t, http.MethodPost, "/api/carrito/items", map[string]any{"id": 1, "quantity": 2}, "")
	w = e.do(t, http.MethodPost, "/api/checkout/siguiente", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "address", decode[CheckoutView](t, w).StepName)

	partial := fullAddress()
	partial.Floor = "  "
	w = e.do(t, http.MethodPut, "/api/checkout/direccion", partial, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[CheckoutView](t, w).Shipping.Resolved)

	w = e.do(t, http.MethodPost, "/api/checkout/siguiente", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Completá todos los campos de la dirección de envío", errorOf(t, w))

	w = e.do(t, http.MethodPut, "/api/checkout/direccion", fullAddress(), "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[CheckoutView](t, w)
	assert.Equal(t, checkout.Quote{Cost: 500, Resolved: true, Tier: checkout.TierDefault}, view.Shipping)
	assert.Equal(t, checkout.Totals{Subtotal: 900, Shipping: 500, Total: 1400}, view.Totals)

	w = e.do(t, http.MethodPost, "/api/checkout/siguiente", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, checkout.StepPay, decode[CheckoutView](t, w).Step)

	// next on the last step stays put
	w = e.do(t, http.MethodPost, "/api/checkout/siguiente", nil, "")
	assert.Equal(t, checkout.StepPay, decode[CheckoutView](t, w).Step)

	w = e.do(t, http.MethodPost, "/api/checkout/anterior", nil, "")
	view = decode[CheckoutView](t, w)
	assert.Equal(t, checkout.StepAddress, view.Step)
	assert.Equal(t, fullAddress(), view.Address, "going back keeps the address")
}

func TestPayReturnsRedirect(t *testing.T) {
	e := newEnv(t)
	e.toPayStep(t)

	w := e.do(t, http.MethodPost, "/api/checkout/pagar", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]string](t, w)
	assert.Equal(t, "https://mp.test/checkout/pref-1", body["redirect_url"])

	req := e.gateway.last
	assert.Equal(t, e.session, req.ExternalReference)
	assert.Equal(t, []payment.Item{{Title: "Pan", Quantity: 2, UnitPrice: 450}}, req.Items)
	assert.Equal(t, 500.0, req.ShippingCost)
	assert.Equal(t, 1400.0, req.Total)
}

func TestPayBeforeLastStep(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/checkout/pagar", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, e.gateway.calls)
}

func TestAddressEditOnPayStepBlocksPay(t *testing.T) {
	e := newEnv(t)
	e.toPayStep(t)

	partial := fullAddress()
	partial.Phone = ""
	w := e.do(t, http.MethodPut, "/api/checkout/direccion", partial, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, checkout.StepAddress, decode[CheckoutView](t, w).Step)

	w = e.do(t, http.MethodPost, "/api/checkout/pagar", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, e.gateway.calls)

	// fixing the address and advancing again allows payment
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPut, "/api/checkout/direccion", fullAddress(), "").Code)
	require.Equal(t, http.StatusOK, e.do(t, http.MethodPost, "/api/checkout/siguiente", nil, "").Code)
	w = e.do(t, http.MethodPost, "/api/checkout/pagar", nil, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestPayWithoutRedirectURL(t *testing.T) {
	e := newEnv(t)
	e.toPayStep(t)
	e.gateway.pref = payment.Preference{ID: "pref-x"}

	w := e.do(t, http.MethodPost, "/api/checkout/pagar", nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "La pasarela de pago no devolvió una URL de pago", errorOf(t, w))

	w = e.do(t, http.MethodGet, "/api/checkout", nil, "")
	assert.Equal(t, checkout.StepPay, decode[CheckoutView](t, w).Step, "the wizard stays on the pay step")

	// the guard was released, so a retry reaches the gateway again
	e.gateway.pref.InitPoint = "https://mp.test/retry"
	w = e.do(t, http.MethodPost, "/api/checkout/pagar", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, e.gateway.calls)
}

func TestPayRejectsConcurrentSubmit(t *testing.T) {
	e := newEnv(t)
	e.toPayStep(t)
	e.gateway.started = make(chan struct{}, 1)
	e.gateway.block = make(chan struct{})

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- e.do(t, http.MethodPost, "/api/checkout/pagar", nil, "")
	}()
	<-e.gateway.started

	w := e.do(t, http.MethodPost, "/api/checkout/pagar", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Ya hay un pago en curso", errorOf(t, w))

	close(e.gateway.block)
	assert.Equal(t, http.StatusOK, (<-first).Code)
	assert.Equal(t, 1, e.gateway.calls)
}

func TestSetLocationNeedsGeocoding(t *testing.T) {
	e := newEnv(t)
	w := e.do(t, http.MethodPost, "/api/checkout/ubicacion", map[string]float64{"lat": -34.6, "lon": -58.4}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGeocodedCheckout(t *testing.T) {
	caba := checkout.Place{Found: true, DisplayName: "Av. Corrientes 1234, Buenos Aires, Argentina", CountryCode: "ar", Lat: -34.6, Lon: -58.38}

	t.Run("local address", func(t *testing.T) {
		e := newEnv(t, withGeocoding(caba, nil))
		e.toPayStep(t)

		assert.Equal(t, []string{"Av. Corrientes 1234, San Nicolás, Comuna 1, Buenos Aires, Argentina"}, e.geocoder.calls)
		w := e.do(t, http.MethodGet, "/api/checkout", nil, "")
		view := decode[CheckoutView](t, w)
		assert.Equal(t, checkout.Quote{Cost: 1500, Resolved: true, Tier: checkout.TierLocal}, view.Shipping)
		assert.Equal(t, &models.Coordinate{Lat: -34.6, Lon: -58.38}, view.Marker)
		assert.Equal(t, 2400.0, view.Totals.Total)
	})

	t.Run("abroad stays unresolved", func(t *testing.T) {
		e := newEnv(t, withGeocoding(checkout.Place{Found: true, DisplayName: "Montevideo, Uruguay", CountryCode: "uy"}, nil))
		e.seedProduct(models.Product{Name: "Pan", Price: 450})
		e.do(t, http.MethodPost, "/api/carrito/items", map[string]any{"id": 1}, "")
		e.do(t, http.MethodPost, "/api/checkout/siguiente", nil, "")

		w := e.do(t, http.MethodPut, "/api/checkout/direccion", fullAddress(), "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, checkout.TierOutOfRange, decode[CheckoutView](t, w).Shipping.Tier)

		w = e.do(t, http.MethodPost, "/api/checkout/siguiente", nil, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "No pudimos calcular el costo de envío para esa dirección", errorOf(t, w))
	})

	t.Run("no match", func(t *testing.T) {
		e := newEnv(t, withGeocoding(checkout.Place{}, geocode.ErrNoMatch))
		w := e.do(t, http.MethodPut, "/api/checkout/direccion", fullAddress(), "")
		require.Equal(t, http.StatusOK, w.Code)
		view := decode[CheckoutView](t, w)
		assert.Equal(t, checkout.TierUnresolved, view.Shipping.Tier)
		assert.Nil(t, view.Marker)
	})

	t.Run("service down keeps the address", func(t *testing.T) {
		e := newEnv(t, withGeocoding(checkout.Place{}, errors.New("connection refused")))
		w := e.do(t, http.MethodPut, "/api/checkout/direccion", fullAddress(), "")
		assert.Equal(t, http.StatusBadGateway, w.Code)

		w = e.do(t, http.MethodGet, "/api/checkout", nil, "")
		assert.Equal(t, fullAddress(), decode[CheckoutView](t, w).Address)
	})

	t.Run("map click", func(t *testing.T) {
		cordoba := checkout.Place{Found: true, DisplayName: "Córdoba, Argentina", CountryCode: "ar", Lat: -31.4, Lon: -64.18}
		e := newEnv(t, withGeocoding(cordoba, nil))
		w := e.do(t, http.MethodPost, "/api/checkout/ubicacion", map[string]float64{"lat": -31.4, "lon": -64.18}, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, checkout.Quote{Cost: 3000, Resolved: true, Tier: checkout.TierNational}, decode[CheckoutView](t, w).Shipping)

		w = e.do(t, http.MethodPost, "/api/checkout/ubicacion", map[string]float64{"lat": 123, "lon": 0}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
