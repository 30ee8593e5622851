package handlers

import (
	"net/http"
	"testing"

	"github.com/01moynul/farinez-golang/internal/cart"
	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartLifecycle(t *testing.T) {
	e := newEnv(t)
	pan := e.seedProduct(models.Product{Name: "Pan", Price: 450, ImageURL: "/pan.jpg"})
	e.recipes.items = []models.Recipe{{ID: pan.ID, Name: "Pizza", Price: 800}}

	// client-sent name and price are ignored
	w := e.do(t, http.MethodPost, "/api/carrito/items", map[string]any{"id": pan.ID, "quantity": 2, "name": "Gratis", "price": 0}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = e.do(t, http.MethodPost, "/api/carrito/items", map[string]any{"id": pan.ID}, "")
	w = e.do(t, http.MethodPost, "/api/carrito/items", map[string]any{"id": pan.ID, "type": "receta"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	summary := decode[cart.Summary](t, w)
	require.Len(t, summary.Items, 2, "same id with another type is a separate line")
	assert.Equal(t, models.CartItem{ID: pan.ID, Name: "Pan", Price: 450, Image: "/pan.jpg", Quantity: 3, Type: models.ItemTypeProduct}, summary.Items[0])
	assert.Equal(t, 4, summary.Count)
	assert.Equal(t, 2150.0, summary.Subtotal)

	w = e.do(t, http.MethodPut, "/api/carrito/items/1?type=producto", map[string]any{"quantity": 0}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[cart.Summary](t, w).Items[0].Quantity, "quantities clamp to one")

	w = e.do(t, http.MethodDelete, "/api/carrito/items/1?type=receta", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[cart.Summary](t, w).Items, 1)

	w = e.do(t, http.MethodDelete, "/api/carrito/items/1?type=receta", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodDelete, "/api/carrito", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[cart.Summary](t, w).Items)
}

func TestAddToCartUnknownItem(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/carrito/items", map[string]any{"id": 42}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPost, "/api/carrito/items", map[string]any{"id": 1, "type": "combo"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartsAreSessionScoped(t *testing.T) {
	e := newEnv(t)
	e.seedProduct(models.Product{Name: "Pan", Price: 450})

	e.do(t, http.MethodPost, "/api/carrito/items", map[string]any{"id": 1}, "")

	other := *e
	other.session = "5c2a7f0e-3b61-4d8f-9a57-1f0f4c1d2e3a"
	w := other.do(t, http.MethodGet, "/api/carrito", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[cart.Summary](t, w).Items)
}
