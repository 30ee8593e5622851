package handlers

import (
	"errors"
	"net/http"

	"github.com/01moynul/farinez-golang/internal/cart"
	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Cart Handlers (session scoped) ---
//

// AddToCartInput names a catalog item; name, price and image are read from
// the catalog, never from the client.
type AddToCartInput struct {
	ID       int64  `json:"id" binding:"required,gt=0"`
	Type     string `json:"type" binding:"omitempty,oneof=producto receta"`
	Quantity int    `json:"quantity"`
}

type UpdateCartItemInput struct {
	Quantity int `json:"quantity"`
}

// GetCart handles GET /api/carrito
func (h *Handlers) GetCart(c *gin.Context) {
	st, ok := h.loadSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, st.Cart.Summarize())
}

// AddToCart handles POST /api/carrito/items. Adding an item already in the
// cart increases its quantity.
func (h *Handlers) AddToCart(c *gin.Context) {
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Datos inválidos: " + err.Error()})
		return
	}

	item, ok := h.catalogItem(c, input.ID, input.Type)
	if !ok {
		return
	}
	item.Quantity = input.Quantity

	st, ok := h.loadSession(c)
	if !ok {
		return
	}
	st.Cart.Add(item)
	if !h.saveSession(c, st) {
		return
	}
	c.JSON(http.StatusOK, st.Cart.Summarize())
}

// catalogItem builds a cart line from the stored product or recipe.
func (h *Handlers) catalogItem(c *gin.Context, id int64, itemType string) (models.CartItem, bool) {
	ctx := c.Request.Context()
	if itemType == models.ItemTypeRecipe {
		r, err := h.Recipes.Get(ctx, id)
		if err != nil {
			h.storeFailure(c, err, "Receta no encontrada", "Error al agregar al carrito")
			return models.CartItem{}, false
		}
		return models.CartItem{ID: r.ID, Name: r.Name, Price: r.Price, Image: r.ImageURL, Type: models.ItemTypeRecipe}, true
	}

	p, err := h.Products.Get(ctx, id)
	if err != nil {
		h.storeFailure(c, err, "Producto no encontrado", "Error al agregar al carrito")
		return models.CartItem{}, false
	}
	return models.CartItem{ID: p.ID, Name: p.Name, Price: p.Price, Image: p.ImageURL, Type: models.ItemTypeProduct}, true
}

// UpdateCartItem handles PUT /api/carrito/items/:id?type=. Quantities below
// one are clamped to one.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cantidad inválida"})
		return
	}

	h.mutateCart(c, func(ct *cart.Cart) error {
		return ct.UpdateQuantity(id, c.Query("type"), input.Quantity)
	})
}

// RemoveCartItem handles DELETE /api/carrito/items/:id?type=
func (h *Handlers) RemoveCartItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.mutateCart(c, func(ct *cart.Cart) error {
		return ct.Remove(id, c.Query("type"))
	})
}

// ClearCart handles DELETE /api/carrito
func (h *Handlers) ClearCart(c *gin.Context) {
	h.mutateCart(c, func(ct *cart.Cart) error {
		ct.Clear()
		return nil
	})
}

func (h *Handlers) mutateCart(c *gin.Context, fn func(*cart.Cart) error) {
	st, ok := h.loadSession(c)
	if !ok {
		return
	}
	if err := fn(&st.Cart); err != nil {
		if errors.Is(err, cart.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "El artículo no está en el carrito"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.saveSession(c, st) {
		return
	}
	c.JSON(http.StatusOK, st.Cart.Summarize())
}
