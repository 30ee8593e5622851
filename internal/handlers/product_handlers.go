package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/01moynul/farinez-golang/internal/catalog"
	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/gin-gonic/gin"
)

// --- Inputs ---

// ProductInput is the full product record sent by the admin forms. Price and
// stock may arrive as numbers or numeric strings.
type ProductInput struct {
	Name        string        `json:"name" binding:"required"`
	Price       models.Amount `json:"price" binding:"gte=0"`
	Category    string        `json:"category"`
	Stock       models.Count  `json:"stock" binding:"gte=0"`
	ImageURL    string        `json:"image_url"`
	Description string        `json:"description"`
}

func (in ProductInput) toModel() models.Product {
	return models.Product{
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price.Cents(),
		Category:    strings.TrimSpace(in.Category),
		Stock:       int(in.Stock),
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Description: strings.TrimSpace(in.Description),
	}
}

// bindCatalogInput binds a product or recipe body, answering 400 itself.
func bindCatalogInput(c *gin.Context, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		if errors.Is(err, models.ErrInvalidPrice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "El precio debe ser un número válido"})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// bindListing reads the listing query parameters.
func bindListing(c *gin.Context, defaultSize int) (catalog.Query, bool) {
	var q catalog.Query
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parámetros de búsqueda inválidos"})
		return q, false
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultSize
	}
	return q, true
}

// --- Handlers ---

// ListProducts handles GET /api/productos and returns every product.
func (h *Handlers) ListProducts(c *gin.Context) {
	products, err := h.Products.List(c.Request.Context())
	if err != nil {
		h.storeFailure(c, err, "", "Error al cargar los productos")
		return
	}
	c.JSON(http.StatusOK, products)
}

// BrowseProducts handles GET /api/catalogo/productos: the storefront listing
// with search, category, price range, sort and pagination.
func (h *Handlers) BrowseProducts(c *gin.Context) {
	q, ok := bindListing(c, catalog.ProductPageSize)
	if !ok {
		return
	}
	products, err := h.Products.List(c.Request.Context())
	if err != nil {
		h.storeFailure(c, err, "", "Error al cargar los productos")
		return
	}
	c.JSON(http.StatusOK, catalog.Apply(products, q, catalog.ProductBuckets))
}

// GetProduct handles GET /api/productos/:id
func (h *Handlers) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	p, err := h.Products.Get(c.Request.Context(), id)
	if err != nil {
		h.storeFailure(c, err, "Producto no encontrado", "Error al cargar el producto")
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreateProduct handles POST /api/productos. An identical product already in
// the catalog is rejected before anything is written.
func (h *Handlers) CreateProduct(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input ProductInput
	if !bindCatalogInput(c, &input) {
		return
	}
	candidate := input.toModel()

	// 2. --- Duplicate Check ---
	existing, err := h.Products.List(c.Request.Context())
	if err != nil {
		h.storeFailure(c, err, "", "Error al crear el producto")
		return
	}
	if dup, found := catalog.DuplicateProduct(candidate, existing); found {
		c.JSON(http.StatusConflict, gin.H{"error": "El producto ya existe, no se creará de nuevo", "id": dup.ID})
		return
	}

	// 3. --- Save ---
	created, err := h.Products.Create(c.Request.Context(), candidate)
	if err != nil {
		h.storeFailure(c, err, "", "Error al crear el producto")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateProduct handles PUT /api/productos/:id with the full record.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input ProductInput
	if !bindCatalogInput(c, &input) {
		return
	}

	p := input.toModel()
	p.ID = id
	updated, err := h.Products.Update(c.Request.Context(), p)
	if err != nil {
		h.storeFailure(c, err, "Producto no encontrado", "Error al actualizar el producto")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteProduct handles DELETE /api/productos/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Products.Delete(c.Request.Context(), id); err != nil {
		h.storeFailure(c, err, "Producto no encontrado", "Error al eliminar el producto")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Producto eliminado"})
}
