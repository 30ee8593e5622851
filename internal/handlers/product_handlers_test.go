package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/01moynul/farinez-golang/internal/catalog"
	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductRequiresAdmin(t *testing.T) {
	e := newEnv(t)
	body := map[string]any{"name": "Pan", "price": 450}

	w := e.do(t, http.MethodPost, "/api/productos", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(t, http.MethodPost, "/api/productos", body, e.token(t, models.RoleOperator))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, e.products.creates)
}

func TestCreateProductAcceptsStringPrice(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/productos", map[string]any{
		"name": "Pan de Molde", "price": "450.5", "category": "Panadería", "stock": "10",
	}, e.token(t, models.RoleAdmin))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	p := decode[models.Product](t, w)
	assert.Equal(t, 450.5, p.Price)
	assert.Equal(t, 10, p.Stock)
}

func TestCreateProductRejectsBadPrice(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodPost, "/api/productos", map[string]any{"name": "Pan", "price": "abc"}, e.token(t, models.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "El precio debe ser un número válido", errorOf(t, w))
	assert.Zero(t, e.products.creates)
}

func TestCreateProductDuplicateIsNotInserted(t *testing.T) {
	e := newEnv(t)
	existing := e.seedProduct(models.Product{
		Name: "Harina de Arroz", Price: 250, Category: "Harinas", Stock: 5,
		ImageURL: "/uploads/harina.jpg", Description: "1 kg",
	})

	w := e.do(t, http.MethodPost, "/api/productos", map[string]any{
		"name": "Harina de Arroz", "price": "250.00", "category": "Harinas", "stock": 5,
		"image_url": "/uploads/harina.jpg", "description": "1 kg",
	}, e.token(t, models.RoleAdmin))

	assert.Equal(t, http.StatusConflict, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "El producto ya existe, no se creará de nuevo", body["error"])
	assert.Equal(t, float64(existing.ID), body["id"])
	assert.Zero(t, e.products.creates, "no insert is issued for a duplicate")

	// a different stock is a different product
	w = e.do(t, http.MethodPost, "/api/productos", map[string]any{
		"name": "Harina de Arroz", "price": 250, "category": "Harinas", "stock": 6,
		"image_url": "/uploads/harina.jpg", "description": "1 kg",
	}, e.token(t, models.RoleAdmin))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, e.products.creates)
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	e := newEnv(t)
	p := e.seedProduct(models.Product{Name: "Fideos", Price: 300, Category: "Pastas"})
	admin := e.token(t, models.RoleAdmin)

	w := e.do(t, http.MethodPut, fmt.Sprintf("/api/productos/%d", p.ID), map[string]any{
		"name": "Fideos de Maíz", "price": 320, "category": "Pastas", "stock": 4,
	}, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Fideos de Maíz", decode[models.Product](t, w).Name)

	w = e.do(t, http.MethodPut, "/api/productos/99", map[string]any{"name": "X", "price": 1}, admin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodDelete, fmt.Sprintf("/api/productos/%d", p.ID), nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/api/productos/%d", p.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodGet, "/api/productos/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBrowseProductsPaginates(t *testing.T) {
	e := newEnv(t)
	for i := 1; i <= 7; i++ {
		e.seedProduct(models.Product{Name: fmt.Sprintf("Producto %d", i), Price: float64(100 * i), Category: "Snacks"})
	}

	w := e.do(t, http.MethodGet, "/api/catalogo/productos?page=2", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[catalog.Page[models.Product]](t, w)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 7, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, catalog.ProductPageSize, page.PageSize)

	w = e.do(t, http.MethodGet, "/api/catalogo/productos?price=medium&sort=price-desc", nil, "")
	page = decode[catalog.Page[models.Product]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Producto 2", page.Items[0].Name)

	w = e.do(t, http.MethodGet, "/api/catalogo/productos?page=9&search=producto", nil, "")
	page = decode[catalog.Page[models.Product]](t, w)
	assert.Equal(t, 2, page.Page, "page is clamped to the last one")

	w = e.do(t, http.MethodGet, "/api/catalogo/productos?page=x", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/api/catalogo/productos?limit=9223372036854775807", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, http.MethodGet, "/api/catalogo/productos?limit=100", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[catalog.Page[models.Product]](t, w)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Items, 7)
}

func TestListProductsReturnsEverything(t *testing.T) {
	e := newEnv(t)
	for i := 0; i < 9; i++ {
		e.seedProduct(models.Product{Name: fmt.Sprintf("P%d", i)})
	}
	w := e.do(t, http.MethodGet, "/api/productos", nil, "")
	assert.Len(t, decode[[]models.Product](t, w), 9)
}

func TestListCategories(t *testing.T) {
	e := newEnv(t)
	e.seedProduct(models.Product{Name: "a", Category: "Panadería"})
	e.seedProduct(models.Product{Name: "b", Category: "Dulces"})
	e.seedProduct(models.Product{Name: "c", Category: "Panadería"})
	e.seedProduct(models.Product{Name: "d"})

	w := e.do(t, http.MethodGet, "/api/categorias", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.Category{
		{Name: "Dulces", Slug: "dulces", Count: 1},
		{Name: "Panadería", Slug: "panaderia", Count: 2},
	}, decode[[]models.Category](t, w))
}
