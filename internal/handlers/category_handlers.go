package handlers

import (
	"net/http"

	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Categories groups products by category, sorted by name in Spanish order.
// Products without a category are skipped.
func Categories(products []models.Product) []models.Category {
	counts := map[string]int{}
	var names []string
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if counts[p.Category] == 0 {
			names = append(names, p.Category)
		}
		counts[p.Category]++
	}
	collate.New(language.Spanish).SortStrings(names)

	out := make([]models.Category, 0, len(names))
	for _, n := range names {
		out = append(out, models.Category{Name: n, Slug: slug.Make(n), Count: counts[n]})
	}
	return out
}

// ListCategories handles GET /api/categorias
func (h *Handlers) ListCategories(c *gin.Context) {
	products, err := h.Products.List(c.Request.Context())
	if err != nil {
		h.storeFailure(c, err, "", "Error al cargar las categorías")
		return
	}
	c.JSON(http.StatusOK, Categories(products))
}
