package handlers

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/01moynul/farinez-golang/internal/catalog"
	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/gin-gonic/gin"
)

// --- Inputs ---

type IngredientInput struct {
	ProductID      int64  `json:"producto_id" binding:"required,gt=0"`
	Quantity       string `json:"cantidad_en_receta"`
	ConversionNote string `json:"conversion_note"`
}

type InstructionInput struct {
	Step        int    `json:"paso_numero" binding:"gte=0"`
	Description string `json:"descripcion" binding:"required"`
}

// RecipeInput is the full recipe record, with its ingredient and step lists.
type RecipeInput struct {
	Name         string             `json:"name" binding:"required"`
	Difficulty   string             `json:"difficulty" binding:"omitempty,oneof=Fácil Medio Difícil"`
	Time         string             `json:"time"`
	Servings     models.Count       `json:"servings" binding:"gte=0"`
	Category     string             `json:"category"`
	Price        models.Amount      `json:"price" binding:"gte=0"`
	ImageURL     string             `json:"image_url"`
	Description  string             `json:"description"`
	Ingredients  []IngredientInput  `json:"ingredientes" binding:"unique=ProductID,dive"`
	Instructions []InstructionInput `json:"instrucciones" binding:"dive"`
}

func (in RecipeInput) toModel() models.Recipe {
	r := models.Recipe{
		Name:         strings.TrimSpace(in.Name),
		Difficulty:   in.Difficulty,
		Time:         strings.TrimSpace(in.Time),
		Servings:     int(in.Servings),
		Category:     strings.TrimSpace(in.Category),
		Price:        in.Price.Cents(),
		ImageURL:     strings.TrimSpace(in.ImageURL),
		Description:  strings.TrimSpace(in.Description),
		Ingredients:  make([]models.Ingredient, 0, len(in.Ingredients)),
		Instructions: make([]models.Instruction, 0, len(in.Instructions)),
	}
	for _, ing := range in.Ingredients {
		r.Ingredients = append(r.Ingredients, models.Ingredient{
			ProductID:      ing.ProductID,
			Quantity:       strings.TrimSpace(ing.Quantity),
			ConversionNote: strings.TrimSpace(ing.ConversionNote),
		})
	}
	for i, st := range in.Instructions {
		step := st.Step
		if step == 0 {
			step = i + 1
		}
		r.Instructions = append(r.Instructions, models.Instruction{Step: step, Description: strings.TrimSpace(st.Description)})
	}
	return r
}

// --- Handlers ---

// ListRecipes handles GET /api/recetas and returns every recipe.
func (h *Handlers) ListRecipes(c *gin.Context) {
	recipes, err := h.Recipes.List(c.Request.Context())
	if err != nil {
		h.storeFailure(c, err, "", "Error al cargar las recetas")
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// BrowseRecipes handles GET /api/catalogo/recetas: search, category,
// difficulty, price range, sort and pagination.
func (h *Handlers) BrowseRecipes(c *gin.Context) {
	q, ok := bindListing(c, catalog.RecipePageSize)
	if !ok {
		return
	}
	recipes, err := h.Recipes.List(c.Request.Context())
	if err != nil {
		h.storeFailure(c, err, "", "Error al cargar las recetas")
		return
	}
	c.JSON(http.StatusOK, catalog.Apply(recipes, q, catalog.RecipeBuckets))
}

// GetRecipe handles GET /api/recetas/:id with ingredients and steps.
func (h *Handlers) GetRecipe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	r, err := h.Recipes.Get(c.Request.Context(), id)
	if err != nil {
		h.storeFailure(c, err, "Receta no encontrada", "Error al cargar la receta")
		return
	}
	c.JSON(http.StatusOK, r)
}

// CreateRecipe handles POST /api/recetas.
func (h *Handlers) CreateRecipe(c *gin.Context) {
	var input RecipeInput
	if !bindCatalogInput(c, &input) {
		return
	}
	candidate := input.toModel()
	if !h.checkIngredients(c, candidate) {
		return
	}

	existing, err := h.Recipes.List(c.Request.Context())
	if err != nil {
		h.storeFailure(c, err, "", "Error al crear la receta")
		return
	}
	if dup, found := catalog.DuplicateRecipe(candidate, existing); found {
		c.JSON(http.StatusConflict, gin.H{"error": "La receta ya existe, no se creará de nuevo", "id": dup.ID})
		return
	}

	created, err := h.Recipes.Create(c.Request.Context(), candidate)
	if err != nil {
		h.storeFailure(c, err, "", "Error al crear la receta")
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateRecipe handles PUT /api/recetas/:id. It can be switched off with
// RECIPE_EDIT_ENABLED=false.
func (h *Handlers) UpdateRecipe(c *gin.Context) {
	if !h.Config.RecipeEditEnabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "La edición de recetas está en mantenimiento"})
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input RecipeInput
	if !bindCatalogInput(c, &input) {
		return
	}

	r := input.toModel()
	r.ID = id
	if !h.checkIngredients(c, r) {
		return
	}
	updated, err := h.Recipes.Update(c.Request.Context(), r)
	if err != nil {
		h.storeFailure(c, err, "Receta no encontrada", "Error al actualizar la receta")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// checkIngredients answers 400 when an ingredient names a product that is
// not in the catalog.
func (h *Handlers) checkIngredients(c *gin.Context, r models.Recipe) bool {
	if len(r.Ingredients) == 0 {
		return true
	}
	ids := make([]int64, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ids = append(ids, ing.ProductID)
	}
	found, err := h.Products.GetMany(c.Request.Context(), ids)
	if err != nil {
		h.storeFailure(c, err, "", "Error al verificar los ingredientes")
		return false
	}
	known := make(map[int64]bool, len(found))
	for _, p := range found {
		known[p.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Ingrediente inexistente: producto %d", id)})
			return false
		}
	}
	return true
}

// DeleteRecipe handles DELETE /api/recetas/:id
func (h *Handlers) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.Recipes.Delete(c.Request.Context(), id); err != nil {
		h.storeFailure(c, err, "Receta no encontrada", "Error al eliminar la receta")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Receta eliminada"})
}

// --- Ingredients ---

// recipeIngredients resolves a recipe's ingredients against the catalog.
// Ingredients whose product no longer exists are left out.
func (h *Handlers) recipeIngredients(c *gin.Context, id int64) ([]models.IngredientDetail, bool) {
	r, err := h.Recipes.Get(c.Request.Context(), id)
	if err != nil {
		h.storeFailure(c, err, "Receta no encontrada", "Error al cargar los ingredientes")
		return nil, false
	}

	ids := make([]int64, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ids = append(ids, ing.ProductID)
	}
	products, err := h.Products.GetMany(c.Request.Context(), ids)
	if err != nil {
		h.storeFailure(c, err, "", "Error al cargar los ingredientes")
		return nil, false
	}
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	details := make([]models.IngredientDetail, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		p, found := byID[ing.ProductID]
		if !found {
			continue
		}
		details = append(details, models.IngredientDetail{
			Product:        p,
			Quantity:       ing.Quantity,
			ConversionNote: ing.ConversionNote,
		})
	}
	return details, true
}

// GetRecipeIngredients handles GET /api/recetas/:id/ingredientes
func (h *Handlers) GetRecipeIngredients(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	details, ok := h.recipeIngredients(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, details)
}

type IngredientsToCartInput struct {
	ProductIDs []int64 `json:"producto_ids" binding:"required,min=1"`
}

// AddIngredientsToCart handles POST /api/recetas/:id/carrito: the selected
// ingredient products go into the session cart, one unit each.
func (h *Handlers) AddIngredientsToCart(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var input IngredientsToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Seleccioná al menos un ingrediente"})
		return
	}

	details, ok := h.recipeIngredients(c, id)
	if !ok {
		return
	}
	st, ok := h.loadSession(c)
	if !ok {
		return
	}

	added := 0
	for _, d := range details {
		if !slices.Contains(input.ProductIDs, d.ID) {
			continue
		}
		st.Cart.Add(models.CartItem{
			ID:       d.ID,
			Name:     d.Name,
			Price:    d.Price,
			Image:    d.ImageURL,
			Quantity: 1,
			Type:     models.ItemTypeProduct,
		})
		added++
	}
	if added == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Los productos seleccionados no son ingredientes de esta receta"})
		return
	}
	if !h.saveSession(c, st) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "cart": st.Cart.Summarize()})
}
