package catalog

import "github.com/01moynul/farinez-golang/internal/models"

// DuplicateProduct returns the first existing product whose key fields equal
// the candidate's. Prices compare at two decimals.
func DuplicateProduct(candidate models.Product, existing []models.Product) (models.Product, bool) {
	for _, p := range existing {
		if p.Name == candidate.Name &&
			models.RoundCents(p.Price) == models.RoundCents(candidate.Price) &&
			p.Category == candidate.Category &&
			p.Stock == candidate.Stock &&
			p.Description == candidate.Description &&
			p.ImageURL == candidate.ImageURL {
			return p, true
		}
	}
	return models.Product{}, false
}

// DuplicateRecipe is DuplicateProduct for recipes, with difficulty standing in
// for stock.
func DuplicateRecipe(candidate models.Recipe, existing []models.Recipe) (models.Recipe, bool) {
	for _, r := range existing {
		if r.Name == candidate.Name &&
			models.RoundCents(r.Price) == models.RoundCents(candidate.Price) &&
			r.Category == candidate.Category &&
			r.Difficulty == candidate.Difficulty &&
			r.Description == candidate.Description &&
			r.ImageURL == candidate.ImageURL {
			return r, true
		}
	}
	return models.Recipe{}, false
}
