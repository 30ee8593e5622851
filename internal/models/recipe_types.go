package models

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Recipe difficulty levels.
const (
	DifficultyEasy   = "Fácil"
	DifficultyMedium = "Medio"
	DifficultyHard   = "Difícil"
)

// Recipe is the model for the 'recetas' table.
type Recipe struct {
	ID           int64         `json:"id" db:"id"`
	Name         string        `json:"name" db:"name"`
	Difficulty   string        `json:"difficulty" db:"difficulty"`
	Time         string        `json:"time" db:"time"`
	Servings     int           `json:"servings" db:"servings"`
	Category     string        `json:"category" db:"category"`
	Price        float64       `json:"price" db:"price"`
	ImageURL     string        `json:"image_url" db:"image_url"`
	Description  string        `json:"description" db:"description"`
	CreatedAt    time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time     `json:"updatedAt" db:"updated_at"`
	Ingredients  []Ingredient  `json:"ingredientes" db:"-"`
	Instructions []Instruction `json:"instrucciones" db:"-"`
}

// Ingredient links a recipe to a product of the catalog.
type Ingredient struct {
	RecipeID       int64  `json:"-" db:"receta_id"`
	ProductID      int64  `json:"producto_id" db:"producto_id"`
	Quantity       string `json:"cantidad_en_receta" db:"cantidad_en_receta"`
	ConversionNote string `json:"conversion_note" db:"conversion_note"`
}

// Instruction is one ordered preparation step.
type Instruction struct {
	ID          int64  `json:"id" db:"id"`
	RecipeID    int64  `json:"-" db:"receta_id"`
	Step        int    `json:"paso_numero" db:"paso_numero"`
	Description string `json:"descripcion" db:"descripcion"`
}

// IngredientDetail is an ingredient resolved against the product catalog.
type IngredientDetail struct {
	Product
	Quantity       string `json:"cantidad"`
	ConversionNote string `json:"conversion,omitempty"`
}

func (r Recipe) ItemName() string       { return r.Name }
func (r Recipe) ItemPrice() float64     { return r.Price }
func (r Recipe) ItemCategory() string   { return r.Category }
func (r Recipe) ItemDifficulty() string { return r.Difficulty }
func (r Recipe) ItemMinutes() int       { return DurationMinutes(r.Time) }

// DurationMinutes reads a free-text duration such as "45 min", "2 horas",
// "1.5 horas", "1h30" or "1 hora 30 min". A number right after an hour unit
// counts as minutes. Text without a number yields 0.
func DurationMinutes(s string) int {
	var total, pending float64
	hasPending := false
	for _, tok := range durationTokens(strings.ToLower(s)) {
		if tok.word == "" {
			if hasPending {
				total += pending
			}
			pending, hasPending = tok.value, true
			continue
		}
		if !hasPending {
			continue
		}
		if strings.HasPrefix(tok.word, "h") {
			total += pending * 60
		} else {
			total += pending
		}
		hasPending = false
	}
	if hasPending {
		total += pending
	}
	return int(math.Round(total))
}

type durationToken struct {
	value float64
	word  string
}

// durationTokens splits s into numbers ("1.5" and "1,5" are decimals) and
// words; everything else separates tokens.
func durationTokens(s string) []durationToken {
	rs := []rune(s)
	var out []durationToken
	for i := 0; i < len(rs); {
		switch {
		case unicode.IsDigit(rs[i]):
			j := i
			for j < len(rs) && unicode.IsDigit(rs[j]) {
				j++
			}
			if j+1 < len(rs) && (rs[j] == '.' || rs[j] == ',') && unicode.IsDigit(rs[j+1]) {
				j++
				for j < len(rs) && unicode.IsDigit(rs[j]) {
					j++
				}
			}
			v, err := strconv.ParseFloat(strings.Replace(string(rs[i:j]), ",", ".", 1), 64)
			if err == nil {
				out = append(out, durationToken{value: v})
			}
			i = j
		case unicode.IsLetter(rs[i]):
			j := i
			for j < len(rs) && unicode.IsLetter(rs[j]) {
				j++
			}
			out = append(out, durationToken{word: string(rs[i:j])})
			i = j
		default:
			i++
		}
	}
	return out
}
