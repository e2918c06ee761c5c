package capability

import "context"

// RecipeIngredient pairs an ingredient with its free-form quantity.
type RecipeIngredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
}

// Recipe is a cooking recipe record.
type Recipe struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Category     string             `json:"category,omitempty"`
	Area         string             `json:"area,omitempty"`
	Instructions string             `json:"instructions,omitempty"`
	Ingredients  []RecipeIngredient `json:"ingredients,omitempty"`
	PictureURL   string             `json:"picture_url,omitempty"`
	VideoURL     string             `json:"video_url,omitempty"`
	SourceURL    string             `json:"source_url,omitempty"`
}

// CapRecipe is implemented by backends that expose cooking recipes.
type CapRecipe interface {
	SearchRecipes(ctx context.Context, pattern string) ([]Recipe, error)
	Recipe(ctx context.Context, id string) (*Recipe, error)
}
