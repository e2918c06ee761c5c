package mealdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/gleanerd/gleaner/internal/browser"
	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/page"
)

// TheMealDB ships ingredient/measure pairs as 20 numbered columns.
const maxIngredients = 20

type client struct {
	backend string
	browser *browser.Browser
	apiKey  string
}

var _ capability.CapRecipe = (*client)(nil)

func newClient(backend, baseURL, apiKey string) (*client, error) {
	b, err := browser.New(browser.Options{
		BaseURL: baseURL,
		Timeout: 20 * time.Second,
		Retries: 2,
	})
	if err != nil {
		return nil, err
	}
	return &client{backend: backend, browser: b, apiKey: apiKey}, nil
}

func (c *client) endpoint(name string) string {
	return "/api/json/v1/" + c.apiKey + "/" + name
}

// SearchRecipes queries search.php and maps every meal to a Recipe.
func (c *client) SearchRecipes(ctx context.Context, pattern string) ([]capability.Recipe, error) {
	doc, err := c.browser.Get(ctx, c.endpoint("search.php"), url.Values{"s": {pattern}})
	if err != nil {
		return nil, capability.WrapErr(c.backend, "search recipes", err)
	}
	if err := doc.Err(); err != nil {
		return nil, capability.WrapErr(c.backend, "search recipes", err)
	}

	meals := doc.JSONPath("meals")
	if !meals.IsArray() {
		// The API answers {"meals": null} for an empty result.
		return nil, nil
	}

	var out []capability.Recipe
	meals.ForEach(func(_, meal gjson.Result) bool {
		out = append(out, parseMeal(meal))
		return true
	})
	return out, nil
}

// Recipe looks up one meal by ID via lookup.php.
func (c *client) Recipe(ctx context.Context, id string) (*capability.Recipe, error) {
	doc, err := c.browser.Get(ctx, c.endpoint("lookup.php"), url.Values{"i": {id}})
	if err != nil {
		return nil, capability.WrapErr(c.backend, "recipe", err)
	}
	if err := doc.Err(); err != nil {
		return nil, capability.WrapErr(c.backend, "recipe", err)
	}

	meals := doc.JSONPath("meals")
	if !meals.IsArray() || len(meals.Array()) == 0 {
		return nil, capability.WrapErr(c.backend, "recipe", capability.ErrNotFound)
	}

	recipe := parseMeal(meals.Array()[0])
	return &recipe, nil
}

func parseMeal(meal gjson.Result) capability.Recipe {
	r := capability.Recipe{
		ID:           meal.Get("idMeal").String(),
		Title:        meal.Get("strMeal").String(),
		Category:     meal.Get("strCategory").String(),
		Area:         meal.Get("strArea").String(),
		Instructions: page.CleanText(meal.Get("strInstructions").String()),
		PictureURL:   meal.Get("strMealThumb").String(),
		VideoURL:     meal.Get("strYoutube").String(),
		SourceURL:    meal.Get("strSource").String(),
	}

	for i := 1; i <= maxIngredients; i++ {
		name := strings.TrimSpace(meal.Get(fmt.Sprintf("strIngredient%d", i)).String())
		if name == "" {
			continue
		}
		r.Ingredients = append(r.Ingredients, capability.RecipeIngredient{
			Name:     name,
			Quantity: strings.TrimSpace(meal.Get(fmt.Sprintf("strMeasure%d", i)).String()),
		})
	}
	return r
}
