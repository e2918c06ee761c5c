package mealdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gleanerd/gleaner/internal/capability"
)

const searchFixture = `{
  "meals": [
    {
      "idMeal": "52977",
      "strMeal": "Corba",
      "strCategory": "Side",
      "strArea": "Turkish",
      "strInstructions": "Pick through your lentils.<br>Rinse well.",
      "strMealThumb": "https://img.example.org/corba.jpg",
      "strYoutube": "https://youtube.example.org/corba",
      "strSource": "https://recipes.example.org/corba",
      "strIngredient1": "Lentils",
      "strMeasure1": "1 cup",
      "strIngredient2": "Onion",
      "strMeasure2": "1 large",
      "strIngredient3": "",
      "strMeasure3": ""
    }
  ]
}`

func newTestClient(t *testing.T, handler http.Handler) *client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := newClient("meals", srv.URL, "1")
	require.NoError(t, err)
	return c
}

func TestSearchRecipes(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/json/v1/1/search.php", r.URL.Path)
		assert.Equal(t, "corba", r.URL.Query().Get("s"))
		w.Write([]byte(searchFixture))
	}))

	recipes, err := c.SearchRecipes(context.Background(), "corba")
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	got := recipes[0]
	assert.Equal(t, "52977", got.ID)
	assert.Equal(t, "Corba", got.Title)
	assert.Equal(t, "Side", got.Category)
	assert.Equal(t, "Turkish", got.Area)
	assert.Equal(t, "Pick through your lentils.\nRinse well.", got.Instructions)
	assert.Equal(t, "https://img.example.org/corba.jpg", got.PictureURL)
	require.Len(t, got.Ingredients, 2)
	assert.Equal(t, capability.RecipeIngredient{Name: "Lentils", Quantity: "1 cup"}, got.Ingredients[0])
	assert.Equal(t, capability.RecipeIngredient{Name: "Onion", Quantity: "1 large"}, got.Ingredients[1])
}

func TestSearchRecipes_EmptyResult(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meals": null}`))
	}))

	recipes, err := c.SearchRecipes(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestRecipe(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/json/v1/1/lookup.php", r.URL.Path)
		assert.Equal(t, "52977", r.URL.Query().Get("i"))
		w.Write([]byte(searchFixture))
	}))

	got, err := c.Recipe(context.Background(), "52977")
	require.NoError(t, err)
	assert.Equal(t, "Corba", got.Title)
}

func TestRecipe_NotFound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"meals": null}`))
	}))

	_, err := c.Recipe(context.Background(), "0")
	assert.ErrorIs(t, err, capability.ErrNotFound)
}

func TestSearchRecipes_ServerDown(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := c.SearchRecipes(context.Background(), "x")
	assert.ErrorIs(t, err, capability.ErrSiteUnavailable)
}
