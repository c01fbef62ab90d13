package clipper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recipePage = `
<html>
	<head><title>ignored</title><script>alert('bad');</script></head>
	<body>
		<nav><ul><li>Home</li><li>Recipes</li></ul></nav>
		<h1>Tomato Soup</h1>
		<div class="ads"><p>Buy stuff!</p></div>
		<p>A simple   soup.</p>
		<h2>Ingredients</h2>
		<ul>
			<li>2 cups tomatoes</li>
			<li>1 tbsp olive oil</li>
		</ul>
		<h2>Instructions</h2>
		<ol>
			<li><p>Chop the tomatoes.</p></li>
			<li>Simmer until thick.</li>
		</ol>
		<footer>Copyright 2024</footer>
	</body>
</html>`

func TestExtract(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(recipePage))
	require.NoError(t, err)

	want := strings.Join([]string{
		"Tomato Soup",
		"A simple soup.",
		"",
		"Ingredients",
		"2 cups tomatoes",
		"1 tbsp olive oil",
		"",
		"Instructions",
		"Chop the tomatoes.",
		"Simmer until thick.",
	}, "\n")
	assert.Equal(t, want, Extract(doc))
}

func TestClip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(recipePage))
	}))
	defer ts.Close()

	d, err := New(time.Second).Clip(context.Background(), ts.URL)
	require.NoError(t, err)

	assert.Equal(t, "Tomato Soup", d.Title)
	assert.Equal(t, "A simple soup.", d.Description)
	require.Len(t, d.Ingredients, 2)
	assert.Equal(t, 2.0, d.Ingredients[0].Qty)
	assert.Equal(t, "tomatoes", d.Ingredients[0].Name)
	assert.Equal(t, "olive oil", d.Ingredients[1].Name)
	assert.Equal(t, "Chop the tomatoes.\nSimmer until thick.", d.Instructions)
}

func TestFetchTextErrors(t *testing.T) {
	c := New(time.Second)

	t.Run("bad scheme", func(t *testing.T) {
		_, err := c.FetchText(context.Background(), "ftp://example.com/recipe")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("relative url", func(t *testing.T) {
		_, err := c.FetchText(context.Background(), "/recipes/1")
		assert.ErrorIs(t, err, ErrInvalidURL)
	})

	t.Run("not found", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		defer ts.Close()

		_, err := c.FetchText(context.Background(), ts.URL)
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
	})

	t.Run("empty page", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html><body><script>x()</script></body></html>`))
		}))
		defer ts.Close()

		_, err := c.FetchText(context.Background(), ts.URL)
		assert.ErrorIs(t, err, ErrNoRecipeContent)
	})
}
