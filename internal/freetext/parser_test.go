package freetext

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fooddb/internal/ingredient"
)

func TestParseSimpleRecipe(t *testing.T) {
	d := Parse("Pancakes\n200g flour\n2 eggs\n250ml milk\nMix everything and fry.")

	assert.Equal(t, "Pancakes", d.Title)
	assert.Equal(t, "", d.Description)
	assert.Equal(t, []ingredient.Ingredient{
		{Qty: 200, Unit: ingredient.Gram, Name: "flour"},
		{Qty: 2, Unit: ingredient.Pieces, Name: "eggs"},
		{Qty: 250, Unit: ingredient.Milliliter, Name: "milk"},
	}, d.Ingredients)
	assert.Equal(t, "Mix everything and fry.", d.Instructions)
}

func TestParseHebrewRecipe(t *testing.T) {
	text := `עוגת שוקולד
עוגה עשירה וטעימה
מצרכים:
2 כוסות קמח
1 כוס סוכר
3 ביצים
אופן ההכנה:
מערבבים הכל
אופים 30 דקות`

	d := Parse(text)

	assert.Equal(t, "עוגת שוקולד", d.Title)
	assert.Equal(t, "עוגה עשירה וטעימה", d.Description)
	assert.Equal(t, []ingredient.Ingredient{
		{Qty: 2, Unit: ingredient.Cup, Name: "קמח"},
		{Qty: 1, Unit: ingredient.Cup, Name: "סוכר"},
		{Qty: 3, Unit: ingredient.Pieces, Name: "ביצים"},
	}, d.Ingredients)
	assert.Equal(t, "מערבבים הכל\nאופים 30 דקות", d.Instructions)
}

func TestParseMarkdownWithSideSections(t *testing.T) {
	text := `# Banana Bread
Moist and easy.
Prep time: 15 minutes
Cook time: 1 hour 10 min
Servings: 8
Course: Dessert
Cuisine: American

## Ingredients
- 3 ripe bananas
- 2 cups flour
- ½ tsp salt

## Equipment
- Loaf pan
- Mixing bowl

## Instructions
1. Mash the bananas.
2. Mix in the flour and salt.

## Nutrition
Calories: 250
Protein: 4g
12g sugar
Saturated fat: 2g
Fat: 8g
Enjoy!`

	d := Parse(text)

	assert.Equal(t, "Banana Bread", d.Title)
	assert.Equal(t, "Moist and easy.", d.Description)

	require.NotNil(t, d.PrepTime)
	require.NotNil(t, d.CookTime)
	require.NotNil(t, d.Servings)
	assert.Equal(t, 15, *d.PrepTime)
	assert.Equal(t, 70, *d.CookTime)
	assert.Equal(t, 8, *d.Servings)
	assert.Equal(t, "Dessert", d.Course)
	assert.Equal(t, "American", d.Cuisine)

	assert.Equal(t, []ingredient.Ingredient{
		{Qty: 3, Unit: ingredient.Pieces, Name: "ripe bananas"},
		{Qty: 2, Unit: ingredient.Cup, Name: "flour"},
		{Qty: 0.5, Unit: ingredient.Teaspoon, Name: "salt"},
	}, d.Ingredients)

	assert.Equal(t, []Equipment{{Qty: 1, Name: "Loaf pan"}, {Qty: 1, Name: "Mixing bowl"}}, d.Equipment)

	assert.Equal(t, map[string]string{
		"calories":     "250",
		"protein":      "4g",
		"sugar":        "12g",
		"saturatedFat": "2g",
		"fat":          "8g",
	}, d.Nutrition)

	assert.Equal(t, "1. Mash the bananas.\n2. Mix in the flour and salt.\nEnjoy!", d.Instructions)
}

func TestParseBlankLineEndsIngredients(t *testing.T) {
	d := Parse("Salad\nFresh salad.\n2 tomatoes\n1 cucumber\n\nChop everything\nServe cold")

	assert.Len(t, d.Ingredients, 2)
	assert.Equal(t, "Chop everything\nServe cold", d.Instructions)
}

func TestParseBlankLineBeforeHeaderKeepsSection(t *testing.T) {
	d := Parse("Soup\n2 carrots\n\nIngredients for the stock:\n1 L water\n\n3 bay leaves")

	require.Len(t, d.Ingredients, 3)
	assert.Equal(t, ingredient.Ingredient{Qty: 1, Unit: ingredient.Liter, Name: "water"}, d.Ingredients[1])
	assert.Empty(t, d.Instructions)
}

func TestParseStepLines(t *testing.T) {
	t.Run("step keyword", func(t *testing.T) {
		d := Parse("Rice\n1 cup rice\nStep 1 rinse the rice\nStep 2 boil")
		assert.Len(t, d.Ingredients, 1)
		assert.Equal(t, "Step 1 rinse the rice\nStep 2 boil", d.Instructions)
	})

	t.Run("hebrew step keyword", func(t *testing.T) {
		d := Parse("אורז\n1 כוס אורז\nשלב 1 לשטוף")
		assert.Len(t, d.Ingredients, 1)
		assert.Equal(t, "שלב 1 לשטוף", d.Instructions)
	})

	t.Run("long numbered line", func(t *testing.T) {
		long := "1. Toast the bread in a hot pan until golden brown on both sides then butter it"
		d := Parse("Toast\n1 slice bread\n" + long)
		assert.Equal(t, []ingredient.Ingredient{{Qty: 1, Unit: ingredient.Pieces, Name: "slice bread"}}, d.Ingredients)
		assert.Equal(t, long, d.Instructions)
	})

	t.Run("short numbered ingredient stays", func(t *testing.T) {
		d := Parse("Toast\n1. 2 slices bread\n2. butter")
		assert.Len(t, d.Ingredients, 2)
		assert.Empty(t, d.Instructions)
	})
}

func TestParseTitleFallback(t *testing.T) {
	t.Run("header first skips title", func(t *testing.T) {
		d := Parse("Ingredients:\n2 eggs\n1 cup milk")
		assert.Equal(t, "eggs", d.Title)
		assert.Len(t, d.Ingredients, 2)
	})

	t.Run("ingredient-like first line", func(t *testing.T) {
		d := Parse("2 eggs\n1 cup milk")
		assert.Equal(t, "eggs", d.Title)
		assert.Len(t, d.Ingredients, 2)
	})

	t.Run("overlong first line", func(t *testing.T) {
		d := Parse(strings.Repeat("very ", 30) + "long opening line\n3 apples")
		assert.Equal(t, "apples", d.Title)
	})

	t.Run("nothing usable", func(t *testing.T) {
		d := Parse("")
		assert.Equal(t, UntitledRecipe, d.Title)
		assert.NotNil(t, d.Ingredients)
		assert.Empty(t, d.Ingredients)
	})
}

func TestMatchHeader(t *testing.T) {
	tests := []struct {
		line string
		want section
	}{
		{"Ingredients", sectionIngredients},
		{"INGREDIENTS:", sectionIngredients},
		{"**Ingredients:**", sectionIngredients},
		{"## Zutaten", sectionIngredients},
		{"Ingredienti:", sectionIngredients},
		{"Ingrediënten", sectionIngredients},
		{"Ингредиенты:", sectionIngredients},
		{"רכיבים", sectionIngredients},
		{"Instructions:", sectionInstructions},
		{"Zubereitung", sectionInstructions},
		{"Preparazione:", sectionInstructions},
		{"Bereidingswijze", sectionInstructions},
		{"Приготовление", sectionInstructions},
		{"הוראות הכנה:", sectionInstructions},
		{"Nutrition Facts", sectionNutrition},
		{"Nährwerte:", sectionNutrition},
		{"ערכים תזונתיים", sectionNutrition},
		{"Equipment:", sectionEquipment},
		{"Attrezzatura", sectionEquipment},
		{"ציוד", sectionEquipment},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := matchHeader(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, line := range []string{"Ingredients are important in this dish", "Methodical", "2 cups flour", ""} {
		_, ok := matchHeader(line)
		assert.False(t, ok, line)
	}
}

func TestParseMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"15", 15},
		{"15 minutes", 15},
		{"1 hour", 60},
		{"1 hour 30 min", 90},
		{"2h", 120},
		{"20 דקות", 20},
	}
	for _, tt := range tests {
		got, ok := parseMinutes(tt.in)
		assert.True(t, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, ok := parseMinutes("soon")
	assert.False(t, ok)
}

func TestParseHebrewMetadata(t *testing.T) {
	d := Parse("שקשוקה\nזמן הכנה: 10 דקות\nזמן בישול: 20 דקות\nמנות: 4\nמטבח: ים תיכוני\n4 ביצים")

	require.NotNil(t, d.PrepTime)
	require.NotNil(t, d.CookTime)
	require.NotNil(t, d.Servings)
	assert.Equal(t, 10, *d.PrepTime)
	assert.Equal(t, 20, *d.CookTime)
	assert.Equal(t, 4, *d.Servings)
	assert.Equal(t, "ים תיכוני", d.Cuisine)
	assert.Len(t, d.Ingredients, 1)
}

func TestParseIsTotal(t *testing.T) {
	inputs := []string{
		"", "   ", "\n\n\n", "\x00\xff\xfe", "## \n**\n- \n1.", "Nutrition\n\nEquipment\n\n",
		strings.Repeat("word ", 10000), strings.Repeat("1 ½ cups sugar\n", 2000),
		"\r\nTitle\r\n2 eggs\r\n",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			d := Parse(in)
			assert.NotEmpty(t, d.Title)
			for _, ing := range d.Ingredients {
				assert.True(t, ing.Unit.Valid())
			}
		})
	}
}

func TestDraftValidate(t *testing.T) {
	assert.ErrorIs(t, Draft{Title: "x"}.Validate(), ErrIncompleteDraft)
	assert.ErrorIs(t, Draft{Ingredients: []ingredient.Ingredient{{Name: "salt"}}}.Validate(), ErrIncompleteDraft)
	assert.NoError(t, Draft{Title: "x", Ingredients: []ingredient.Ingredient{{Name: "salt"}}}.Validate())
}

func TestParseSentenceBetweenIngredients(t *testing.T) {
	d := Parse("Omelette\n3 eggs\nSalt to taste.\n1 tbsp butter\nWhisk and cook.")

	assert.Equal(t, []ingredient.Ingredient{
		{Qty: 3, Unit: ingredient.Pieces, Name: "eggs"},
		{Qty: 0, Unit: ingredient.Pieces, Name: "Salt to taste."},
		{Qty: 1, Unit: ingredient.Tablespoon, Name: "butter"},
	}, d.Ingredients)
	assert.Equal(t, "Whisk and cook.", d.Instructions)
}

func TestParseSentenceBeforeNumberedSteps(t *testing.T) {
	d := Parse("Toast\n2 slices bread\nToast until golden.\n1. Butter the toast.\n2. Serve warm.")

	assert.Len(t, d.Ingredients, 1)
	assert.Equal(t, "Toast until golden.\n1. Butter the toast.\n2. Serve warm.", d.Instructions)
}

func TestParseLongBlankRunIsLinear(t *testing.T) {
	text := "Title\n1 egg\n" + strings.Repeat("\n", 200000) + "2 eggs"

	start := time.Now()
	d := Parse(text)
	elapsed := time.Since(start)

	assert.Len(t, d.Ingredients, 2)
	assert.Less(t, elapsed, 2*time.Second)
}
