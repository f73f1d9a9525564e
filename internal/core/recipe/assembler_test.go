package recipe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageURL = "https://example.com/recipes/apple-pie"

func page(blocks ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Apple Pie</title>")
	for _, block := range blocks {
		b.WriteString(`<script type="application/ld+json">`)
		b.WriteString(block)
		b.WriteString("</script>")
	}
	b.WriteString("</head><body><h1>Apple Pie</h1></body></html>")
	return b.String()
}

const fullRecipe = `{
	"@context": "https://schema.org",
	"@type": "Recipe",
	"name": "Apple Pie",
	"description": "A classic.",
	"image": [{"@type": "ImageObject", "url": "https://example.com/pie.jpg"}, "https://example.com/pie2.jpg"],
	"author": {"@type": "Person", "name": "Grandma"},
	"datePublished": "2023-10-01",
	"prepTime": "PT30M",
	"cookTime": "PT1H",
	"totalTime": "PT1H30M",
	"recipeYield": ["8", "8 slices"],
	"recipeCategory": "Dessert",
	"recipeCuisine": ["American"],
	"keywords": "pie, apple",
	"recipeIngredient": ["6 apples", "1 pie crust", ""],
	"recipeInstructions": [
		{"@type": "HowToStep", "text": "Slice the apples."},
		{"@type": "HowToStep", "text": "Bake for an hour."}
	],
	"nutrition": {"@type": "NutritionInformation", "calories": "300 kcal", "protein": "2 g"},
	"aggregateRating": {"@type": "AggregateRating", "ratingValue": "4.8", "reviewCount": "210"},
	"video": {"@type": "VideoObject", "name": "Pie video", "contentUrl": "https://example.com/pie.mp4"}
}`

func TestExtractFromMarkup_FullRecipe(t *testing.T) {
	r := ExtractFromMarkup(page(fullRecipe), pageURL)
	require.NotNil(t, r)

	assert.Equal(t, GenerateID(pageURL), r.ID)
	assert.Len(t, r.ID, 64)
	assert.Equal(t, "Apple Pie", r.Name)
	assert.Equal(t, "A classic.", r.Description)
	assert.Equal(t, pageURL, r.URL)
	assert.Equal(t, pageURL, r.SourceURL)
	assert.Equal(t, "https://example.com/pie.jpg", r.Image)
	assert.Equal(t, "Grandma", r.Author)
	assert.Equal(t, "2023-10-01", r.DatePublished)
	assert.Equal(t, "PT30M", r.PrepTime)
	assert.Equal(t, "PT1H", r.CookTime)
	assert.Equal(t, "PT1H30M", r.TotalTime)
	assert.Equal(t, "8", r.RecipeYield)
	assert.Equal(t, "Dessert", r.RecipeCategory)
	assert.Equal(t, "American", r.RecipeCuisine)
	assert.Equal(t, "pie, apple", r.Keywords)
	assert.Equal(t, []string{"6 apples", "1 pie crust"}, r.Ingredients)
	assert.Equal(t, []string{"Slice the apples.", "Bake for an hour."}, r.Instructions)
	assert.Equal(t, []HowToStep{
		{Type: "HowToStep", Text: "Slice the apples."},
		{Type: "HowToStep", Text: "Bake for an hour."},
	}, r.RecipeInstructions)
	assert.Equal(t, "2 g", r.Nutrition["proteinContent"])
	assert.Equal(t, "300 kcal", r.Nutrition["calories"])
	require.NotNil(t, r.AggregateRating)
	assert.Equal(t, 4.8, r.AggregateRating.RatingValue)
	assert.Equal(t, 210, r.AggregateRating.ReviewCount)
	require.NotNil(t, r.Video)
	assert.Equal(t, "https://example.com/pie.mp4", r.Video.ContentURL)
}

func TestExtractFromMarkup_GraphAndSkippedBlocks(t *testing.T) {
	graph := `{"@context":"https://schema.org","@graph":[
		{"@type":"WebPage","name":"Page"},
		{"@type":["Recipe"],"name":"Graph Pie","image":"https://x/g.jpg",
		 "recipeIngredient":"1 apple","recipeInstructions":"Peel\nBake"}
	]}`

	r := ExtractFromMarkup(page(`{not json`, graph), pageURL)
	require.NotNil(t, r)
	assert.Equal(t, "Graph Pie", r.Name)
	assert.Equal(t, []string{"1 apple"}, r.Ingredients)
	assert.Equal(t, []string{"Peel", "Bake"}, r.Instructions)
	assert.Equal(t, "", r.PrepTime)
	assert.Nil(t, r.Nutrition)
	assert.Nil(t, r.AggregateRating)
	assert.Nil(t, r.Video)
}

func TestExtractFromMarkupResult_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		reason Reason
	}{
		{"no blocks", "<html><body>no data</body></html>", ReasonNoBlocks},
		{"all blocks malformed", page(`{bad`, `[1,`), ReasonNoBlocks},
		{"no recipe entity", page(`{"@type":"Organization","name":"Acme"}`), ReasonNoEntity},
		{
			"recipe two levels deep",
			page(`{"@graph":[{"@type":"WebPage","@graph":[{"@type":"Recipe","name":"Deep"}]}]}`),
			ReasonNoEntity,
		},
		{
			"missing image",
			page(`{"@type":"Recipe","name":"Pie","recipeIngredient":["a"],"recipeInstructions":["b"]}`),
			ReasonMissingField,
		},
		{
			"missing ingredients",
			page(`{"@type":"Recipe","name":"Pie","image":"u","recipeInstructions":["b"]}`),
			ReasonMissingField,
		},
		{
			"missing instructions",
			page(`{"@type":"Recipe","name":"Pie","image":"u","recipeIngredient":["a"],"recipeInstructions":[]}`),
			ReasonMissingField,
		},
		{
			"missing name",
			page(`{"@type":"Recipe","name":"  ","image":"u","recipeIngredient":["a"],"recipeInstructions":["b"]}`),
			ReasonMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ExtractFromMarkupResult(tt.markup, pageURL)
			assert.Nil(t, res.Recipe)
			assert.Equal(t, tt.reason, res.Reason)
			assert.Nil(t, ExtractFromMarkup(tt.markup, pageURL))
		})
	}
}

func TestExtractFromMarkup_FirstRecipeWins(t *testing.T) {
	first := `{"@type":"Recipe","name":"First","image":"u","recipeIngredient":["a"],"recipeInstructions":["b"]}`
	second := `{"@type":"Recipe","name":"Second","image":"u","recipeIngredient":["a"],"recipeInstructions":["b"]}`

	r := ExtractFromMarkup(page(first, second), pageURL)
	require.NotNil(t, r)
	assert.Equal(t, "First", r.Name)
}

func TestExtractFromMarkup_FirstRecipeIncompleteRejects(t *testing.T) {
	incomplete := `{"@type":"Recipe","name":"First","recipeIngredient":["a"],"recipeInstructions":["b"]}`
	complete := `{"@type":"Recipe","name":"Second","image":"u","recipeIngredient":["a"],"recipeInstructions":["b"]}`

	assert.Nil(t, ExtractFromMarkup(page(incomplete, complete), pageURL))
}

func TestGenerateID_StableAcrossContent(t *testing.T) {
	a := ExtractFromMarkup(page(fullRecipe), pageURL)
	b := ExtractFromMarkup(page(strings.Replace(fullRecipe, "A classic.", "Updated.", 1)), pageURL)
	require.NotNil(t, a)
	require.NotNil(t, b)

	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, GenerateID(pageURL+"?v=2"))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", GenerateID(""))
}

func TestExtractFromEntity(t *testing.T) {
	values := LocateStructuredData(page(fullRecipe))
	r := ExtractFromEntity(values, pageURL)
	require.NotNil(t, r)
	assert.Equal(t, "Apple Pie", r.Name)

	assert.Nil(t, ExtractFromEntity(nil, pageURL))
}

func TestExtractFromEntity_TypedGoValues(t *testing.T) {
	entity := map[string]interface{}{
		"@type":              []string{"Recipe", "NewsArticle"},
		"name":               "Toast",
		"image":              []string{"https://x/toast.jpg"},
		"recipeIngredient":   []string{"bread", "butter"},
		"recipeInstructions": []HowToStep{{Type: "HowToStep", Text: "Toast"}, {Type: "HowToStep", Text: "Butter"}},
		"nutrition":          Nutrition{"calories": "90"},
	}

	r := ExtractFromEntity([]interface{}{entity}, pageURL)
	require.NotNil(t, r)
	assert.Equal(t, "https://x/toast.jpg", r.Image)
	assert.Equal(t, []string{"bread", "butter"}, r.Ingredients)
	assert.Equal(t, []string{"Toast", "Butter"}, r.Instructions)
	assert.Equal(t, Nutrition{"calories": "90"}, r.Nutrition)
}
