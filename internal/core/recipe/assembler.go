package recipe

import (
	"strings"

	"recipe-clipper/internal/pkg/common"
)

// ExtractFromMarkup 從頁面原始碼擷取食譜，沒有可用的食譜時回傳 nil
func ExtractFromMarkup(markup, url string) *Recipe {
	return ExtractFromMarkupResult(markup, url).Recipe
}

// ExtractFromMarkupResult 與 ExtractFromMarkup 相同，但保留失敗原因
func ExtractFromMarkupResult(markup, url string) Result {
	scan := ScanStructuredData(markup)
	if len(scan.Values) == 0 {
		detail := "no structured data blocks"
		if scan.Blocks > 0 {
			detail = "no parseable structured data blocks"
		}
		return reject(ReasonNoBlocks, detail)
	}
	entity, ok := FindRecipe(scan.Values)
	if !ok {
		return reject(ReasonNoEntity, "no Recipe entity")
	}
	return assemble(entity, url)
}

// ExtractFromEntity 直接以已解析的 JSON 值擷取食譜
func ExtractFromEntity(values []interface{}, url string) *Recipe {
	entity, ok := FindRecipe(values)
	if !ok {
		return nil
	}
	return assemble(entity, url).Recipe
}

// GenerateID 以來源網址的 SHA-256 作為食譜 ID
func GenerateID(url string) string {
	return common.HashString(url)
}

// assemble 正規化每個欄位並檢查必要欄位
// name、image、ingredients、instructions 任一缺少即整筆拒絕
func assemble(entity map[string]interface{}, url string) Result {
	name := stringify(entity["name"])
	image := NormalizeImage(entity["image"])
	ingredients := NormalizeList(entity["recipeIngredient"])
	instructions := NormalizeInstructions(entity["recipeInstructions"])

	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if image == "" {
		missing = append(missing, "image")
	}
	if len(ingredients) == 0 {
		missing = append(missing, "ingredients")
	}
	if len(instructions) == 0 {
		missing = append(missing, "instructions")
	}
	if len(missing) > 0 {
		return reject(ReasonMissingField, "missing "+strings.Join(missing, ", "))
	}

	return Result{
		Reason: ReasonOK,
		Recipe: &Recipe{
			ID:                 GenerateID(url),
			Name:               name,
			Description:        stringify(entity["description"]),
			URL:                url,
			SourceURL:          url,
			Image:              image,
			Author:             NormalizeAuthor(entity["author"]),
			DatePublished:      stringify(entity["datePublished"]),
			PrepTime:           ParseDuration(stringify(entity["prepTime"])),
			CookTime:           ParseDuration(stringify(entity["cookTime"])),
			TotalTime:          ParseDuration(stringify(entity["totalTime"])),
			RecipeYield:        NormalizeYield(entity["recipeYield"]),
			RecipeCategory:     keywordText(entity["recipeCategory"]),
			RecipeCuisine:      keywordText(entity["recipeCuisine"]),
			Keywords:           NormalizeKeywords(entity["keywords"], entity["tags"]),
			Ingredients:        ingredients,
			Instructions:       instructions,
			RecipeInstructions: howToSteps(instructions),
			Nutrition:          NormalizeNutrition(entity["nutrition"]),
			AggregateRating:    NormalizeRating(entity["aggregateRating"]),
			Video:              NormalizeVideo(entity["video"]),
		},
	}
}
