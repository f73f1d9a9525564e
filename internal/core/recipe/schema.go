package recipe

const (
	recipeType = "Recipe"
	typeKey    = "@type"
	graphKey   = "@graph"
)

// declaresType 物件的 @type 是否為 target：字串相等，或陣列中包含 target
func declaresType(v interface{}, target string) bool {
	t := field(v, typeKey)
	switch shapeOf(t) {
	case shapeString:
		return t.(string) == target
	case shapeArray:
		items, _ := asArray(t)
		for _, item := range items {
			if s, ok := item.(string); ok && s == target {
				return true
			}
		}
	}
	return false
}

// IsRecipe 值本身是否宣告為 Recipe
func IsRecipe(v interface{}) bool {
	return shapeOf(v) == shapeObject && declaresType(v, recipeType)
}

// findEntity 在單一候選中尋找 Recipe：先看本身，再看 @graph 的第一層成員
// @graph 成員若本身又帶 @graph，不會再往下找
func findEntity(v interface{}) (map[string]interface{}, bool) {
	if IsRecipe(v) {
		return asObject(v)
	}
	graph, ok := asArray(field(v, graphKey))
	if !ok {
		return nil, false
	}
	for _, member := range graph {
		if IsRecipe(member) {
			return asObject(member)
		}
	}
	return nil, false
}

// HasRecipe 候選中是否有任何 Recipe
func HasRecipe(values []interface{}) bool {
	_, ok := FindRecipe(values)
	return ok
}

// FindRecipe 依序檢查候選，回傳第一個找到的 Recipe
func FindRecipe(values []interface{}) (map[string]interface{}, bool) {
	for _, v := range values {
		if entity, ok := findEntity(v); ok {
			return entity, true
		}
	}
	return nil, false
}
