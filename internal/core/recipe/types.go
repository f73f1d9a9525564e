package recipe

// Recipe 標準化後的食譜紀錄
// 組裝完成後不再修改，每次擷取都建立新的紀錄
type Recipe struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	URL                string           `json:"url"`
	SourceURL          string           `json:"sourceUrl"`
	Image              string           `json:"image"`
	Author             string           `json:"author"`
	DatePublished      string           `json:"datePublished"`
	PrepTime           string           `json:"prepTime"`
	CookTime           string           `json:"cookTime"`
	TotalTime          string           `json:"totalTime"`
	RecipeYield        string           `json:"recipeYield"`
	RecipeCategory     string           `json:"recipeCategory"`
	RecipeCuisine      string           `json:"recipeCuisine"`
	Keywords           string           `json:"keywords"`
	Ingredients        []string         `json:"ingredients"`
	Instructions       []string         `json:"instructions"`
	RecipeInstructions []HowToStep      `json:"recipeInstructions"`
	Nutrition          Nutrition        `json:"nutrition,omitempty"`
	AggregateRating    *AggregateRating `json:"aggregateRating,omitempty"`
	Video              *Video           `json:"video,omitempty"`
}

// HowToStep schema.org 步驟物件
type HowToStep struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Nutrition 營養資訊，鍵為 schema.org 名稱（如 proteinContent）
type Nutrition map[string]interface{}

// AggregateRating 評分
type AggregateRating struct {
	RatingValue float64 `json:"ratingValue"`
	ReviewCount int     `json:"reviewCount"`
}

// Video 影片
type Video struct {
	ContentURL string `json:"contentUrl"`
	Name       string `json:"name"`
}

// Reason 擷取結果的內部分類，對外一律以 nil 表示「沒有可用的食譜」
type Reason int

const (
	// ReasonOK 成功
	ReasonOK Reason = iota
	// ReasonNoBlocks 頁面沒有可解析的結構化資料區塊
	ReasonNoBlocks
	// ReasonNoEntity 所有候選都不是 Recipe
	ReasonNoEntity
	// ReasonEnvelopeShape 模型回應缺少 source.output[0].content[0].text
	ReasonEnvelopeShape
	// ReasonPayloadParse 模型回應的文字不是合法 JSON
	ReasonPayloadParse
	// ReasonNullPayload 模型回應為 JSON null
	ReasonNullPayload
	// ReasonMissingField 找到食譜但缺少必要欄位
	ReasonMissingField
)

func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonNoBlocks:
		return "no_blocks"
	case ReasonNoEntity:
		return "no_entity"
	case ReasonEnvelopeShape:
		return "envelope_shape"
	case ReasonPayloadParse:
		return "payload_parse"
	case ReasonNullPayload:
		return "null_payload"
	case ReasonMissingField:
		return "missing_field"
	default:
		return "unknown"
	}
}

// Result 擷取結果，Recipe 為 nil 時 Reason 說明原因
type Result struct {
	Recipe *Recipe
	Reason Reason
	Detail string
}

func reject(reason Reason, detail string) Result {
	return Result{Reason: reason, Detail: detail}
}
