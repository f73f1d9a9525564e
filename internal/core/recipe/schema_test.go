package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRecipe(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  bool
	}{
		{"scalar type", map[string]interface{}{"@type": "Recipe"}, true},
		{"type list", map[string]interface{}{"@type": []interface{}{"NewsArticle", "Recipe"}}, true},
		{"other type", map[string]interface{}{"@type": "WebPage"}, false},
		{"case sensitive", map[string]interface{}{"@type": "recipe"}, false},
		{"no type", map[string]interface{}{"name": "Pie"}, false},
		{"not an object", "Recipe", false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRecipe(tt.input))
		})
	}
}

func TestFindRecipe_Graph(t *testing.T) {
	graph := map[string]interface{}{
		"@context": "https://schema.org",
		"@graph": []interface{}{
			map[string]interface{}{"@type": "WebSite", "name": "Site"},
			map[string]interface{}{"@type": "Recipe", "name": "Pie"},
		},
	}

	entity, ok := FindRecipe([]interface{}{graph})
	require.True(t, ok)
	assert.Equal(t, "Pie", entity["name"])
}

func TestFindRecipe_TwoLevelsDeepNotFound(t *testing.T) {
	nested := map[string]interface{}{
		"@graph": []interface{}{
			map[string]interface{}{
				"@type": "WebPage",
				"@graph": []interface{}{
					map[string]interface{}{"@type": "Recipe", "name": "Hidden"},
				},
			},
		},
	}

	_, ok := FindRecipe([]interface{}{nested})
	assert.False(t, ok)
	assert.False(t, HasRecipe([]interface{}{nested}))
}

func TestFindRecipe_FirstMatchWins(t *testing.T) {
	values := []interface{}{
		map[string]interface{}{"@type": "Organization"},
		map[string]interface{}{"@type": "Recipe", "name": "First"},
		map[string]interface{}{"@type": "Recipe", "name": "Second"},
	}

	entity, ok := FindRecipe(values)
	require.True(t, ok)
	assert.Equal(t, "First", entity["name"])
}

func TestFindRecipe_Empty(t *testing.T) {
	_, ok := FindRecipe(nil)
	assert.False(t, ok)
	assert.False(t, HasRecipe([]interface{}{"text", 1.0, nil}))
}
