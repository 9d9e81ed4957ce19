package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderedRuleSet(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{name: "keeps stored position of uncategorized", names: []string{"Food", Uncategorized, "Travel"}, want: []string{"Food", Uncategorized, "Travel"}},
		{name: "adds missing uncategorized first", names: []string{"Food"}, want: []string{Uncategorized, "Food"}},
		{name: "empty", want: []string{Uncategorized}},
		{name: "duplicates collapse", names: []string{"Food", "Food"}, want: []string{Uncategorized, "Food"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewOrderedRuleSet(tt.names...).Names())
		})
	}
}

func TestNewRuleSetHasUncategorized(t *testing.T) {
	rs := NewRuleSet()
	assert.Equal(t, []string{Uncategorized}, rs.Names())
	assert.Empty(t, rs.Keywords(Uncategorized))

	data, err := json.Marshal(rs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Uncategorized": []}`, string(data))
}

func TestRuleSetAddCategory(t *testing.T) {
	rs := NewRuleSet()
	assert.True(t, rs.AddCategory("Food"))
	assert.False(t, rs.AddCategory("Food"))
	assert.False(t, rs.AddCategory("  Food "))
	assert.False(t, rs.AddCategory("   "))
	assert.True(t, rs.AddCategory("Rent"))
	assert.Equal(t, []string{Uncategorized, "Food", "Rent"}, rs.Names())
}

func TestRuleSetAddKeywordIdempotent(t *testing.T) {
	rs := NewRuleSet()
	rs.AddCategory("Food")

	assert.True(t, rs.AddKeyword("Food", " Coffee Shop "))
	assert.False(t, rs.AddKeyword("Food", "Coffee Shop"))
	assert.False(t, rs.AddKeyword("Food", "  "))
	assert.False(t, rs.AddKeyword("Missing", "x"))
	assert.Equal(t, []string{"Coffee Shop"}, rs.Keywords("Food"))
}

func TestRuleSetJSONPreservesOrder(t *testing.T) {
	in := `{"Uncategorized":[],"Zeta":["z1","z2"],"Alpha":["a"],"Mid":[]}`
	var rs RuleSet
	require.NoError(t, json.Unmarshal([]byte(in), &rs))
	assert.Equal(t, []string{Uncategorized, "Zeta", "Alpha", "Mid"}, rs.Names())

	out, err := json.Marshal(&rs)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))

	var again RuleSet
	require.NoError(t, json.Unmarshal(out, &again))
	assert.True(t, rs.Equal(&again))
}

func TestRuleSetUnmarshalNormalizes(t *testing.T) {
	var rs RuleSet
	require.NoError(t, json.Unmarshal([]byte(`{"Food":["a","a"," b ",""],"Rent":null}`), &rs))
	assert.Equal(t, []string{Uncategorized, "Food", "Rent"}, rs.Names())
	assert.Equal(t, []string{"a", "b"}, rs.Keywords("Food"))
	assert.Empty(t, rs.Keywords("Rent"))
}

func TestRuleSetUnmarshalRejectsMalformed(t *testing.T) {
	for _, bad := range []string{`[]`, `{"Food": "coffee"}`, `{"Food": [1]}`, `{"Food": [`, `"x"`, `{"  ": []}`} {
		var rs RuleSet
		assert.Error(t, json.Unmarshal([]byte(bad), &rs), "input %s", bad)
	}
}

func TestRuleSetCloneIsDeep(t *testing.T) {
	rs := NewRuleSet()
	rs.AddCategory("Food")
	rs.AddKeyword("Food", "a")

	c := rs.Clone()
	c.AddKeyword("Food", "b")
	c.AddCategory("Rent")

	assert.Equal(t, []string{"a"}, rs.Keywords("Food"))
	assert.False(t, rs.Has("Rent"))
	assert.False(t, rs.Equal(c))
}
