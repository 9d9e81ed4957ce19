package categorizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finpal/internal/core"
)

func ruleSet(t *testing.T, pairs ...[2]string) *core.RuleSet {
	t.Helper()
	rs := core.NewRuleSet()
	for _, p := range pairs {
		rs.AddCategory(p[0])
		if p[1] != "" {
			rs.AddKeyword(p[0], p[1])
		}
	}
	return rs
}

func TestMatchSingleCategory(t *testing.T) {
	m := Compile(ruleSet(t, [2]string{"Food", "coffee shop"}))

	cases := map[string]string{
		"Coffee Shop":          "Food",
		"  COFFEE SHOP  ":      "Food",
		"coffee shop":          "Food",
		"Coffee Shop Downtown": core.Uncategorized, // exact match only
		"coffee":               core.Uncategorized,
		"":                     core.Uncategorized,
	}
	for details, want := range cases {
		assert.Equal(t, want, m.Match(details), "details %q", details)
	}
}

func TestMatchFirstCategoryWins(t *testing.T) {
	rs := ruleSet(t,
		[2]string{"Dining", "local diner"},
		[2]string{"Food", "Local Diner"},
	)
	assert.Equal(t, "Dining", Compile(rs).Match("LOCAL DINER"))

	rs = ruleSet(t,
		[2]string{"Food", "local diner"},
		[2]string{"Dining", "local diner"},
	)
	assert.Equal(t, "Food", Compile(rs).Match("local diner"))
}

func TestUncategorizedKeywordsIgnored(t *testing.T) {
	rs := core.NewRuleSet()
	rs.AddKeyword(core.Uncategorized, "rent")
	rs.AddCategory("Empty")

	assert.Equal(t, core.Uncategorized, Compile(rs).Match("rent"))
}

func TestCategorizeAssignsInPlace(t *testing.T) {
	rs := ruleSet(t, [2]string{"Food", "coffee shop"}, [2]string{"Salary", "employer"})
	txs := []core.Transaction{
		{Details: "Coffee Shop", Flow: core.Debit},
		{Details: "Employer", Flow: core.Credit},
		{Details: "Bookstore", Flow: core.Debit, Category: "stale"},
	}

	matched := Categorize(rs, txs)

	assert.Equal(t, 2, matched)
	assert.Equal(t, "Food", txs[0].Category)
	assert.Equal(t, "Salary", txs[1].Category)
	assert.Equal(t, core.Uncategorized, txs[2].Category)
}

func TestCompileIsSnapshot(t *testing.T) {
	rs := ruleSet(t, [2]string{"Food", ""})
	m := Compile(rs)
	rs.AddKeyword("Food", "bakery")

	assert.Equal(t, core.Uncategorized, m.Match("bakery"))
	assert.Equal(t, "Food", Compile(rs).Match("bakery"))
}
