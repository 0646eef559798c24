package fake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelector(t *testing.T) {
	got := parseSelector(`input[type="email"], button.login-btn#go, [data-testid*='login']`)

	assert.Equal(t, []simpleSelector{
		{tag: "input", attrs: []attrCond{{name: "type", op: "=", value: "email"}}},
		{tag: "button", id: "go", classes: []string{"login-btn"}},
		{attrs: []attrCond{{name: "data-testid", op: "*=", value: "login"}}},
	}, got)
}

func TestSimpleSelector_Matches(t *testing.T) {
	el := &Element{Tag: "a", Attrs: map[string]string{
		"href":  "/auth/login",
		"class": "nav signin-btn",
	}}

	cases := []struct {
		selector string
		want     bool
	}{
		{`a[href*="login"]`, true},
		{`a[href^="/auth"]`, true},
		{`a[href$="login"]`, true},
		{`a[href="/login"]`, false},
		{`.signin-btn`, true},
		{`.signin`, false},
		{`button, a.nav`, true},
		{`[data-testid]`, false},
		{`*`, true},
	}
	for _, tc := range cases {
		matched := false
		for _, s := range parseSelector(tc.selector) {
			if s.matches(el) {
				matched = true
			}
		}
		assert.Equal(t, tc.want, matched, tc.selector)
	}
}

func TestNodeID_StableAcrossLookups(t *testing.T) {
	a := Input("type", "password", "name", "pw")
	b := Input("type", "password", "name", "pw2")
	page := NewPage(a, b)
	ctx := context.Background()

	first, err := page.FindOne(ctx, `input[type="password"]`)
	require.NoError(t, err)
	all, err := page.FindAll(ctx, `input[type="password"]`)
	require.NoError(t, err)
	require.Len(t, all, 2)

	idFirst, _ := first.NodeID(ctx)
	idA, _ := all[0].NodeID(ctx)
	idB, _ := all[1].NodeID(ctx)
	assert.Equal(t, idFirst, idA)
	assert.NotEqual(t, idA, idB)
}
