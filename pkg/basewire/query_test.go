package basewire_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basewire/basewire-go/pkg/basewire"
)

func TestFilter_Operators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filter   basewire.Filter
		expected string
	}{
		{"equal", basewire.F("status", basewire.OpEqual, "active"), "status = 'active'"},
		{"not equal", basewire.F("status", basewire.OpNotEqual, "active"), "status != 'active'"},
		{"greater", basewire.F("views", basewire.OpGreater, 10), "views > 10"},
		{"greater or equal", basewire.F("views", basewire.OpGreaterOrEqual, 10), "views >= 10"},
		{"less", basewire.F("views", basewire.OpLess, 10), "views < 10"},
		{"less or equal", basewire.F("views", basewire.OpLessOrEqual, 10), "views <= 10"},
		{"like", basewire.F("title", basewire.OpLike, "go"), "title ~ 'go'"},
		{"not like", basewire.F("title", basewire.OpNotLike, "go"), "title !~ 'go'"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, testCase.filter.String())
		})
	}
}

func TestFilter_ValueRendering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"string", "hello", "f = 'hello'"},
		{"bool true", true, "f = true"},
		{"bool false", false, "f = false"},
		{"int", 42, "f = 42"},
		{"negative int", -7, "f = -7"},
		{"int64", int64(9000000000), "f = 9000000000"},
		{"float", 3.5, "f = 3.5"},
		{"nil", nil, "f = null"},
		{"quote escaped", "it's", `f = 'it\'s'`},
		{"backslash escaped", `a\b`, `f = 'a\\b'`},
		{"quote and backslash", `\'`, `f = '\\\''`},
		{
			"time",
			time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
			"f = '2026-08-25 10:30:00.000Z'",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.expected, basewire.F("f", basewire.OpEqual, testCase.value).String())
		})
	}
}

func TestFilter_Composition(t *testing.T) {
	t.Parallel()

	filter := basewire.And(
		basewire.F("status", basewire.OpEqual, "published"),
		basewire.Group(basewire.Or(
			basewire.F("views", basewire.OpGreater, 100),
			basewire.F("featured", basewire.OpEqual, true),
		)),
	)

	assert.Equal(t, "status = 'published' && (views > 100 || featured = true)", filter.String())
}

func TestFilter_Deterministic(t *testing.T) {
	t.Parallel()

	filter := basewire.Or(
		basewire.F("b", basewire.OpEqual, 2),
		basewire.F("a", basewire.OpEqual, 1),
		basewire.F("c", basewire.OpEqual, 3),
	)

	// Operand order is preserved, never re-sorted.
	first := filter.String()
	for range 10 {
		assert.Equal(t, first, filter.String())
	}

	assert.Equal(t, "b = 2 || a = 1 || c = 3", first)
}

func TestFilter_SingleOperandCollapses(t *testing.T) {
	t.Parallel()

	single := basewire.F("a", basewire.OpEqual, 1)
	assert.Equal(t, "a = 1", basewire.And(single).String())
	assert.Equal(t, "a = 1", basewire.Or(single).String())
}

func TestFilter_Raw(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "created >= @monthStart", basewire.Raw("created >= @monthStart").String())
}

func TestQuoteUnquoteRoundTrip(t *testing.T) {
	t.Parallel()

	values := []string{
		"plain",
		"it's",
		`back\slash`,
		`both '\ mixed`,
		"",
		`\\''\\`,
		"unicode: héllo 世界",
	}

	for _, value := range values {
		rendered := basewire.F("f", basewire.OpEqual, value).String()

		// Strip the "f = " prefix to recover the quoted literal.
		quoted := rendered[len("f = "):]

		recovered, err := basewire.UnquoteFilterString(quoted)
		require.NoError(t, err, "value %q", value)
		assert.Equal(t, value, recovered)
	}
}

func TestUnquoteFilterString_Invalid(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "'", "no quotes", "'unescaped ' quote'", `'dangling\'`} {
		_, err := basewire.UnquoteFilterString(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, basewire.IsValidation(err))
	}
}

func TestBindFilter(t *testing.T) {
	t.Parallel()

	bound := basewire.BindFilter("title = {:title} && views > {:min}", map[string]any{
		"title": "it's here",
		"min":   5,
	})

	assert.Equal(t, `title = 'it\'s here' && views > 5`, bound)
}

func TestBindFilter_UnmatchedPlaceholder(t *testing.T) {
	t.Parallel()

	bound := basewire.BindFilter("a = {:missing}", map[string]any{"other": 1})
	assert.Equal(t, "a = {:missing}", bound)
}

func TestListOptions_ToValues(t *testing.T) {
	t.Parallel()

	opts := basewire.NewListOptions().
		WithPage(2).
		WithPerPage(50).
		WithSort("-created,id").
		WithFilterString("status = 'active'").
		WithExpand("author").
		WithFields("id,title").
		WithSkipTotal().
		WithParam("custom", "x")

	values, err := opts.ToValues()
	require.NoError(t, err)

	assert.Equal(t, "2", values.Get("page"))
	assert.Equal(t, "50", values.Get("perPage"))
	assert.Equal(t, "-created,id", values.Get("sort"))
	assert.Equal(t, "status = 'active'", values.Get("filter"))
	assert.Equal(t, "author", values.Get("expand"))
	assert.Equal(t, "id,title", values.Get("fields"))
	assert.Equal(t, "1", values.Get("skipTotal"))
	assert.Equal(t, "x", values.Get("custom"))
}

func TestListOptions_ToValues_ZeroOmitted(t *testing.T) {
	t.Parallel()

	values, err := basewire.NewListOptions().ToValues()
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestListOptions_ToValues_NegativePaging(t *testing.T) {
	t.Parallel()

	for _, opts := range []*basewire.ListOptions{
		{Page: -1},
		{PerPage: -5},
		{Page: -2, PerPage: -2},
	} {
		_, err := opts.ToValues()
		require.Error(t, err)
		assert.True(t, basewire.IsValidation(err))
	}
}

func TestListOptions_ToValues_Nil(t *testing.T) {
	t.Parallel()

	var opts *basewire.ListOptions

	values, err := opts.ToValues()
	require.NoError(t, err)
	assert.Empty(t, values)
}
