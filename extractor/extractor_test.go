package extractor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_DirectJSON(t *testing.T) {
	raw := `{"test_cases":[{"id":"TC1","title":"Login works","steps":["Navigate to /", "Click login using selector: #login-button"]}]}`

	cases, strategy := Extract(raw)
	assert.Equal(t, StrategyDirect, strategy)
	require.Len(t, cases, 1)
	assert.Equal(t, "TC1", cases[0].ID)
	require.Len(t, cases[0].Steps, 2)
	assert.Equal(t, "#login-button", cases[0].Steps[1].Selector)
	assert.Empty(t, cases[0].Steps[0].Selector)
}

func TestExtract_FencedBlock(t *testing.T) {
	raw := "Here are the test cases I found:\n\n```json\n" +
		`{"test_cases":[{"id":"TC1","title":"Add to cart","steps":["Navigate to the inventory page","Click add to cart using selector: #add-to-cart"]}]}` +
		"\n```\n\nLet me know if you need more."

	cases, strategy := Extract(raw)
	assert.Equal(t, StrategyFenced, strategy)
	require.Len(t, cases, 1)
	assert.Equal(t, "Add to cart", cases[0].Title)
	require.Len(t, cases[0].Steps, 2)
	assert.Equal(t, "#add-to-cart", cases[0].Steps[1].Selector)
}

func TestExtract_FencedBlockWithoutLanguageTag(t *testing.T) {
	raw := "```\n" +
		`{"test_cases":[{"id":"TC1","title":"t","steps":["Click x using selector: #a"]}]}` +
		"\n```"

	cases, strategy := Extract(raw)
	assert.Equal(t, StrategyFenced, strategy)
	require.Len(t, cases, 1)
}

func TestExtract_SkipsUnparseableFenceForLaterOne(t *testing.T) {
	raw := "```python\nprint('hello')\n```\nand now the data\n```json\n" +
		`{"test_cases":[{"id":"TC1","title":"t","steps":["step one"]}]}` +
		"\n```"

	cases, strategy := Extract(raw)
	assert.Equal(t, StrategyFenced, strategy)
	require.Len(t, cases, 1)
	assert.Equal(t, "TC1", cases[0].ID)
}

func TestExtract_RepairedTruncatedTail(t *testing.T) {
	// Reply cut off mid-string inside the second case's steps array.
	raw := `Sure! {"test_cases":[{"id":"TC1","title":"Add item","steps":["Open the page","Click add using selector: #add"]},{"id":"TC2","title":"Checkout","steps":["Click c`

	cases, strategy := Extract(raw)
	assert.Equal(t, StrategyRepaired, strategy)
	require.NotEmpty(t, cases)

	// The intact leading case always survives.
	assert.Equal(t, "TC1", cases[0].ID)
	require.Len(t, cases[0].Steps, 2)
	assert.Equal(t, "#add", cases[0].Steps[1].Selector)

	// The truncated case is either recovered or dropped, never fatal.
	if len(cases) > 1 {
		assert.Equal(t, "TC2", cases[1].ID)
		assert.NotEmpty(t, cases[1].Steps)
	}
}

func TestExtract_RepairedTruncatedAfterKey(t *testing.T) {
	raw := `{"test_cases":[{"id":"TC1","title":"t","steps":["a"]},{"id":"TC2","title":"u","steps":`

	cases, strategy := Extract(raw)
	assert.Equal(t, StrategyRepaired, strategy)
	require.Len(t, cases, 1)
	assert.Equal(t, "TC1", cases[0].ID)
}

func TestExtract_RepairedWithRawNewlines(t *testing.T) {
	raw := "noise before {\"test_cases\":[{\"id\":\"TC1\",\n\"title\":\"multi\nline title\",\"steps\":[\"do the\nthing\"]}]}"

	cases, strategy := Extract(raw)
	assert.Equal(t, StrategyRepaired, strategy)
	require.Len(t, cases, 1)
	assert.Equal(t, "multi line title", cases[0].Title)
}

func TestExtract_FallbackWrapsGarbage(t *testing.T) {
	raw := "I could not complete the exploration because the page kept timing out."

	cases, strategy := Extract(raw)
	assert.Equal(t, StrategyFallback, strategy)
	require.Len(t, cases, 1)
	assert.Equal(t, "ERR", cases[0].ID)
	require.Len(t, cases[0].Steps, 1)
	assert.Contains(t, cases[0].Steps[0].ActionText, "timing out")
}

func TestExtract_FallbackTruncatesLongReply(t *testing.T) {
	raw := strings.Repeat("x", 2000)

	cases, strategy := Extract(raw)
	assert.Equal(t, StrategyFallback, strategy)
	assert.Len(t, cases[0].Steps[0].ActionText, rawSampleLimit)
}

func TestExtract_FallbackOnEmptyReply(t *testing.T) {
	cases, strategy := Extract("")
	assert.Equal(t, StrategyFallback, strategy)
	require.Len(t, cases, 1)
	assert.NotEmpty(t, cases[0].Steps[0].ActionText)
}

func TestExtract_ValidationDropsBrokenCases(t *testing.T) {
	raw := `{"test_cases":[
		{"id":"","title":"no id","steps":["a"]},
		{"id":"TC2","title":"","steps":["a"]},
		{"id":"TC3","title":"no steps","steps":[]},
		{"id":"TC4","title":"empty steps","steps":["","  "]},
		{"id":"TC5","title":"survivor","steps":["Click x using selector: #x"]}
	]}`

	cases, strategy := Extract(raw)
	assert.Equal(t, StrategyDirect, strategy)
	require.Len(t, cases, 1)
	assert.Equal(t, "TC5", cases[0].ID)
}

func TestExtract_AllCasesInvalidFallsThrough(t *testing.T) {
	raw := `{"test_cases":[{"id":"","title":"","steps":[]}]}`

	cases, strategy := Extract(raw)
	assert.Equal(t, StrategyFallback, strategy)
	assert.Equal(t, "ERR", cases[0].ID)
}

func TestExtract_CoercesNumericIDs(t *testing.T) {
	raw := `{"test_cases":[{"id":1,"title":"numeric id","steps":["step"]}]}`

	cases, _ := Extract(raw)
	require.Len(t, cases, 1)
	assert.Equal(t, "1", cases[0].ID)
}

func TestParseSelector(t *testing.T) {
	tests := []struct {
		name   string
		action string
		want   string
	}{
		{"plain", "Click the button using selector: #login-button", "#login-button"},
		{"trailing period", "Click the button using selector: #login-button.", "#login-button"},
		{"class selector keeps dots", "Click cart using selector: .shopping_cart_link", ".shopping_cart_link"},
		{"css selector wording", "Fill the field (CSS selector: input[name='q'])", "input[name='q']"},
		{"plural", "Use selectors: #a", "#a"},
		{"case insensitive", "click it (Selector: #b)", "#b"},
		{"functional pseudo class keeps parens", "Click row using selector: tr:nth-child(2)", "tr:nth-child(2)"},
		{"wrapping paren trimmed", "Click row (using selector: tr:nth-child(2))", "tr:nth-child(2)"},
		{"no selector", "Navigate to the checkout page", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSelector(tt.action))
		})
	}
}

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "closes mid string",
			in:   `{"a":["x`,
			want: `{"a":["x"]}`,
		},
		{
			name: "closes after comma",
			in:   `{"a":["x",`,
			want: `{"a":["x"]}`,
		},
		{
			name: "closes nested objects in order",
			in:   `{"a":[{"b":[1,2`,
			want: `{"a":[{"b":[1,2]}]}`,
		},
		{
			name: "null after dangling colon",
			in:   `{"a":`,
			want: `{"a":null}`,
		},
		{
			name: "strips inner trailing comma",
			in:   `{"a":[1,2,],"b":3}`,
			want: `{"a":[1,2],"b":3}`,
		},
		{
			name: "ignores braces inside strings",
			in:   `{"a":"text with } and ] inside`,
			want: `{"a":"text with } and ] inside"}`,
		},
		{
			name: "comma before closer inside string survives",
			in:   `{"a":"pause,  }","b":1`,
			want: `{"a":"pause,  }","b":1}`,
		},
		{
			name: "comma before bracket inside step text survives",
			in:   `{"steps":["Click items[0,  ]`,
			want: `{"steps":["Click items[0,  ]"]}`,
		},
		{
			name: "already complete",
			in:   `{"a":1}`,
			want: `{"a":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repairJSON(tt.in))
		})
	}
}
