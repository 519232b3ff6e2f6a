package suite

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuite_Validate(t *testing.T) {
	tests := []struct {
		name    string
		suite   *Suite
		wantErr error
	}{
		{
			name:  "valid",
			suite: sampleSuite("checkout"),
		},
		{
			name:    "missing name",
			suite:   &Suite{Config: SuiteConfig{TargetURL: "https://shop.example.com"}},
			wantErr: ErrInvalidSuiteName,
		},
		{
			name:    "missing target url",
			suite:   &Suite{Name: "checkout"},
			wantErr: ErrInvalidTargetURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.suite.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTestCase_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tc      TestCase
		wantErr error
	}{
		{
			name: "valid",
			tc:   TestCase{ID: "TC1", Title: "Add to cart", Steps: []Step{{ActionText: "Click add"}}},
		},
		{
			name:    "missing id",
			tc:      TestCase{Title: "Add to cart", Steps: []Step{{ActionText: "Click add"}}},
			wantErr: ErrInvalidCaseID,
		},
		{
			name:    "missing title",
			tc:      TestCase{ID: "TC1", Steps: []Step{{ActionText: "Click add"}}},
			wantErr: ErrInvalidCaseTitle,
		},
		{
			name:    "no steps",
			tc:      TestCase{ID: "TC1", Title: "Add to cart"},
			wantErr: ErrNoSteps,
		},
		{
			name:    "only empty steps",
			tc:      TestCase{ID: "TC1", Title: "Add to cart", Steps: []Step{{ActionText: ""}}},
			wantErr: ErrNoSteps,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tc.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCases_ValueAndScan(t *testing.T) {
	cases := sampleCases()

	value, err := cases.Value()
	require.NoError(t, err)

	var decoded Cases
	require.NoError(t, decoded.Scan(value))
	require.Len(t, decoded, 2)
	assert.Equal(t, "TC1", decoded[0].ID)
	assert.Equal(t, "#add-to-cart", decoded[0].Steps[1].Selector)
}

func TestCases_ScanNil(t *testing.T) {
	var decoded Cases
	require.NoError(t, decoded.Scan(nil))
	assert.NotNil(t, decoded)
	assert.Empty(t, decoded)
}

func TestCases_Find(t *testing.T) {
	cases := sampleCases()

	tc, ok := cases.Find("TC2")
	require.True(t, ok)
	assert.Equal(t, "Open the cart", tc.Title)

	_, ok = cases.Find("TC9")
	assert.False(t, ok)
}

func TestScripts_NilValueEncodesEmptyObject(t *testing.T) {
	var scripts Scripts

	value, err := scripts.Value()
	require.NoError(t, err)
	assert.JSONEq(t, "{}", string(value.([]byte)))
}

func TestSuiteConfig_NeverCarriesSecretField(t *testing.T) {
	cfg := SuiteConfig{TargetURL: "https://shop.example.com", Username: "standard_user"}

	data, err := json.Marshal(cfg)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "password")
	assert.NotContains(t, raw, "secret")
}
