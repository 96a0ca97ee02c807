package product

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeVariations(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []Variation
		wantErr string
	}{
		{name: "empty", raw: "", want: []Variation{}},
		{name: "whitespace", raw: "  \n\t", want: []Variation{}},
		{name: "null", raw: "null", want: []Variation{}},
		{name: "empty arrays", raw: `{"categories":[],"values":[]}`, want: []Variation{}},
		{
			name: "order preserved",
			raw:  `{"categories":["size","color","size"],"values":["S","Green","XL"]}`,
			want: []Variation{
				{Category: VariationSize, Value: "S"},
				{Category: VariationColor, Value: "Green"},
				{Category: VariationSize, Value: "XL"},
			},
		},
		{
			name: "unknown keys skipped",
			raw:  `{"csrf":"x","categories":["color"],"values":["Red"],"extra":{"a":[1,2]}}`,
			want: []Variation{{Category: VariationColor, Value: "Red"}},
		},
		{
			name: "repeated key keeps last",
			raw:  `{"categories":["color"],"categories":["size"],"values":["M"]}`,
			want: []Variation{{Category: VariationSize, Value: "M"}},
		},
		{name: "repeated key reset by null", raw: `{"categories":["color"],"values":["Red"],"categories":null,"values":null}`, want: []Variation{}},
		{
			name: "repeated values not concatenated",
			raw:  `{"categories":["color"],"values":["Red"],"values":["Blue"]}`,
			want: []Variation{{Category: VariationColor, Value: "Blue"}},
		},
		{
			name: "unicode value",
			raw:  `{"categories":["color"],"values":["Красный"]}`,
			want: []Variation{{Category: VariationColor, Value: "Красный"}},
		},
		{name: "invalid json", raw: `{"categories":[`, wantErr: "Invalid variations data."},
		{name: "top-level array", raw: `["color"]`, wantErr: "Invalid variations data."},
		{name: "non-string entry", raw: `{"categories":[1],"values":["a"]}`, wantErr: "Invalid variations data."},
		{name: "length mismatch", raw: `{"categories":["color","size"],"values":["Red"]}`, wantErr: "Got 2 variation categories but 1 values."},
		{name: "invalid category", raw: `{"categories":["weight"],"values":["1kg"]}`, wantErr: "weight is not a valid variation category."},
		{name: "category is case sensitive", raw: `{"categories":["Color"],"values":["Red"]}`, wantErr: "Color is not a valid variation category."},
		{
			name:    "first failure wins",
			raw:     `{"categories":["color","bogus","weight"],"values":["Red","x","y"]}`,
			wantErr: "bogus is not a valid variation category.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeVariations(tt.raw)
			if tt.wantErr != "" {
				var vErr *VariationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.wantErr, vErr.Message)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeVariations_ValueLengthBoundary(t *testing.T) {
	payload := func(value string) string {
		return fmt.Sprintf(`{"categories":["color"],"values":[%q]}`, value)
	}

	got, err := DecodeVariations(payload(strings.Repeat("a", MaxVariationValueLen)))
	require.NoError(t, err)
	require.Len(t, got, 1)

	got, err = DecodeVariations(payload(strings.Repeat("ж", MaxVariationValueLen)))
	require.NoError(t, err, "length is counted in characters, not bytes")
	require.Len(t, got, 1)

	long := strings.Repeat("a", MaxVariationValueLen+1)
	_, err = DecodeVariations(payload(long))
	var vErr *VariationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, 0, vErr.Index)
	assert.Equal(t, long+" is too long for variation value.", vErr.Message)
}

func TestDecodeVariations_PayloadLimit(t *testing.T) {
	raw := `{"categories":[],"values":[],"pad":"` + strings.Repeat("x", MaxVariationPayloadLen) + `"}`

	_, err := DecodeVariations(raw)
	var vErr *VariationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, -1, vErr.Index)
	assert.Contains(t, vErr.Message, "at most 5000 characters")
}

func TestDecodeVariations_RoundTripsValidPairs(t *testing.T) {
	categories := []VariationCategory{VariationColor, VariationSize}
	for n := range 20 {
		cats := make([]string, n)
		vals := make([]string, n)
		want := make([]Variation, n)
		for i := range n {
			c := categories[(i*7+n)%2]
			v := strings.Repeat("v", i%MaxVariationValueLen) + fmt.Sprint(i)
			cats[i] = fmt.Sprintf("%q", c)
			vals[i] = fmt.Sprintf("%q", v)
			want[i] = Variation{Category: c, Value: v}
		}
		raw := fmt.Sprintf(`{"categories":[%s],"values":[%s]}`, strings.Join(cats, ","), strings.Join(vals, ","))

		got, err := DecodeVariations(raw)
		require.NoError(t, err, "n=%d", n)
		assert.Equal(t, want, got, "n=%d", n)
	}
}
