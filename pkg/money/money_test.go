package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalAcceptedShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "number", input: `15000`, want: "15000.00"},
		{name: "fractional number", input: `12.5`, want: "12.50"},
		{name: "string", input: `"15000.00"`, want: "15000.00"},
		{name: "padded string", input: `" 42 "`, want: "42.00"},
		{name: "legacy wrapper", input: `{"$numberDecimal":"15000"}`, want: "15000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m Money
			require.NoError(t, json.Unmarshal([]byte(tt.input), &m))
			assert.Equal(t, tt.want, m.String())
		})
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	for _, input := range []string{`"abc"`, `{"amount":"1"}`, `true`, `{"$numberDecimal":"x"}`} {
		var m Money
		err := json.Unmarshal([]byte(input), &m)
		assert.ErrorIs(t, err, ErrInvalidAmount, input)
	}
}

func TestMarshalEmitsFixedString(t *testing.T) {
	payload := struct {
		Amount Money  `json:"amount"`
		Cost   *Money `json:"cost,omitempty"`
	}{Amount: MustParse("15000")}

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"15000.00"}`, string(out))
}

func TestNullLeavesZero(t *testing.T) {
	var m Money
	require.NoError(t, json.Unmarshal([]byte(`null`), &m))
	assert.True(t, m.IsZero())
}

func TestComparisons(t *testing.T) {
	assert.True(t, MustParse("-1").IsNegative())
	assert.True(t, FromInt(3).IsPositive())
	assert.True(t, MustParse("1.50").Equal(MustParse("1.5")))
	assert.Equal(t, "4.00", MustParse("1.5").Add(MustParse("2.5")).String())
}
