package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want Money
		ok   bool
	}{
		{"199900", 19990000, true},
		{"199900.5", 19990050, true},
		{"199900.55", 19990055, true},
		{" 0.01 ", 1, true},
		{"0", 0, true},
		{"", 0, false},
		{"-1", 0, false},
		{"+1", 0, false},
		{"1.", 0, false},
		{".5", 0, false},
		{"1.234", 0, false},
		{"1e3", 0, false},
		{"12a", 0, false},
		{"1,50", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseMoney(tt.in)
		if !tt.ok {
			assert.ErrorIs(t, err, ErrInvalidMoney, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		P Money `json:"precio"`
	}{P: 19990000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"precio":199900.00}`, string(b))

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":1250.5,"b":"89900"}`), &in))
	assert.Equal(t, Money(125050), in.A)
	assert.Equal(t, Money(8990000), in.B)

	assert.Error(t, json.Unmarshal([]byte(`{"a":-3}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`{"a":"abc"}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`{"a":null}`), &in))
}

func TestMoneyFormatCOP(t *testing.T) {
	assert.Equal(t, "199.900", Pesos(199900).FormatCOP())
	assert.Equal(t, "1.250,50", Money(125050).FormatCOP())
	assert.Equal(t, "0", Money(0).FormatCOP())
	assert.Equal(t, "999", Pesos(999).FormatCOP())
	assert.Equal(t, "1.000.000", Pesos(1000000).FormatCOP())
	assert.Equal(t, "0,05", Money(5).FormatCOP())
}

func TestMoneyArithmetic(t *testing.T) {
	assert.Equal(t, Pesos(300), Pesos(100).Mul(3))
	assert.Equal(t, Money(150), Money(100).Add(50))
	assert.Equal(t, "-1.05", Money(-105).String())
}
