package optional

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type patch struct {
	Name    Value[string]  `json:"name"`
	Address Value[*string] `json:"address"`
	InStock Value[Bool]    `json:"inStock"`
}

func TestValueDistinguishesAbsentNullAndSet(t *testing.T) {
	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"address":null,"name":"Portland Cement"}`), &p))

	assert.True(t, p.Name.HasValue())
	assert.Equal(t, "Portland Cement", p.Name.V)

	assert.True(t, p.Address.Set)
	assert.True(t, p.Address.Null)
	assert.False(t, p.Address.HasValue())

	assert.False(t, p.InStock.Set)
}

func TestValuePtr(t *testing.T) {
	assert.Nil(t, Clear[string]().Ptr())

	v := Of("Nairobi")
	require.NotNil(t, v.Ptr())
	assert.Equal(t, "Nairobi", *v.Ptr())
}

func TestBoolAcceptsLooseForms(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{`true`, true},
		{`false`, false},
		{`1`, true},
		{`0`, false},
		{`"1"`, true},
		{`"0"`, false},
		{`"true"`, true},
		{`"False"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var p patch
			require.NoError(t, json.Unmarshal([]byte(`{"inStock":`+tt.input+`}`), &p))
			assert.True(t, p.InStock.HasValue())
			assert.Equal(t, tt.want, bool(p.InStock.V))
		})
	}
}

func TestBoolRejectsGarbage(t *testing.T) {
	var p patch
	err := json.Unmarshal([]byte(`{"inStock":"maybe"}`), &p)
	assert.Error(t, err)
}

func TestBoolNullKeepsValue(t *testing.T) {
	var flags struct {
		CreateAccount Bool `json:"createAccount"`
		Featured      Bool `json:"featured"`
	}
	flags.Featured = true

	require.NoError(t, json.Unmarshal([]byte(`{"createAccount":null,"featured":null}`), &flags))
	assert.False(t, bool(flags.CreateAccount))
	assert.True(t, bool(flags.Featured))
}
