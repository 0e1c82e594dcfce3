package control

import (
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Gain    float64 `json:"gain"`
	Enabled bool    `json:"enabled,omitempty"`
	Count   uint64  `json:"count"`
	Hidden  int
	Skip    int `json:"-"`
}

func TestNewGraphqlType(t *testing.T) {
	obj, input := NewGraphqlType("Sample", sample{})

	fields := obj.Fields()
	require.Len(t, fields, 3)
	assert.Equal(t, graphql.Float, fields["gain"].Type)
	assert.Equal(t, graphql.Boolean, fields["enabled"].Type)
	assert.Equal(t, graphql.Int, fields["count"].Type)
	assert.Equal(t, "inputSample", input.Name())
	assert.Len(t, input.Fields(), 3)
}

func TestApplyArgs(t *testing.T) {
	s := sample{Gain: 1}
	require.NoError(t, applyArgs(&s, map[string]interface{}{"gain": 2.5, "count": 7, "enabled": true}))
	assert.Equal(t, sample{Gain: 2.5, Count: 7, Enabled: true}, s)

	assert.Error(t, applyArgs(&s, map[string]interface{}{"nope": 1}))
	assert.Error(t, applyArgs(&s, map[string]interface{}{"gain": true}))
}
