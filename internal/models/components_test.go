package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseComponentIDsTrimsAndSplits(t *testing.T) {
	ids := ParseComponentIDs("a, b,c")
	assert.Equal(t, []string{"a", "b", "c"}, ids.IDs())
	assert.Equal(t, 3, ids.Len())
	assert.Equal(t, "a, b,c", ids.String())

	assert.True(t, ParseComponentIDs("").Empty())
	assert.Equal(t, []string{"a", "b"}, ParseComponentIDs(" a ,, b ,").IDs())
}

func TestComponentIDsJSONKeepsInputForm(t *testing.T) {
	data, err := json.Marshal(ParseComponentIDs("1,2,3"))
	require.NoError(t, err)
	assert.JSONEq(t, `"1,2,3"`, string(data))

	data, err = json.Marshal(ComponentIDList("la", "le"))
	require.NoError(t, err)
	assert.JSONEq(t, `["la","le"]`, string(data))

	data, err = json.Marshal(ComponentIDs{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var ids ComponentIDs
	require.NoError(t, json.Unmarshal([]byte(`["x", " y "]`), &ids))
	assert.Equal(t, []string{"x", "y"}, ids.IDs())

	require.NoError(t, json.Unmarshal([]byte(`"x, y"`), &ids))
	assert.Equal(t, []string{"x", "y"}, ids.IDs())

	assert.Error(t, json.Unmarshal([]byte(`12`), &ids))
}

func TestComponentIDsYAML(t *testing.T) {
	var cfg struct {
		List   ComponentIDs `yaml:"list"`
		Scalar ComponentIDs `yaml:"scalar"`
	}
	doc := "list: [a, b]\nscalar: \"c, d\"\n"
	require.NoError(t, yaml.Unmarshal([]byte(doc), &cfg))
	assert.Equal(t, []string{"a", "b"}, cfg.List.IDs())
	assert.Equal(t, []string{"c", "d"}, cfg.Scalar.IDs())
}
