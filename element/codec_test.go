package element

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/oasderef/oaserrors"
)

func TestDecodePreservesOrder(t *testing.T) {
	src := []byte(`
openapi: 3.1.0
info:
  title: Pets
  version: "1"
paths: {}
components:
  schemas:
    Zebra: {type: string}
    Apple: {type: integer}
`)
	root, err := Decode(src, "pets.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"openapi", "info", "paths", "components"}, root.Keys())
	assert.Equal(t, []string{"Zebra", "Apple"}, root.Get("components").Get("schemas").Keys())

	version, ok := root.Get("info").GetString("version")
	require.True(t, ok)
	assert.Equal(t, "1", version)
}

func TestDecodeJSON(t *testing.T) {
	root, err := Decode([]byte(`{"b": 1, "a": [true, null, 2.5]}`), "doc.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, root.Keys())
	assert.Equal(t, int64(1), root.Get("b").Scalar())
	assert.Equal(t, TypeNull, root.Get("a").Index(1).Type)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte("a: [1, 2"), "bad.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, oaserrors.ErrParse))

	_, err = Decode(nil, "empty.yaml")
	require.Error(t, err)
	var perr *oaserrors.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "empty.yaml", perr.Path)
}

func TestMarshalJSONOrdered(t *testing.T) {
	obj := NewObject(KindGeneric)
	obj.Set("z", NewString("last<"))
	obj.Set("a", NewArray(KindGeneric, NewInt(1), NewFloat(1.5), NewBool(false), NewNull()))

	data, err := MarshalJSON(obj)
	require.NoError(t, err)
	assert.JSONEq(t, `{"z":"last<","a":[1,1.5,false,null]}`, string(data))
	assert.Less(t, indexOf(string(data), `"z"`), indexOf(string(data), `"a"`))

	indented, err := MarshalJSONIndent(obj, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(indented), "\n  \"z\"")
}

func TestMarshalYAMLRoundTrip(t *testing.T) {
	src := MustFromValue(map[string]any{
		"count":   3,
		"enabled": true,
		"name":    "true",
		"ratio":   0.25,
		"tags":    []any{"a", "b"},
	})
	data, err := MarshalYAML(src)
	require.NoError(t, err)

	back, err := Decode(data, "out.yaml")
	require.NoError(t, err)
	assert.True(t, Equal(src, back), "round trip changed value:\n%s", data)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
