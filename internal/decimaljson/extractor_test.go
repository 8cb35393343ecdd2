package decimaljson

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractObject_FirstTopLevelObject(t *testing.T) {
	got, ok := ExtractObject(`prefix {"a":1,"b":{"c":2}} suffix`)
	assert.True(t, ok)
	assert.Equal(t, `{"a":1,"b":{"c":2}}`, got)
}

func TestExtractObject_BraceInsideStringDoesNotPerturbDepth(t *testing.T) {
	got, ok := ExtractObject(`{"note":"a { b","n":1}`)
	assert.True(t, ok)
	assert.Equal(t, `{"note":"a { b","n":1}`, got)
}

func TestExtractObject_NoObject_ReturnsFalse(t *testing.T) {
	_, ok := ExtractObject(`[1,2,3]`)
	assert.False(t, ok)
}

func TestExtractArray_FirstTopLevelArray(t *testing.T) {
	got, ok := ExtractArray(`{"ignored":1} [1,2,{"x":3}]`)
	assert.True(t, ok)
	assert.Equal(t, `[1,2,{"x":3}]`, got)
}

func TestExtractFieldWithObject_FindsNestedObject(t *testing.T) {
	got, ok := ExtractFieldWithObject(`{"code":0,"data":{"amount":0.00000001}}`, "data")
	assert.True(t, ok)
	assert.Equal(t, `{"amount":0.00000001}`, got)
}

func TestExtractFieldWithObject_FindsNestedArray(t *testing.T) {
	got, ok := ExtractFieldWithObject(`{"result":[{"x":1},{"y":2}]}`, "result")
	assert.True(t, ok)
	assert.Equal(t, `[{"x":1},{"y":2}]`, got)
}

func TestExtractFieldWithObject_ToleratesSpaceBeforeColon(t *testing.T) {
	got, ok := ExtractFieldWithObject(`{"data" : {"x":1}}`, "data")
	assert.True(t, ok)
	assert.Equal(t, `{"x":1}`, got)
}

func TestExtractFieldWithObject_FieldAbsent_ReturnsFalse(t *testing.T) {
	_, ok := ExtractFieldWithObject(`{"code":0}`, "data")
	assert.False(t, ok)
}

func TestExtractFieldWithObject_ScalarValue_ReturnsFalse(t *testing.T) {
	_, ok := ExtractFieldWithObject(`{"data":"not-an-object"}`, "data")
	assert.False(t, ok)
}

func TestTopLevelKeys_ReturnsAllTopLevelFieldNames(t *testing.T) {
	keys, ok := TopLevelKeys(`{"a":1,"b":{"nested":true},"c":[1,2]}`)
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, keys)
}
