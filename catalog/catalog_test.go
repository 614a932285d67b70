package catalog

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLesionsOrder(t *testing.T) {
	t.Parallel()

	c := Lesions()
	require.Equal(t, 11, c.Len())

	first, err := c.At(0)
	require.NoError(t, err)
	assert.Equal(t, "Actinic Keratosis (Solar Keratosis)", first.DisplayName)
	assert.Equal(t, PreCancerous, first.Category)

	melanoma, err := c.At(5)
	require.NoError(t, err)
	assert.Equal(t, "Melanoma (Melanoma Malignum)", melanoma.DisplayName)
	assert.Equal(t, Malignant, melanoma.Category)

	last, err := c.At(10)
	require.NoError(t, err)
	assert.Equal(t, Varied, last.Category)
}

func TestAtOutOfRange(t *testing.T) {
	t.Parallel()

	c := Lesions()
	for _, i := range []int{-1, 11, 100} {
		_, err := c.At(i)
		var lme *LabelMappingError
		require.True(t, errors.As(err, &lme), "index %d", i)
		assert.Equal(t, i, lme.Index)
	}
}

func TestCheckWidth(t *testing.T) {
	t.Parallel()

	c := Lesions()
	assert.NoError(t, c.CheckWidth(11))

	err := c.CheckWidth(10)
	var lme *LabelMappingError
	require.ErrorAs(t, err, &lme)
	assert.Equal(t, 11, lme.Expected)
	assert.Equal(t, 10, lme.Got)
	assert.Contains(t, err.Error(), "width 10")
}

func TestClassesIsACopy(t *testing.T) {
	t.Parallel()

	c := Lesions()
	classes := c.Classes()
	classes[0], classes[1] = classes[1], classes[0]

	first, err := c.At(0)
	require.NoError(t, err)
	assert.Equal(t, PreCancerous, first.Category)
}

func TestCategoryJSON(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal(LesionClass{DisplayName: "x", Category: PreCancerous})
	require.NoError(t, err)
	assert.JSONEq(t, `{"display_name":"x","medical_category":"Pre-cancerous"}`, string(b))
	assert.Equal(t, "MedicalCategory(9)", MedicalCategory(9).String())
}
