package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlanBareArray(t *testing.T) {
	raw := []byte(`[
		{"id": "a", "dayNumber": 7, "accommodation": "Hotel A", "activities": ["walk"], "meals": {"breakfast": "toast", "lunch": "soup", "dinner": "fish"}},
		{"id": "b", "accommodation": "Hotel B"}
	]`)

	doc, err := NormalizePlan(raw)
	require.NoError(t, err)
	require.Len(t, doc.Days, 2)

	// Positions win over whatever numbers the model emitted.
	assert.Equal(t, 1, doc.Days[0].DayNumber)
	assert.Equal(t, 2, doc.Days[1].DayNumber)
	assert.Equal(t, "Hotel A", doc.Days[0].Accommodation)
	assert.Equal(t, []string{"walk"}, doc.Days[0].Activities)
	assert.Equal(t, "soup", doc.Days[0].Meals.Lunch)
}

func TestNormalizePlanWrappedObject(t *testing.T) {
	raw := []byte(`{"itinerary": [{"accommodation": "Inn"}, {"accommodation": "Lodge"}]}`)

	doc, err := NormalizePlan(raw)
	require.NoError(t, err)
	require.Len(t, doc.Days, 2)
	assert.Equal(t, "Inn", doc.Days[0].Accommodation)
	assert.Equal(t, "Lodge", doc.Days[1].Accommodation)
}

func TestNormalizePlanSingleObject(t *testing.T) {
	raw := []byte(`{"accommodation": "Solo Stay", "budget": 150}`)

	doc, err := NormalizePlan(raw)
	require.NoError(t, err)
	require.Len(t, doc.Days, 1)
	assert.Equal(t, "Solo Stay", doc.Days[0].Accommodation)
	assert.Equal(t, "150", doc.Days[0].Budget)
	assert.Equal(t, 1, doc.Days[0].DayNumber)
}

func TestNormalizePlanFlattensNestedValues(t *testing.T) {
	raw := []byte(`[{
		"accommodation": {"name": "Grand Hotel", "area": "old town"},
		"activities": [{"name": "kayak", "time": "morning"}, "dinner cruise"],
		"meals": {"breakfast": {"place": "cafe"}}
	}]`)

	doc, err := NormalizePlan(raw)
	require.NoError(t, err)
	require.Len(t, doc.Days, 1)

	assert.Equal(t, "area: old town; name: Grand Hotel", doc.Days[0].Accommodation)
	assert.Equal(t, []string{"name: kayak; time: morning", "dinner cruise"}, doc.Days[0].Activities)
	assert.Equal(t, "place: cafe", doc.Days[0].Meals.Breakfast)
}

func TestNormalizePlanGeneratesMissingIDs(t *testing.T) {
	raw := []byte(`[{"accommodation": "A"}, {"id": "keep-me"}]`)

	doc, err := NormalizePlan(raw)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Days[0].ID)
	assert.Equal(t, "keep-me", doc.Days[1].ID)
}

func TestNormalizePlanRejectsGarbage(t *testing.T) {
	_, err := NormalizePlan([]byte(`not json at all`))
	assert.Error(t, err)

	_, err = NormalizePlan([]byte(`"just a string"`))
	assert.Error(t, err)

	_, err = NormalizePlan([]byte(`[]`))
	assert.Error(t, err)

	_, err = NormalizePlan([]byte(`[1, 2]`))
	assert.Error(t, err)
}
