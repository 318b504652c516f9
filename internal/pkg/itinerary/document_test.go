package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dayNumbers(d Document) []int {
	nums := make([]int, len(d.Days))
	for i, day := range d.Days {
		nums[i] = day.DayNumber
	}
	return nums
}

func TestNewDocumentNumbersDays(t *testing.T) {
	doc := NewDocument(3)
	require.Len(t, doc.Days, 3)
	assert.Equal(t, []int{1, 2, 3}, dayNumbers(doc))
	for _, day := range doc.Days {
		assert.NotEmpty(t, day.ID)
		assert.NotNil(t, day.Activities)
	}
}

func TestAddDayRenumbers(t *testing.T) {
	doc := NewDocument(2)
	id := doc.AddDay()
	require.Len(t, doc.Days, 3)
	assert.Equal(t, id, doc.Days[2].ID)
	assert.Equal(t, []int{1, 2, 3}, dayNumbers(doc))
}

func TestRemoveDayRenumbers(t *testing.T) {
	doc := NewDocument(3)
	middle := doc.Days[1].ID
	require.NoError(t, doc.RemoveDay(middle))
	require.Len(t, doc.Days, 2)
	assert.Equal(t, []int{1, 2}, dayNumbers(doc))
	for _, day := range doc.Days {
		assert.NotEqual(t, middle, day.ID)
	}
}

func TestRemoveDayUnknownID(t *testing.T) {
	doc := NewDocument(1)
	assert.Error(t, doc.RemoveDay("nope"))
	assert.Len(t, doc.Days, 1)
}

func TestReorderRenumbers(t *testing.T) {
	doc := NewDocument(4)
	ids := []string{doc.Days[0].ID, doc.Days[1].ID, doc.Days[2].ID, doc.Days[3].ID}

	require.NoError(t, doc.Reorder(3, 0))

	assert.Equal(t, ids[3], doc.Days[0].ID)
	assert.Equal(t, ids[0], doc.Days[1].ID)
	assert.Equal(t, ids[1], doc.Days[2].ID)
	assert.Equal(t, ids[2], doc.Days[3].ID)
	// Numbers always follow position, never travel with the day.
	assert.Equal(t, []int{1, 2, 3, 4}, dayNumbers(doc))
}

func TestReorderOutOfRange(t *testing.T) {
	doc := NewDocument(2)
	assert.Error(t, doc.Reorder(0, 5))
	assert.Error(t, doc.Reorder(-1, 0))
}

func TestReorderSamePositionNoop(t *testing.T) {
	doc := NewDocument(3)
	before := doc.Clone()
	require.NoError(t, doc.Reorder(1, 1))
	assert.True(t, before.Equal(doc))
}

func TestSetField(t *testing.T) {
	doc := NewDocument(1)
	id := doc.Days[0].ID

	require.NoError(t, doc.SetField(id, FieldAccommodation, "Hotel Mar"))
	require.NoError(t, doc.SetField(id, FieldTransportation, "metro"))
	require.NoError(t, doc.SetField(id, FieldBudget, "200 EUR"))

	assert.Equal(t, "Hotel Mar", doc.Days[0].Accommodation)
	assert.Equal(t, "metro", doc.Days[0].Transportation)
	assert.Equal(t, "200 EUR", doc.Days[0].Budget)

	assert.Error(t, doc.SetField(id, "mood", "great"))
	assert.Error(t, doc.SetField("missing", FieldBudget, "x"))
}

func TestMealsAndActivities(t *testing.T) {
	doc := NewDocument(1)
	id := doc.Days[0].ID

	require.NoError(t, doc.SetMeal(id, MealLunch, "ramen"))
	assert.Equal(t, "ramen", doc.Days[0].Meals.Lunch)
	assert.Error(t, doc.SetMeal(id, "brunch", "x"))

	require.NoError(t, doc.AppendActivity(id, "museum"))
	require.NoError(t, doc.AppendActivity(id, "beach"))
	require.NoError(t, doc.SetActivity(id, 1, "surfing"))
	assert.Equal(t, []string{"museum", "surfing"}, doc.Days[0].Activities)

	require.NoError(t, doc.RemoveActivity(id, 0))
	assert.Equal(t, []string{"surfing"}, doc.Days[0].Activities)
	assert.Error(t, doc.RemoveActivity(id, 5))
}

func TestCloneIsDeep(t *testing.T) {
	doc := NewDocument(1)
	id := doc.Days[0].ID
	require.NoError(t, doc.AppendActivity(id, "hike"))

	cp := doc.Clone()
	require.NoError(t, cp.SetActivity(id, 0, "spa"))
	require.NoError(t, cp.SetField(id, FieldBudget, "500"))

	assert.Equal(t, "hike", doc.Days[0].Activities[0])
	assert.Empty(t, doc.Days[0].Budget)
	assert.False(t, doc.Equal(cp))
}
