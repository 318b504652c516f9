package itinerary

import (
	"fmt"

	"github.com/google/uuid"
)

// Fields addressable by SetField.
const (
	FieldAccommodation  = "accommodation"
	FieldTransportation = "transportation"
	FieldBudget         = "budget"
)

// Meal slots addressable by SetMeal.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
)

type Meals struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
}

// Day is one day of a trip itinerary. DayNumber is display-only state: it is
// derived from position and rewritten by Renumber after every structural edit.
type Day struct {
	ID             string   `json:"id"`
	DayNumber      int      `json:"dayNumber"`
	Accommodation  string   `json:"accommodation"`
	Transportation string   `json:"transportation"`
	Budget         string   `json:"budget"`
	Activities     []string `json:"activities"`
	Meals          Meals    `json:"meals"`
}

// Document is the whole itinerary, ordered first day to last.
type Document struct {
	Days []Day `json:"days"`
}

func newDay() Day {
	return Day{
		ID:         uuid.NewString(),
		Activities: []string{},
	}
}

// NewDocument builds a blank itinerary with n days, numbered 1..n.
func NewDocument(n int) Document {
	days := make([]Day, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, newDay())
	}
	doc := Document{Days: days}
	doc.Renumber()
	return doc
}

// Renumber rewrites every DayNumber to its 1-based position.
func (d *Document) Renumber() {
	for i := range d.Days {
		d.Days[i].DayNumber = i + 1
	}
}

// AddDay appends a blank day and returns its ID.
func (d *Document) AddDay() string {
	day := newDay()
	d.Days = append(d.Days, day)
	d.Renumber()
	return day.ID
}

// RemoveDay deletes the day with the given ID and renumbers the rest.
func (d *Document) RemoveDay(dayID string) error {
	i, err := d.index(dayID)
	if err != nil {
		return err
	}
	d.Days = append(d.Days[:i], d.Days[i+1:]...)
	d.Renumber()
	return nil
}

// Reorder moves the day at position from to position to (both 0-based).
func (d *Document) Reorder(from, to int) error {
	n := len(d.Days)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("reorder out of range: from=%d to=%d len=%d", from, to, n)
	}
	if from == to {
		return nil
	}
	day := d.Days[from]
	rest := append(d.Days[:from:from], d.Days[from+1:]...)
	d.Days = append(rest[:to:to], append([]Day{day}, rest[to:]...)...)
	d.Renumber()
	return nil
}

func (d *Document) index(dayID string) (int, error) {
	for i := range d.Days {
		if d.Days[i].ID == dayID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("day %s not found", dayID)
}

// SetField sets one of the flat text fields on a day.
func (d *Document) SetField(dayID, field, value string) error {
	i, err := d.index(dayID)
	if err != nil {
		return err
	}
	switch field {
	case FieldAccommodation:
		d.Days[i].Accommodation = value
	case FieldTransportation:
		d.Days[i].Transportation = value
	case FieldBudget:
		d.Days[i].Budget = value
	default:
		return fmt.Errorf("unknown field %q", field)
	}
	return nil
}

// SetMeal sets one meal slot on a day.
func (d *Document) SetMeal(dayID, meal, value string) error {
	i, err := d.index(dayID)
	if err != nil {
		return err
	}
	switch meal {
	case MealBreakfast:
		d.Days[i].Meals.Breakfast = value
	case MealLunch:
		d.Days[i].Meals.Lunch = value
	case MealDinner:
		d.Days[i].Meals.Dinner = value
	default:
		return fmt.Errorf("unknown meal %q", meal)
	}
	return nil
}

// SetActivity overwrites the activity at idx on a day.
func (d *Document) SetActivity(dayID string, idx int, value string) error {
	i, err := d.index(dayID)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(d.Days[i].Activities) {
		return fmt.Errorf("activity index %d out of range", idx)
	}
	d.Days[i].Activities[idx] = value
	return nil
}

// AppendActivity adds an activity to the end of a day's list.
func (d *Document) AppendActivity(dayID, value string) error {
	i, err := d.index(dayID)
	if err != nil {
		return err
	}
	d.Days[i].Activities = append(d.Days[i].Activities, value)
	return nil
}

// RemoveActivity deletes the activity at idx on a day.
func (d *Document) RemoveActivity(dayID string, idx int) error {
	i, err := d.index(dayID)
	if err != nil {
		return err
	}
	acts := d.Days[i].Activities
	if idx < 0 || idx >= len(acts) {
		return fmt.Errorf("activity index %d out of range", idx)
	}
	d.Days[i].Activities = append(acts[:idx], acts[idx+1:]...)
	return nil
}

// Clone deep-copies the document.
func (d Document) Clone() Document {
	days := make([]Day, len(d.Days))
	copy(days, d.Days)
	for i := range days {
		acts := make([]string, len(days[i].Activities))
		copy(acts, days[i].Activities)
		days[i].Activities = acts
	}
	return Document{Days: days}
}

// Equal reports whether two documents have identical content.
func (d Document) Equal(other Document) bool {
	if len(d.Days) != len(other.Days) {
		return false
	}
	for i := range d.Days {
		a, b := d.Days[i], other.Days[i]
		if a.ID != b.ID || a.DayNumber != b.DayNumber ||
			a.Accommodation != b.Accommodation ||
			a.Transportation != b.Transportation ||
			a.Budget != b.Budget || a.Meals != b.Meals {
			return false
		}
		if len(a.Activities) != len(b.Activities) {
			return false
		}
		for j := range a.Activities {
			if a.Activities[j] != b.Activities[j] {
				return false
			}
		}
	}
	return true
}
