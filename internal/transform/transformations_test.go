package transform

import (
	"testing"
	"time"

	"climate-platform/internal/calendar"
	"climate-platform/internal/models"
)

func TestTransformation_Value(t *testing.T) {
	day := calendar.Date(2001, time.June, 10)

	tests := []struct {
		name  string
		t     Transformation
		value *float64
		want  *float64
	}{
		{"identity", Identity, models.Float(3.3), models.Float(3.3)},
		{"above 35 hot", EqualOrAbove35, models.Float(36.2), models.Float(1)},
		{"above 35 cooler", EqualOrAbove35, models.Float(34.9), models.Float(0)},
		{"above 35 missing", EqualOrAbove35, nil, nil},
		{"above 25 boundary", EqualOrAbove25, models.Float(25), models.Float(1)},
		{"above 1", EqualOrAbove1, models.Float(0.8), models.Float(0)},
		{"1 to 10 lower bound", EqualOrAbove1AndLessThan10, models.Float(1), models.Float(1)},
		{"1 to 10 upper bound", EqualOrAbove1AndLessThan10, models.Float(10), models.Float(0)},
		{"above 10", EqualOrAbove10, models.Float(10), models.Float(1)},
		{"10 to 25 upper bound", EqualOrAbove10AndLessThan25, models.Float(25), models.Float(0)},
		{"10 to 25 inside", EqualOrAbove10AndLessThan25, models.Float(12), models.Float(1)},
		{"positive", IsPositive, models.Float(0.1), models.Float(1)},
		{"positive zero", IsPositive, models.Float(0), models.Float(0)},
		{"negative", IsNegative, models.Float(-0.1), models.Float(1)},
		{"negate", Negate, models.Float(2.5), models.Float(-2.5)},
		{"enso el nino", EnsoCategory, models.Float(0.9), models.Float(1)},
		{"enso la nina", EnsoCategory, models.Float(-0.6), models.Float(-1)},
		{"enso neutral boundary", EnsoCategory, models.Float(0.5), models.Float(0)},
		{"frosty", IsFrosty, models.Float(2.2), models.Float(1)},
		{"not frosty", IsFrosty, models.Float(2.3), models.Float(0)},
		{"frost day", DayOfYearIfFrost, models.Float(-1), models.Float(161)},
		{"no frost day", DayOfYearIfFrost, models.Float(8), models.Float(0)},
		{"frost day missing", DayOfYearIfFrost, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.t.Value(models.NewDailyRecord(day, tt.value))
			if err != nil {
				t.Fatalf("Value() error = %v", err)
			}
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Value() = %v, want nil", *got)
			case tt.want != nil && got == nil:
				t.Errorf("Value() = nil, want %v", *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("Value() = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	in := []models.DataRecord{
		models.NewDailyRecord(calendar.Date(2001, time.January, 1), models.Float(5)),
		models.NewDailyRecord(calendar.Date(2001, time.January, 2), nil),
	}

	out, err := Apply(in, Negate)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if *out[0].Value != -5 {
		t.Errorf("out[0] = %v, want -5", *out[0].Value)
	}
	if out[1].Value != nil {
		t.Error("missing values stay missing")
	}
	if *in[0].Value != 5 {
		t.Errorf("input was modified: %v", *in[0].Value)
	}
}

func TestParseTransformation(t *testing.T) {
	got, err := ParseTransformation("dayofyeariffrost")
	if err != nil || got != DayOfYearIfFrost {
		t.Errorf("ParseTransformation() = %v, %v", got, err)
	}
	got, err = ParseTransformation("")
	if err != nil || got != Identity {
		t.Errorf("ParseTransformation(\"\") = %v, %v", got, err)
	}
	if _, err := ParseTransformation("Cube"); err == nil {
		t.Error("expected error for unknown transformation")
	}
	if _, err := Apply(nil, Transformation("Cube")); err == nil {
		t.Error("Apply should reject unknown transformation")
	}
}
