package reminder

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/julianstephens/medremind/internal/models"
)

var (
	morningBefore = models.Coord{Slot: models.Morning, Occasion: models.BeforeMeal}
	morningAfter  = models.Coord{Slot: models.Morning, Occasion: models.AfterMeal}
	eveningAfter  = models.Coord{Slot: models.Evening, Occasion: models.AfterMeal}
	beforeSleep   = models.Coord{Slot: models.BeforeSleep}
)

func sampleWeek() models.WeekSchedule {
	var w models.WeekSchedule
	w.Days[models.Monday].Selected = true
	w.Days[models.Wednesday].Selected = true
	_ = w.Days[models.Monday].Set(morningBefore, models.SlotSetting{Enabled: true, Time: models.MustTimeOfDay(8, 0)})
	_ = w.Days[models.Wednesday].Set(beforeSleep, models.SlotSetting{Enabled: true, Time: models.MustTimeOfDay(22, 30)})
	// disabled settings keep their time
	_ = w.Days[models.Friday].Set(eveningAfter, models.SlotSetting{Time: models.MustTimeOfDay(19, 30)})
	return w
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	want := sampleWeek()

	data, err := Encode(want)
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if got != want {
		t.Errorf("Decode(Encode(w)) = %+v, want %+v", got, want)
	}

	strict, err := DecodeStrict(data)
	if err != nil {
		t.Fatalf("DecodeStrict() failed: %v", err)
	}
	if strict != want {
		t.Errorf("DecodeStrict(Encode(w)) = %+v, want %+v", strict, want)
	}
}

func TestEncodeShape(t *testing.T) {
	data, err := Encode(sampleWeek())
	if err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}
	if doc.Version != 2 {
		t.Errorf("version = %d, want 2", doc.Version)
	}
	if len(doc.Times) != 7 || len(doc.Enabled) != 7 {
		t.Errorf("times/enabled have %d/%d days, want 7/7", len(doc.Times), len(doc.Enabled))
	}
	if got := doc.Times["Mon"]["morning_before"]; got != "08:00" {
		t.Errorf("times.Mon.morning_before = %q, want 08:00", got)
	}
	if got := doc.Times["Tue"]["morning_before"]; got != "" {
		t.Errorf("times.Tue.morning_before = %q, want unset", got)
	}
	if len(doc.SelectedDays) != 2 || doc.SelectedDays[0] != "Mon" || doc.SelectedDays[1] != "Wed" {
		t.Errorf("selectedDays = %v, want [Mon Wed]", doc.SelectedDays)
	}
}

func TestDecodeMissingFields(t *testing.T) {
	got, err := Decode([]byte(`{"version":2,"times":{"Mon":{"morning_before":"08:00"}}}`))
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	s := got.Day(models.Monday).Get(morningBefore)
	if s.Enabled || s.Time != models.MustTimeOfDay(8, 0) {
		t.Errorf("Mon morning_before = %+v, want disabled 08:00", s)
	}
	if got.Day(models.Tuesday).AnyEnabled() || len(got.SelectedDays()) != 0 {
		t.Errorf("missing fields should decode as empty, got %+v", got)
	}
}

func TestDecodeTolerant(t *testing.T) {
	data := []byte(`{
		"version": 2,
		"times": {"Mon": {"morning_before": "25:99", "bogus": "08:00", "before_sleep": "21:00"}, "Xyz": {}},
		"enabled": {"Mon": {"morning_before": true, "before_sleep": true}},
		"selectedDays": ["Mon", "Funday"]
	}`)

	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	mon := got.Day(models.Monday)
	if !mon.Selected {
		t.Error("Mon should be selected")
	}
	if s := mon.Get(morningBefore); !s.Enabled || s.Time.IsSet() {
		t.Errorf("malformed time should be dropped, got %+v", s)
	}
	if s := mon.Get(beforeSleep); !s.Active() || s.Time.String() != "21:00" {
		t.Errorf("before_sleep = %+v, want active 21:00", s)
	}

	if _, err := DecodeStrict(data); !errors.Is(err, models.ErrInvalidTimeValue) && !errors.Is(err, models.ErrInvalidCoord) && !errors.Is(err, models.ErrInvalidWeekday) {
		t.Errorf("DecodeStrict() error = %v, want a validation error", err)
	}
}

func TestDecodeStrictInvalidTime(t *testing.T) {
	_, err := DecodeStrict([]byte(`{"version":2,"times":{"Mon":{"morning_before":"8am"}}}`))
	if !errors.Is(err, models.ErrInvalidTimeValue) {
		t.Errorf("DecodeStrict() error = %v, want %v", err, models.ErrInvalidTimeValue)
	}
}

func TestDecodeStrictFutureVersion(t *testing.T) {
	if _, err := DecodeStrict([]byte(`{"version":3}`)); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("DecodeStrict() error = %v, want %v", err, ErrUnsupportedVersion)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, input := range []string{``, `[]`, `{"times": 5}`} {
		if _, err := Decode([]byte(input)); !errors.Is(err, ErrMalformedDocument) {
			t.Errorf("Decode(%q) error = %v, want %v", input, err, ErrMalformedDocument)
		}
	}
}

func TestDecodeLegacy(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "japanese keys",
			data: `{"times":{"朝":"07:30","昼":"","夕":"19:00","就寝前":"22:00"},"selectedDays":["月","水"]}`,
		},
		{
			name: "english keys",
			data: `{"times":{"morning":"07:30","noon":"","evening":"19:00","before_sleep":"22:00"},"selectedDays":["Mon","Wed"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data))
			if err != nil {
				t.Fatalf("Decode() failed: %v", err)
			}

			for _, day := range []models.Weekday{models.Monday, models.Wednesday} {
				ds := got.Day(day)
				if !ds.Selected {
					t.Errorf("%s should be selected", day)
				}
				if s := ds.Get(morningAfter); !s.Active() || s.Time.String() != "07:30" {
					t.Errorf("%s morning_after = %+v, want active 07:30", day, s)
				}
				if s := ds.Get(morningBefore); s.Enabled {
					t.Errorf("%s morning_before should stay disabled", day)
				}
				if s := ds.Get(models.Coord{Slot: models.Noon, Occasion: models.AfterMeal}); s.Enabled {
					t.Errorf("%s noon_after with empty legacy time should stay disabled", day)
				}
				if s := ds.Get(beforeSleep); !s.Active() || s.Time.String() != "22:00" {
					t.Errorf("%s before_sleep = %+v, want active 22:00", day, s)
				}
			}
			if got.Day(models.Tuesday).AnyEnabled() {
				t.Error("unselected days should not receive legacy times")
			}
		})
	}
}
