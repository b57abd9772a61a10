package reminder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/models"
)

var (
	ErrMalformedDocument  = errors.New("malformed reminder document")
	ErrUnsupportedVersion = errors.New("unsupported document version")
)

// document is the version 2 wire shape. Times and enabled flags are keyed
// by weekday label, then by coordinate key; "" is an unset time.
type document struct {
	Version      int                          `json:"version"`
	Times        map[string]map[string]string `json:"times"`
	Enabled      map[string]map[string]bool   `json:"enabled"`
	SelectedDays []string                     `json:"selectedDays"`
}

// rawDocument defers decoding of times so that both the version 2 nested
// form and the flat version 1 form can be read.
type rawDocument struct {
	Version      int                        `json:"version"`
	Times        map[string]json.RawMessage `json:"times"`
	Enabled      map[string]map[string]bool `json:"enabled"`
	SelectedDays []string                   `json:"selectedDays"`
}

// Encode renders week as a version 2 document. Every day and coordinate is
// written so the document fully describes the schedule.
func Encode(week models.WeekSchedule) ([]byte, error) {
	doc := document{
		Version:      constants.DocumentVersion,
		Times:        make(map[string]map[string]string, models.DaysInWeek),
		Enabled:      make(map[string]map[string]bool, models.DaysInWeek),
		SelectedDays: []string{},
	}
	for _, day := range models.Weekdays() {
		ds := week.Day(day)
		times := make(map[string]string, models.CoordsPerDay)
		enabled := make(map[string]bool, models.CoordsPerDay)
		for _, c := range models.AllCoords() {
			s := ds.Get(c)
			times[c.Key()] = s.Time.String()
			enabled[c.Key()] = s.Enabled
		}
		doc.Times[day.String()] = times
		doc.Enabled[day.String()] = enabled
		if ds.Selected {
			doc.SelectedDays = append(doc.SelectedDays, day.String())
		}
	}
	return json.Marshal(doc)
}

// Decode reads a version 2 or legacy version 1 document. Missing days and
// coordinates come back disabled and unset. Unknown keys and malformed
// individual times are dropped.
func Decode(data []byte) (models.WeekSchedule, error) {
	return decode(data, false)
}

// DecodeStrict is Decode for client input: any unknown key or malformed
// time is an error.
func DecodeStrict(data []byte) (models.WeekSchedule, error) {
	return decode(data, true)
}

type decoder struct {
	strict bool
	week   models.WeekSchedule
	legacy map[models.Slot]models.TimeOfDay
}

// skip returns err in strict mode and nil otherwise.
func (d *decoder) skip(err error) error {
	if d.strict {
		return err
	}
	return nil
}

func decode(data []byte, strict bool) (models.WeekSchedule, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.WeekSchedule{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if strict && raw.Version > constants.DocumentVersion {
		return models.WeekSchedule{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, raw.Version)
	}

	d := &decoder{strict: strict, legacy: map[models.Slot]models.TimeOfDay{}}

	for _, label := range raw.SelectedDays {
		day, err := models.ParseWeekday(label)
		if err != nil {
			if err := d.skip(err); err != nil {
				return models.WeekSchedule{}, err
			}
			continue
		}
		d.week.Days[day].Selected = true
	}

	for key, value := range raw.Times {
		if err := d.times(key, value); err != nil {
			return models.WeekSchedule{}, err
		}
	}

	for label, flags := range raw.Enabled {
		day, err := models.ParseWeekday(label)
		if err != nil {
			if err := d.skip(err); err != nil {
				return models.WeekSchedule{}, err
			}
			continue
		}
		for key, on := range flags {
			c, err := models.ParseCoordKey(key)
			if err != nil {
				if err := d.skip(err); err != nil {
					return models.WeekSchedule{}, err
				}
				continue
			}
			s := d.week.Days[day].Get(c)
			s.Enabled = on
			_ = d.week.Days[day].Set(c, s)
		}
	}

	d.applyLegacy()
	return d.week, nil
}

func (d *decoder) times(key string, value json.RawMessage) error {
	trimmed := bytes.TrimSpace(value)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return nil
	case trimmed[0] == '{':
		return d.dayTimes(key, trimmed)
	case trimmed[0] == '"':
		return d.legacyTime(key, trimmed)
	default:
		return d.skip(fmt.Errorf("%w: times[%q] has unexpected type", ErrMalformedDocument, key))
	}
}

func (d *decoder) dayTimes(label string, value json.RawMessage) error {
	day, err := models.ParseWeekday(label)
	if err != nil {
		return d.skip(err)
	}
	var times map[string]string
	if err := json.Unmarshal(value, &times); err != nil {
		return d.skip(fmt.Errorf("%w: times[%q]: %v", ErrMalformedDocument, label, err))
	}
	for key, raw := range times {
		c, err := models.ParseCoordKey(key)
		if err != nil {
			if err := d.skip(err); err != nil {
				return err
			}
			continue
		}
		t, err := models.ParseTimeOfDay(raw)
		if err != nil {
			if err := d.skip(fmt.Errorf("%s %s: %w", day, key, err)); err != nil {
				return err
			}
			continue
		}
		s := d.week.Days[day].Get(c)
		s.Time = t
		_ = d.week.Days[day].Set(c, s)
	}
	return nil
}

func (d *decoder) legacyTime(key string, value json.RawMessage) error {
	slot, err := models.ParseSlot(key)
	if err != nil {
		return d.skip(err)
	}
	var raw string
	if err := json.Unmarshal(value, &raw); err != nil {
		return d.skip(fmt.Errorf("%w: times[%q]: %v", ErrMalformedDocument, key, err))
	}
	t, err := models.ParseTimeOfDay(raw)
	if err != nil {
		return d.skip(fmt.Errorf("%s: %w", slot, err))
	}
	d.legacy[slot] = t
	return nil
}

// applyLegacy spreads version 1 slot times over the selected days. Meal
// slots map to the after-meal occasion.
func (d *decoder) applyLegacy() {
	for slot, t := range d.legacy {
		if !t.IsSet() {
			continue
		}
		c := models.Coord{Slot: slot, Occasion: models.AfterMeal}
		if !slot.IsMeal() {
			c.Occasion = models.OccasionNone
		}
		for i := range d.week.Days {
			if !d.week.Days[i].Selected {
				continue
			}
			_ = d.week.Days[i].Set(c, models.SlotSetting{Enabled: true, Time: t})
		}
	}
}
