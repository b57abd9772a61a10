package models

import (
	"errors"
	"fmt"
)

var ErrInvalidCoord = errors.New("invalid slot coordinate")

// Slot is a named time-of-day bucket.
type Slot int

const (
	Morning Slot = iota
	Noon
	Evening
	BeforeSleep
)

// Occasion splits a meal slot into before and after the meal.
type Occasion int

const (
	OccasionNone Occasion = iota
	BeforeMeal
	AfterMeal
)

// CoordsPerDay is the number of valid coordinates in a day.
const CoordsPerDay = 7

func (s Slot) String() string {
	switch s {
	case Morning:
		return "morning"
	case Noon:
		return "noon"
	case Evening:
		return "evening"
	case BeforeSleep:
		return "before_sleep"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// Label is the human-readable name of the slot.
func (s Slot) Label() string {
	switch s {
	case Morning:
		return "Morning"
	case Noon:
		return "Noon"
	case Evening:
		return "Evening"
	case BeforeSleep:
		return "Before sleep"
	default:
		return s.String()
	}
}

// IsMeal reports whether the slot carries before/after-meal occasions.
func (s Slot) IsMeal() bool {
	return s == Morning || s == Noon || s == Evening
}

// ParseSlot accepts the slot key or its label, plus the legacy Japanese names.
func ParseSlot(s string) (Slot, error) {
	switch s {
	case "morning", "Morning", "朝":
		return Morning, nil
	case "noon", "Noon", "lunch", "昼":
		return Noon, nil
	case "evening", "Evening", "dinner", "夕":
		return Evening, nil
	case "before_sleep", "Before sleep", "bed", "bedtime", "就寝前":
		return BeforeSleep, nil
	}
	return 0, fmt.Errorf("%w: unknown slot %q", ErrInvalidCoord, s)
}

func (o Occasion) String() string {
	switch o {
	case BeforeMeal:
		return "before"
	case AfterMeal:
		return "after"
	default:
		return ""
	}
}

// Coord addresses one SlotSetting within a day.
type Coord struct {
	Slot     Slot
	Occasion Occasion
}

var allCoords = [CoordsPerDay]Coord{
	{Morning, BeforeMeal},
	{Morning, AfterMeal},
	{Noon, BeforeMeal},
	{Noon, AfterMeal},
	{Evening, BeforeMeal},
	{Evening, AfterMeal},
	{BeforeSleep, OccasionNone},
}

// AllCoords returns the seven valid coordinates in display order.
func AllCoords() []Coord {
	out := make([]Coord, CoordsPerDay)
	copy(out, allCoords[:])
	return out
}

// Validate rejects slot/occasion pairs that do not exist.
func (c Coord) Validate() error {
	if _, ok := c.index(); !ok {
		return fmt.Errorf("%w: %s/%s", ErrInvalidCoord, c.Slot, c.Occasion)
	}
	return nil
}

func (c Coord) index() (int, bool) {
	for i, v := range allCoords {
		if v == c {
			return i, true
		}
	}
	return 0, false
}

// Key is the stable document key, e.g. "morning_before".
func (c Coord) Key() string {
	if c.Slot == BeforeSleep {
		return c.Slot.String()
	}
	return c.Slot.String() + "_" + c.Occasion.String()
}

func (c Coord) String() string {
	return c.Key()
}

// Label is the human-readable name, e.g. "Morning (after meal)".
func (c Coord) Label() string {
	if c.Occasion == OccasionNone {
		return c.Slot.Label()
	}
	return fmt.Sprintf("%s (%s meal)", c.Slot.Label(), c.Occasion)
}

// ParseCoordKey is the inverse of Coord.Key.
func ParseCoordKey(key string) (Coord, error) {
	for _, c := range allCoords {
		if c.Key() == key {
			return c, nil
		}
	}
	return Coord{}, fmt.Errorf("%w: unknown key %q", ErrInvalidCoord, key)
}
