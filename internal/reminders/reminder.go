package reminders

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNameRequired = errors.New("medicine name is required")
	ErrInvalidTime  = errors.New("time must be in HH:MM 24-hour format")
	ErrUnknownDay   = errors.New("unknown day")
)

// timePattern requires exactly two digits on each side of the colon.
var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// Reminder is a locally stored medicine reminder.
type Reminder struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Time  string   `json:"time"`
	Days  []string `json:"days"`
	Notes string   `json:"notes,omitempty"`
}

// Valid reports whether r satisfies the shape the store keeps on load.
func (r Reminder) Valid() bool {
	return r.ID != "" && r.Name != "" && r.Time != ""
}

type Input struct {
	Name  string
	Time  string
	Days  []string
	Notes string
}

// New validates in and builds a reminder whose id is derived from now.
func New(in Input, now time.Time) (Reminder, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Reminder{}, ErrNameRequired
	}
	if _, _, err := ParseTime(in.Time); err != nil {
		return Reminder{}, err
	}

	days := make([]string, 0, len(in.Days))
	seen := map[time.Weekday]bool{}
	for _, d := range in.Days {
		wd, ok := ParseDay(d)
		if !ok {
			return Reminder{}, fmt.Errorf("%w: %q", ErrUnknownDay, d)
		}
		if seen[wd] {
			continue
		}
		seen[wd] = true
		days = append(days, wd.String())
	}

	return Reminder{
		ID:    IDFromTime(now),
		Name:  name,
		Time:  in.Time,
		Days:  days,
		Notes: strings.TrimSpace(in.Notes),
	}, nil
}

// IDFromTime renders now as milliseconds since the epoch.
func IDFromTime(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}

// ParseTime parses a strict "HH:MM" string.
func ParseTime(s string) (hour, minute int, err error) {
	m := timePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

// ParseDay accepts full English weekday names or their three-letter
// abbreviations, case-insensitively.
func ParseDay(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 3 {
		return 0, false
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		full := strings.ToLower(wd.String())
		if s == full || s == full[:3] {
			return wd, true
		}
	}
	return 0, false
}
