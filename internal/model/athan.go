package model

import (
	"fmt"
	"strings"
	"time"
)

// PrayerName is one of the six daily anchors. The zero value is None.
type PrayerName int

const (
	None PrayerName = iota
	Fajr
	Sunrise
	Dhuhr
	Asr
	Maghrib
	Isha
)

// Prayers lists the anchors in canonical day order. The order is fixed and is
// never re-sorted by time.
var Prayers = []PrayerName{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

var prayerNames = [...]string{"None", "Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha"}

func (p PrayerName) String() string {
	if p < None || p > Isha {
		return fmt.Sprintf("PrayerName(%d)", int(p))
	}
	return prayerNames[p]
}

// ParsePrayerName matches the canonical names case-insensitively.
func ParsePrayerName(s string) (PrayerName, error) {
	s = strings.TrimSpace(s)
	for _, p := range Prayers {
		if strings.EqualFold(s, prayerNames[p]) {
			return p, nil
		}
	}
	return None, fmt.Errorf("unknown prayer name %q", s)
}

func (p PrayerName) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PrayerName) UnmarshalText(b []byte) error {
	if strings.EqualFold(string(b), prayerNames[None]) {
		*p = None
		return nil
	}
	v, err := ParsePrayerName(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// RawTiming maps each anchor to today's local "HH:mm" string.
type RawTiming map[PrayerName]string

// HasAll reports whether every anchor has an entry.
func (r RawTiming) HasAll() bool {
	for _, p := range Prayers {
		if _, ok := r[p]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (r RawTiming) Clone() RawTiming {
	if r == nil {
		return nil
	}
	out := make(RawTiming, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Location identifies a city. All fields take part in equality; coordinates
// are compared exactly, not by distance.
type Location struct {
	Name      string  `json:"name" db:"name"`
	Admin     string  `json:"admin,omitempty" db:"admin"`
	Country   string  `json:"country" db:"country"`
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// ID is the stable identity key of the location.
func (l Location) ID() string {
	return fmt.Sprintf("%s|%s|%s|%v|%v", l.Name, l.Admin, l.Country, l.Latitude, l.Longitude)
}

func (l Location) DisplayName() string {
	if l.Admin != "" && l.Admin != l.Name {
		return fmt.Sprintf("%s, %s, %s", l.Name, l.Admin, l.Country)
	}
	return fmt.Sprintf("%s, %s", l.Name, l.Country)
}

// StoredTimings is the single cached record.
type StoredTimings struct {
	Location    Location  `json:"location"`
	Items       RawTiming `json:"items"`
	LastUpdated time.Time `json:"last_updated"`
}

// IsFresh is true only for the same location captured on the same calendar
// day as now, both read in zone.
func (s StoredTimings) IsFresh(loc Location, now time.Time, zone *time.Location) bool {
	if s.Location != loc {
		return false
	}
	if zone == nil {
		zone = time.Local
	}
	y1, m1, d1 := s.LastUpdated.In(zone).Date()
	y2, m2, d2 := now.In(zone).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// TimingsResponse is what a remote timings source returns.
type TimingsResponse struct {
	Items    RawTiming
	TimeZone string
}

// Evaluation is the current/next state of a schedule at one instant.
type Evaluation struct {
	Background  PrayerName `json:"background"`
	Visual      PrayerName `json:"visual"`
	Highlighted PrayerName `json:"highlighted"`
	Next        PrayerName `json:"next"`
	Remaining   string     `json:"remaining"`
}

// NotificationTrigger is one future alert.
type NotificationTrigger struct {
	ID     string     `json:"id"`
	Prayer PrayerName `json:"prayer"`
	FireAt time.Time  `json:"fire_at"`
	Title  string     `json:"title"`
	Body   string     `json:"body"`
}

// Prayer is one row of the day's list as shown to screens.
type Prayer struct {
	Name PrayerName `json:"name"`
	Time string     `json:"time"` // "05:12", or "--:--" when unknown
}

// PlaceholderTime stands in for a missing entry.
const PlaceholderTime = "--:--"

// PrayersFrom renders the canonical list, filling gaps with PlaceholderTime.
func PrayersFrom(items RawTiming) []Prayer {
	out := make([]Prayer, 0, len(Prayers))
	for _, p := range Prayers {
		t, ok := items[p]
		if !ok {
			t = PlaceholderTime
		}
		out = append(out, Prayer{Name: p, Time: t})
	}
	return out
}
