package packets

// RESPONSES FOR /api/athan/*

type LocationResponse struct {
	Name        string  `json:"name"`
	Admin       string  `json:"admin,omitempty"`
	Country     string  `json:"country"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
}

type PrayerResponse struct {
	Name string `json:"name"`
	Time string `json:"time"`
}

// Highlighted and Next are empty when nothing applies.
type EvaluationResponse struct {
	Background  string `json:"background"`
	Visual      string `json:"visual"`
	Highlighted string `json:"highlighted,omitempty"`
	Next        string `json:"next,omitempty"`
	Remaining   string `json:"remaining"`
}

type SnapshotResponse struct {
	Location   LocationResponse   `json:"location"`
	TimeZone   string             `json:"time_zone"`
	Source     string             `json:"source"`
	Prayers    []PrayerResponse   `json:"prayers"`
	Evaluation EvaluationResponse `json:"evaluation"`
	At         string             `json:"at"`
}

type TriggerResponse struct {
	ID     string `json:"id"`
	Prayer string `json:"prayer"`
	FireAt string `json:"fire_at"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}
