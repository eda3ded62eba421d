package models

// Character is a single record from the character directory.
// Field names follow the directory's JSON so records round-trip unchanged
// between the live service, the local cache and the mirror.
type Character struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"` // "Alive", "Dead" or "unknown"
	Species  string   `json:"species"`
	Type     string   `json:"type"`
	Gender   string   `json:"gender"`
	Origin   Place    `json:"origin"`
	Location Place    `json:"location"`
	Image    string   `json:"image"`
	Episode  []string `json:"episode"`
	URL      string   `json:"url,omitempty"`
	Created  string   `json:"created,omitempty"`
}

// Place is a named location reference (origin or last known location).
type Place struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}
