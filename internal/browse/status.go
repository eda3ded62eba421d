package browse

import "strings"

// StatusTag is the display hint for a character's status.
type StatusTag string

const (
	StatusAlive   StatusTag = "green"
	StatusDead    StatusTag = "red"
	StatusUnknown StatusTag = "gray"
)

// ClassifyStatus maps "alive" and "dead" (any case) to their tags and
// everything else, "unknown" included, to StatusUnknown.
func ClassifyStatus(status string) StatusTag {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "alive":
		return StatusAlive
	case "dead":
		return StatusDead
	default:
		return StatusUnknown
	}
}
