package model

import (
	"strings"

	"cloud.google.com/go/civil"
)

// Appointment is a scheduled clinical visit returned by the appointment search.
type Appointment struct {
	Date       civil.Date `json:"date"`
	Telehealth bool       `json:"telehealth"`
	Notes      string     `json:"notes,omitempty"`
}

// Online reports whether the appointment carries the online-consultation
// signal, either via the telehealth flag or a marker in the notes.
func (a Appointment) Online() bool {
	if a.Telehealth {
		return true
	}
	return strings.Contains(strings.ToLower(a.Notes), "online")
}
