package enrich

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/clinsync-dev/clinsync/internal/model"
)

// AppointmentSearcher is the appointment slice of the platform API.
type AppointmentSearcher interface {
	SearchAppointments(ctx context.Context, patientID int, around civil.Date) ([]model.Appointment, error)
}

// AppointmentValidator confirms whether a transaction date coincides with a
// clinical visit.
type AppointmentValidator struct {
	api AppointmentSearcher
}

// NewAppointmentValidator creates an AppointmentValidator.
func NewAppointmentValidator(api AppointmentSearcher) *AppointmentValidator {
	return &AppointmentValidator{api: api}
}

// HasVisit reports whether the patient had a visit on the given date. An
// appointment on the exact date counts; so does an online consultation
// anywhere in the search window, since remote visits are often logged on
// adjacent days. A lookup failure is returned as-is: the caller decides the
// safe default, never this function.
func (v *AppointmentValidator) HasVisit(ctx context.Context, patientID int, date civil.Date) (bool, error) {
	appointments, err := v.api.SearchAppointments(ctx, patientID, date)
	if err != nil {
		return false, err
	}

	for _, a := range appointments {
		if a.Date == date {
			return true, nil
		}
	}
	for _, a := range appointments {
		if a.Online() {
			return true, nil
		}
	}
	return false, nil
}
