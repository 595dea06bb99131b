package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceItemMinorUnits(t *testing.T) {
	item := InvoiceItem{ValueCents: 12550, DiscountCents: 500}
	assert.Equal(t, "125.50", item.Value().StringFixed(2))
	assert.Equal(t, "5.00", item.Discount().StringFixed(2))
}

func TestAppointmentOnline(t *testing.T) {
	tests := []struct {
		appt Appointment
		want bool
	}{
		{Appointment{Telehealth: true}, true},
		{Appointment{Notes: "Consulta ONLINE via video"}, true},
		{Appointment{Notes: "presential visit"}, false},
		{Appointment{}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.appt.Online(), "Online(%+v)", tt.appt)
	}
}

func TestProposalHasProcedure(t *testing.T) {
	p := Proposal{Items: []ProposalItem{{ProcedureID: 104}, {ProcedureID: 58}}}
	assert.True(t, p.HasProcedure(104))
	assert.False(t, p.HasProcedure(999))
	assert.Equal(t, []int{104, 58}, p.ProcedureIDs())
}
