package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slotForm struct {
	Date     string  `validate:"required,isodate"`
	TimeSlot string  `validate:"required,timeslot"`
	Moved    *string `validate:"omitempty,timeslot"`
}

func TestCustomTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	late := "18:00"
	tests := []struct {
		name  string
		form  slotForm
		valid bool
	}{
		{"valid", slotForm{Date: "2025-06-10", TimeSlot: "08:00"}, true},
		{"last slot", slotForm{Date: "2025-06-10", TimeSlot: "17:00"}, true},
		{"after grid", slotForm{Date: "2025-06-10", TimeSlot: "18:00"}, false},
		{"half hour", slotForm{Date: "2025-06-10", TimeSlot: "09:30"}, false},
		{"bad date", slotForm{Date: "2025-02-30", TimeSlot: "08:00"}, false},
		{"wrong date format", slotForm{Date: "10/06/2025", TimeSlot: "08:00"}, false},
		{"optional slot invalid", slotForm{Date: "2025-06-10", TimeSlot: "08:00", Moved: &late}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.form)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRegisterOnGinEngine(t *testing.T) {
	assert.NoError(t, Register())
}
