package validators

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingForm struct {
	Date  string `json:"date" binding:"required,date"`
	Time  string `json:"time" binding:"required,hhmm"`
	Email string `json:"email" binding:"omitempty,email"`
}

func TestRegister_CustomRules(t *testing.T) {
	require.NoError(t, Register())

	ok := bookingForm{Date: "14/07/2025", Time: "09:30"}
	assert.NoError(t, binding.Validator.ValidateStruct(&ok))

	iso := bookingForm{Date: "2025-07-14", Time: "18:00"}
	assert.NoError(t, binding.Validator.ValidateStruct(&iso))

	bad := bookingForm{Date: "14-07-2025", Time: "9:30", Email: "x"}
	err := binding.Validator.ValidateStruct(&bad)
	require.Error(t, err)

	details := Details(err)
	require.Len(t, details, 3)
	assert.Equal(t, "date", details[0]["field"])
	assert.Equal(t, "time", details[1]["field"])
	assert.Equal(t, "email", details[2]["field"])
}

func TestDetails_NonValidationError(t *testing.T) {
	assert.Nil(t, Details(assert.AnError))
}
