package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(""))
	assert.True(t, IsEmpty("   "))
	assert.True(t, IsEmpty("\t\n"))
	assert.False(t, IsEmpty("x"))
	assert.False(t, IsEmpty(" x "))
}

func TestIsNumeric(t *testing.T) {
	assert.True(t, IsNumeric("12345"))
	assert.False(t, IsNumeric("12a45"))
	assert.False(t, IsNumeric(""))
	assert.False(t, IsNumeric("-1"))
}

func TestIsValidDate(t *testing.T) {
	date, ok := IsValidDate("2026-08-10")
	assert.True(t, ok)
	assert.Equal(t, 2026, date.Year())

	_, ok = IsValidDate("10-08-2026")
	assert.False(t, ok)

	_, ok = IsValidDate("2026-13-01")
	assert.False(t, ok)

	_, ok = IsValidDate("")
	assert.False(t, ok)
}

func TestIsValidDateTime(t *testing.T) {
	_, ok := IsValidDateTime("2026-08-10T09:00:00Z")
	assert.True(t, ok)

	_, ok = IsValidDateTime("2026-08-10T09:00:00+07:00")
	assert.True(t, ok)

	_, ok = IsValidDateTime("2026-08-10T09:00:00.123456789Z")
	assert.True(t, ok)

	_, ok = IsValidDateTime("2026-08-10")
	assert.False(t, ok)
}

func TestCoordinateRanges(t *testing.T) {
	assert.True(t, IsValidLatitude(-90))
	assert.True(t, IsValidLatitude(90))
	assert.True(t, IsValidLatitude(0))
	assert.False(t, IsValidLatitude(90.0001))
	assert.False(t, IsValidLatitude(-91))

	assert.True(t, IsValidLongitude(-180))
	assert.True(t, IsValidLongitude(180))
	assert.False(t, IsValidLongitude(180.0001))
	assert.False(t, IsValidLongitude(-181))
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"manual", "biometric"}
	assert.True(t, IsInSlice("manual", slice))
	assert.False(t, IsInSlice("qr_code", slice))
	assert.False(t, IsInSlice("", slice))
}

func TestIsValidClock(t *testing.T) {
	assert.True(t, IsValidClock("09:00"))
	assert.True(t, IsValidClock("23:59"))
	assert.True(t, IsValidClock("00:00"))
	assert.False(t, IsValidClock("24:00"))
	assert.False(t, IsValidClock("9:00"))
	assert.False(t, IsValidClock("09:60"))
	assert.False(t, IsValidClock(""))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "method", Message: "invalid method"},
		{Field: "location.latitude", Message: "out of range"},
	}

	assert.Equal(t, "method: invalid method; location.latitude: out of range", errs.Error())

	m := errs.ToMap()
	assert.Len(t, m, 2)
	assert.Equal(t, "invalid method", m["method"])
}
