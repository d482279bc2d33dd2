package policy

// AttendancePolicy is a company's configured attendance rules. It is
// read-only input to the attendance state machine; the company CRUD that
// maintains it lives outside this service.
type AttendancePolicy struct {
	CompanyID         string
	GPSRequired       bool
	PhotoRequired     bool
	BiometricRequired bool
	Geofencing        GeofencingConfig
	BreakTracking     bool
	OvertimeEnabled   bool
	WorkingHours      WorkingHours
	WorkingDays       []string

	// DailyOvertimeThresholdHours is the daily boundary between regular and
	// overtime hours. Zero means unset; DailyThreshold applies the default.
	DailyOvertimeThresholdHours float64
}

// GeofencingConfig describes the circular regions where attendance actions
// are permitted.
type GeofencingConfig struct {
	Enabled      bool
	RadiusMeters float64
	Locations    []GeofenceLocation
}

// GeofenceLocation is one allowed circle. RadiusMeters, when nil, falls back
// to the company-wide GeofencingConfig.RadiusMeters.
type GeofenceLocation struct {
	Name         string
	Latitude     float64
	Longitude    float64
	RadiusMeters *float64
}

// WorkingHours holds scheduled start/end as "HH:MM" strings.
type WorkingHours struct {
	Start string
	End   string
}

const defaultDailyThresholdHours = 8

// DailyThreshold returns the configured overtime threshold, defaulting to 8
// hours when the policy does not set one.
func (p AttendancePolicy) DailyThreshold() float64 {
	if p.DailyOvertimeThresholdHours > 0 {
		return p.DailyOvertimeThresholdHours
	}
	return defaultDailyThresholdHours
}

// Radius returns the effective radius for a geofence location.
func (g GeofencingConfig) Radius(loc GeofenceLocation) float64 {
	if loc.RadiusMeters != nil && *loc.RadiusMeters > 0 {
		return *loc.RadiusMeters
	}
	return g.RadiusMeters
}
