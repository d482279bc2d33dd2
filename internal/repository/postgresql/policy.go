package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/workpulse/attendance-backend-go/internal/domain/policy"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
)

type policyRepository struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) policy.PolicyRepository {
	return &policyRepository{db: db}
}

// settingsDocument mirrors the attendance_settings jsonb stored per company.
// It is the persistence shape only; the domain type carries no tags.
type settingsDocument struct {
	GPSRequired       bool `json:"gps_required"`
	PhotoRequired     bool `json:"photo_required"`
	BiometricRequired bool `json:"biometric_required"`
	Geofencing        struct {
		Enabled      bool    `json:"enabled"`
		RadiusMeters float64 `json:"radius"`
		Locations    []struct {
			Name         string   `json:"name"`
			Latitude     float64  `json:"latitude"`
			Longitude    float64  `json:"longitude"`
			RadiusMeters *float64 `json:"radius,omitempty"`
		} `json:"locations"`
	} `json:"geofencing"`
	BreakTracking   bool `json:"break_tracking"`
	OvertimeEnabled bool `json:"overtime_calculation"`
	WorkingHours    struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"working_hours"`
	WorkingDays            []string `json:"working_days"`
	DailyOvertimeThreshold float64  `json:"daily_overtime_threshold_hours"`
}

// GetByCompanyID implements policy.PolicyRepository.
func (p *policyRepository) GetByCompanyID(ctx context.Context, companyID string) (policy.AttendancePolicy, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT attendance_settings
		FROM companies
		WHERE id = $1
	`

	var raw []byte
	err := q.QueryRow(ctx, query, companyID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return policy.AttendancePolicy{}, policy.ErrPolicyNotFound
		}
		return policy.AttendancePolicy{}, fmt.Errorf("failed to get attendance policy: %w", err)
	}

	var doc settingsDocument
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return policy.AttendancePolicy{}, fmt.Errorf("decode attendance settings: %w", err)
		}
	}

	pol := policy.AttendancePolicy{
		CompanyID:         companyID,
		GPSRequired:       doc.GPSRequired,
		PhotoRequired:     doc.PhotoRequired,
		BiometricRequired: doc.BiometricRequired,
		Geofencing: policy.GeofencingConfig{
			Enabled:      doc.Geofencing.Enabled,
			RadiusMeters: doc.Geofencing.RadiusMeters,
		},
		BreakTracking:   doc.BreakTracking,
		OvertimeEnabled: doc.OvertimeEnabled,
		WorkingHours: policy.WorkingHours{
			Start: doc.WorkingHours.Start,
			End:   doc.WorkingHours.End,
		},
		WorkingDays:                 doc.WorkingDays,
		DailyOvertimeThresholdHours: doc.DailyOvertimeThreshold,
	}
	for _, loc := range doc.Geofencing.Locations {
		pol.Geofencing.Locations = append(pol.Geofencing.Locations, policy.GeofenceLocation{
			Name:         loc.Name,
			Latitude:     loc.Latitude,
			Longitude:    loc.Longitude,
			RadiusMeters: loc.RadiusMeters,
		})
	}

	return pol, nil
}
