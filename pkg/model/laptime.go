package model

import "time"

type (
	DriverSkill int

	// LapTimeSample is one historical record from the append-only store.
	LapTimeSample struct {
		TrackID      string       `json:"trackId"`
		LapTime      float64      `json:"lapTime"` // sec
		Modified     bool         `json:"modified"`
		TireCompound TireCompound `json:"tireCompound,omitempty"`
		Conditions   string       `json:"conditions,omitempty"`
		RecordedAt   time.Time    `json:"recordedAt"`
	}

	// Percentiles of lap times for one population, seconds.
	Percentiles struct {
		P5  float64 `json:"p5"  yaml:"p5"`
		P25 float64 `json:"p25" yaml:"p25"`
		P50 float64 `json:"p50" yaml:"p50"`
		P65 float64 `json:"p65" yaml:"p65"`
		P90 float64 `json:"p90" yaml:"p90"`
	}

	// PercentileStats is the aggregate the estimator reads for a track.
	PercentileStats struct {
		TrackID     string      `json:"trackId"     yaml:"trackId"`
		SampleCount int         `json:"sampleCount" yaml:"sampleCount"`
		Stock       Percentiles `json:"stock"       yaml:"stock"`
		Modified    Percentiles `json:"modified"    yaml:"modified"`
	}

	// LapTimeEstimate is the output of the lap time estimator.
	LapTimeEstimate struct {
		TrackID      string             `json:"trackId"`
		Skill        DriverSkill        `json:"skill"`
		Baseline     float64            `json:"baseline"` // sec, skill percentile
		Estimated    float64            `json:"estimated"`
		Improvement  float64            `json:"improvement"` // sec actually applied
		Utilization  float64            `json:"utilization"` // skill factor used
		Breakdown    map[string]float64 `json:"breakdown"`   // category -> fraction
		DeltaMedian  float64            `json:"deltaMedian"` // vs modified P50
		DeltaFastest float64            `json:"deltaFastest"`
		SampleCount  int                `json:"sampleCount"`
	}

	// DynoMeasurement is a user supplied verified wheel measurement.
	DynoMeasurement struct {
		WheelHP     float64   `json:"whp"`
		WheelTorque float64   `json:"wtq"`
		RecordedAt  time.Time `json:"recordedAt"`
	}

	// VerifiedSample is emitted for later calibration promotion.
	// The promotion policy lives outside this service.
	VerifiedSample struct {
		VehicleID   string          `json:"vehicleId"`
		PlatformID  string          `json:"platformId"`
		BuildHash   string          `json:"buildHash"`
		ModIDs      []string        `json:"modIds"`
		Measurement DynoMeasurement `json:"measurement"`
	}
)

const (
	Beginner DriverSkill = iota
	Intermediate
	Advanced
	Professional
)

func (s DriverSkill) String() string {
	switch s {
	case Beginner:
		return "beginner"
	case Intermediate:
		return "intermediate"
	case Advanced:
		return "advanced"
	case Professional:
		return "professional"
	}
	return "unknown"
}

// ParseDriverSkill maps the wire value to a DriverSkill.
// Unknown values default to Intermediate.
func ParseDriverSkill(arg string) DriverSkill {
	switch arg {
	case "beginner":
		return Beginner
	case "intermediate":
		return Intermediate
	case "advanced":
		return Advanced
	case "professional", "pro":
		return Professional
	}
	return Intermediate
}
