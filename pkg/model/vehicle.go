package model

type (
	AspirationType   int
	DrivetrainLayout int
	GearboxType      int

	Drivetrain struct {
		Layout  DrivetrainLayout `json:"layout" yaml:"layout"`
		Gearbox GearboxType      `json:"gearbox" yaml:"gearbox"`
	}

	// VehicleSpec is the immutable stock baseline of a vehicle.
	// The engine never mutates it.
	VehicleSpec struct {
		ID               string     `json:"id" yaml:"id"`
		PlatformID       string     `json:"platformId" yaml:"platformId"`
		EngineDescriptor string     `json:"engineDescriptor" yaml:"engineDescriptor"`
		StockHP          float64    `json:"stockHp" yaml:"stockHp"`
		StockTorque      float64    `json:"stockTorque" yaml:"stockTorque"`
		CurbWeight       float64    `json:"curbWeight" yaml:"curbWeight"` // lb
		Drivetrain       Drivetrain `json:"drivetrain" yaml:"drivetrain"`
		// stock metrics, 0 if unknown
		StockZeroToSixty float64 `json:"stockZeroToSixty,omitempty" yaml:"stockZeroToSixty"` // sec
		StockQuarterMile float64 `json:"stockQuarterMile,omitempty" yaml:"stockQuarterMile"` // sec
		StockBraking     float64 `json:"stockBraking,omitempty" yaml:"stockBraking"`         // ft, 60-0
		StockLateralG    float64 `json:"stockLateralG,omitempty" yaml:"stockLateralG"`
	}
)

const (
	NaturallyAspirated AspirationType = iota
	Turbo
	TwinTurbo
	Supercharged
)

const (
	FWD DrivetrainLayout = iota
	RWD
	AWD
)

const (
	Manual GearboxType = iota
	Automatic
	DCT
)

func (a AspirationType) String() string {
	switch a {
	case NaturallyAspirated:
		return "naturally_aspirated"
	case Turbo:
		return "turbo"
	case TwinTurbo:
		return "twin_turbo"
	case Supercharged:
		return "supercharged"
	}
	return "unknown"
}

func (d DrivetrainLayout) String() string {
	switch d {
	case FWD:
		return "fwd"
	case RWD:
		return "rwd"
	case AWD:
		return "awd"
	}
	return "unknown"
}

func (g GearboxType) String() string {
	switch g {
	case Manual:
		return "manual"
	case Automatic:
		return "automatic"
	case DCT:
		return "dct"
	}
	return "unknown"
}
