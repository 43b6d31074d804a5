package solver

// IntegrationParameters tune the simulation step. Only a subset drives
// the integrator itself; the rest parameterize constraint solving and
// CCD and are carried so that saved scenes round-trip them.
type IntegrationParameters struct {
	Dt                       float32
	MinCcdDt                 float32
	Erp                      float32
	JointErp                 float32
	WarmstartCoeff           float32
	WarmstartCorrectionSlope float32
	VelocitySolveFraction    float32
	VelocityBasedErp         float32
	AllowedLinearError       float32
	PredictionDistance       float32
	AllowedAngularError      float32
	MaxLinearCorrection      float32
	MaxAngularCorrection     float32
	MaxVelocityIterations    uint32
	MaxPositionIterations    uint32
	MinIslandSize            uint32
	MaxCcdSubsteps           uint32
}

// DefaultIntegrationParameters returns the solver defaults (60 Hz tick).
func DefaultIntegrationParameters() IntegrationParameters {
	return IntegrationParameters{
		Dt:                       1.0 / 60.0,
		MinCcdDt:                 1.0 / 60.0 / 100.0,
		Erp:                      0.2,
		JointErp:                 0.2,
		WarmstartCoeff:           1.0,
		WarmstartCorrectionSlope: 10.0,
		VelocitySolveFraction:    1.0,
		VelocityBasedErp:         0.0,
		AllowedLinearError:       0.005,
		PredictionDistance:       0.002,
		AllowedAngularError:      0.001,
		MaxLinearCorrection:      0.2,
		MaxAngularCorrection:     0.2,
		MaxVelocityIterations:    4,
		MaxPositionIterations:    1,
		MinIslandSize:            128,
		MaxCcdSubsteps:           1,
	}
}
