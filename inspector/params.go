package inspector

// FCControl selects the carrier-recovery variant the sample-feed pipeline
// dispatches to.
type FCControl int

const (
	FCManual FCControl = iota
	FCCostas2
	FCCostas4
)

// Params is the user-tunable configuration of an inspector. Values are
// published via an atomic pointer swap rather than a mutex held across the
// worker's read of the whole struct, so a worker never observes a torn
// write: every Params it sees is one some SetParams call produced in full.
type Params struct {
	InspectorID uint32
	FCControl   FCControl
	FCOffsetHz  float32
	FCPhase     float32 // radians
	Baud        float32 // absolute Hz; 0 disables the sampler
	SymPhase    float32 // fractional sampling phase within a symbol, [0, 1)

	// EstimatorIntervalSamples gates the unsolicited periodic estimator
	// push: the worker callback emits one estimator message every time this
	// many input samples have been fed through the inspector. 0 disables
	// it, matching the Baud==0 sampler-disable idiom above.
	EstimatorIntervalSamples uint32
}
