package worker

import "github.com/rf-tools/chanspector/mq"

// TypeSamples is the message-type batched symbol output is written under.
const TypeSamples mq.Type = 2

// SampleBatch is the payload of a TypeSamples message: one or more symbol
// samples produced by a single inspector, tagged so the client can
// correlate them by its own application-level id.
type SampleBatch struct {
	InspectorID uint32
	Samples     []complex64
}

// TypeEstimator is the message-type the unsolicited periodic estimator
// push is written under, gated by Params.EstimatorIntervalSamples.
const TypeEstimator mq.Type = 3

// EstimatorUpdate is the payload of a TypeEstimator message: a snapshot of
// an inspector's current baud-rate estimates.
type EstimatorUpdate struct {
	InspectorID uint32
	FacBaud     float64
	NlnBaud     float64
}
