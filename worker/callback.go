package worker

import (
	"strconv"

	"github.com/rf-tools/chanspector/inspector"
	"github.com/rf-tools/chanspector/internal/telemetry"
	"github.com/rf-tools/chanspector/mq"
)

// Callback runs one worker-pool dispatch of an inspector against consumer,
// writing any produced symbol batch to out, and returns true iff the
// inspector should be rescheduled. On every drop path the inspector is
// advanced to Halted and the consumer's task resources are released.
func Callback(out sampleWriter, consumer Consumer, insp *inspector.Inspector) bool {
	bind(insp)

	if insp.State() == inspector.Halting {
		return drop(consumer, insp)
	}

	samples, next, ok := consumer.AssertSamples(cursorOf(insp))
	if !ok {
		return drop(consumer, insp)
	}
	setCursor(insp, next)

	params := insp.Params()
	var batch *SampleBatch
	remaining := samples
	for len(remaining) > 0 {
		fed, err := insp.FeedBulk(remaining)
		if err != nil {
			return drop(consumer, insp)
		}

		if insp.NewSample() {
			if batch == nil {
				batch = &SampleBatch{InspectorID: params.InspectorID}
			}
			batch.Samples = append(batch.Samples, insp.SamplerOutput())
		}

		if fed == 0 {
			// feed_bulk made no progress; nothing left to extract.
			break
		}
		remaining = remaining[fed:]
	}

	if batch != nil {
		idLabel := strconv.FormatUint(uint64(batch.InspectorID), 10)
		telemetry.EstimatorBaud.WithLabelValues(idLabel, "fac").Set(insp.FacBaud())
		telemetry.EstimatorBaud.WithLabelValues(idLabel, "nln").Set(insp.NlnBaud())
		if err := out.Write(TypeSamples, *batch); err != nil {
			telemetry.MqWriteFailuresTotal.WithLabelValues("samples_out").Inc()
			return drop(consumer, insp)
		}
	}

	if interval := params.EstimatorIntervalSamples; interval > 0 {
		insp.Task.EstimatorSeen += uint32(len(samples))
		if insp.Task.EstimatorSeen >= interval {
			insp.Task.EstimatorSeen = 0
			update := EstimatorUpdate{
				InspectorID: params.InspectorID,
				FacBaud:     insp.FacBaud(),
				NlnBaud:     insp.NlnBaud(),
			}
			if err := out.Write(TypeEstimator, update); err != nil {
				telemetry.MqWriteFailuresTotal.WithLabelValues("estimator_out").Inc()
				return drop(consumer, insp)
			}
		}
	}

	return true
}

func drop(consumer Consumer, insp *inspector.Inspector) bool {
	consumer.RemoveTask(cursorOf(insp))
	insp.Advance(inspector.Halted)
	return false
}

// sampleWriter is the subset of *mq.Queue Callback needs, named so tests
// can substitute a queue that fails writes (e.g. a finalized queue)
// without depending on mq.Queue's full surface.
type sampleWriter interface {
	Write(t mq.Type, payload any) error
}
