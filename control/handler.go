package control

import (
	"github.com/rf-tools/chanspector/inspector"
	"github.com/rf-tools/chanspector/internal/telemetry"
	"github.com/rf-tools/chanspector/mq"
)

// TypeInspector is the message-type control responses are written under.
const TypeInspector mq.Type = 1

// TaskRegistrar pushes a worker task for a newly-registered inspector.
// Handler calls it once per successful OPEN, after the inspector is already
// in the table; a failure tombstones the handle and fails the OPEN. It is
// satisfied by a worker pool's Submit method; Handler only depends on the
// interface to avoid importing the worker package, which itself depends on
// inspector.
type TaskRegistrar interface {
	Submit(insp *inspector.Inspector) error
}

// Handler is the analyzer-goroutine control protocol dispatcher. It owns
// the inspector table and the sample rate every inspector is built
// against; it never runs concurrently with itself (the analyzer is single-
// threaded), so it needs no locking of its own beyond what Table already
// provides.
type Handler struct {
	Table     *Table
	SampRate  float64
	Out       *mq.Queue
	Registrar TaskRegistrar
	// RigTuner, when set, is called with a successful OPEN's channel center
	// frequency so a physical receiver can follow the channel being opened.
	// Handler discards its error: a tuning failure is not surfaced to the
	// client, since the inspector itself opened successfully. chaninspectord
	// serve installs a RigTuner that logs the failure.
	RigTuner func(centerHz float64) error
}

// NewHandler builds a Handler dispatching against table, constructing
// inspectors for an upstream source running at sampRate, and writing
// responses to out.
func NewHandler(table *Table, sampRate float64, out *mq.Queue, registrar TaskRegistrar) *Handler {
	return &Handler{Table: table, SampRate: sampRate, Out: out, Registrar: registrar}
}

// Dispatch processes one request in place, turning it into its response,
// and writes it to Out under TypeInspector. Whenever a dispatch found an
// inspector, the response's InspectorID is stamped from that inspector's
// params regardless of which case ran, so clients can correlate by their
// own application-level id.
func (h *Handler) Dispatch(msg *InspectorMsg) error {
	var insp *inspector.Inspector

	switch msg.Kind {
	case KindOpen:
		insp = h.open(msg)
	case KindGetInfo:
		insp = h.getInfo(msg)
	case KindGetParams:
		insp = h.getParams(msg)
	case KindParams:
		insp = h.setParams(msg)
	case KindClose:
		insp = h.close(msg)
	default:
		msg.Status = msg.Kind
		msg.Kind = KindWrongKind
	}

	if insp != nil {
		msg.InspectorID = insp.Params().InspectorID
	}

	if err := h.Out.Write(TypeInspector, *msg); err != nil {
		telemetry.MqWriteFailuresTotal.WithLabelValues("control_out").Inc()
		if insp != nil {
			// An undeliverable response halts the inspector it concerns; its
			// worker drops it at the next dispatch.
			insp.Advance(inspector.Halting)
		}
		return err
	}
	return nil
}

func (h *Handler) open(msg *InspectorMsg) *inspector.Inspector {
	insp, err := inspector.New(h.SampRate, msg.Channel)
	if err != nil {
		msg.Kind = KindError
		return nil
	}

	handle := h.Table.Register(insp)
	if !insp.Advance(inspector.Running) {
		h.Table.Tombstone(handle)
		insp.Destroy()
		msg.Kind = KindError
		return nil
	}

	if h.Registrar != nil {
		if err := h.Registrar.Submit(insp); err != nil {
			h.Table.Tombstone(handle)
			insp.Destroy()
			msg.Kind = KindError
			return nil
		}
	}

	if h.RigTuner != nil {
		// Best-effort: a failed retune does not undo an otherwise-successful
		// OPEN, since the inspector itself needs no physical rig to process
		// samples already arriving on the channel it was built for.
		_ = h.RigTuner(msg.Channel.CenterHz)
	}

	msg.Handle = handle
	msg.Kind = KindOpen
	return insp
}

func (h *Handler) getInfo(msg *InspectorMsg) *inspector.Inspector {
	insp := h.Table.GetRunning(msg.Handle)
	if insp == nil {
		msg.Kind = KindWrongHandle
		return nil
	}
	msg.Baud = BaudInfo{Fac: insp.FacBaud(), Nln: insp.NlnBaud()}
	msg.Kind = KindInfo
	return insp
}

func (h *Handler) getParams(msg *InspectorMsg) *inspector.Inspector {
	insp := h.Table.GetRunning(msg.Handle)
	if insp == nil {
		msg.Kind = KindWrongHandle
		return nil
	}
	msg.Params = *insp.Params()
	msg.Kind = KindParams
	return insp
}

func (h *Handler) setParams(msg *InspectorMsg) *inspector.Inspector {
	insp := h.Table.GetRunning(msg.Handle)
	if insp == nil {
		msg.Kind = KindWrongHandle
		return nil
	}
	insp.SetParams(msg.Params)
	msg.Kind = KindParams
	return insp
}

// close's handle validation differs from the other operations: a CLOSE
// must also be accepted against an already-Halted inspector (to reap it),
// which GetRunning's Running-only filter would otherwise reject.
func (h *Handler) close(msg *InspectorMsg) *inspector.Inspector {
	insp := h.Table.raw(msg.Handle)
	if insp == nil {
		msg.Kind = KindWrongHandle
		return nil
	}
	switch insp.State() {
	case inspector.Halted:
		h.Table.Tombstone(msg.Handle)
		insp.Destroy()
	case inspector.Running:
		insp.Advance(inspector.Halting)
	default:
		msg.Kind = KindWrongHandle
		return nil
	}
	msg.Kind = KindClose
	return insp
}
