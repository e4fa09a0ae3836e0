// Package control implements the engine's request/response control
// protocol: an indexed inspector table plus a handler that dispatches
// open/close/get-info/get-params/set-params requests against it,
// converting every failure into a response message rather than propagating
// it out of the analyzer loop, so a client's blocking call always
// unblocks.
package control

import (
	"github.com/rf-tools/chanspector/dsp"
	"github.com/rf-tools/chanspector/inspector"
)

// Kind is the request/response discriminator carried by every InspectorMsg.
type Kind uint32

const (
	KindOpen Kind = iota
	KindClose
	KindGetInfo
	KindInfo
	KindGetParams
	KindParams
	KindWrongHandle
	KindWrongKind
	// KindError reports an OPEN that failed outright (inspector
	// construction or task registration). Without a distinct kind a
	// blocking client could not tell "denied" from "still pending" and
	// would hang waiting for a handle that is never coming.
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "OPEN"
	case KindClose:
		return "CLOSE"
	case KindGetInfo:
		return "GET_INFO"
	case KindInfo:
		return "INFO"
	case KindGetParams:
		return "GET_PARAMS"
	case KindParams:
		return "PARAMS"
	case KindWrongHandle:
		return "WRONG_HANDLE"
	case KindWrongKind:
		return "WRONG_KIND"
	case KindError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// BaudInfo is the GET_INFO payload: the two baud detectors' current
// smoothed estimates.
type BaudInfo struct {
	Fac float64
	Nln float64
}

// InspectorMsg is the single control message type, mutated in place by the
// handler into its own response.
type InspectorMsg struct {
	Kind        Kind
	Handle      int
	Channel     dsp.Channel
	Params      inspector.Params
	Baud        BaudInfo
	InspectorID uint32
	ReqID       uint32
	// Status carries the original, unrecognized kind on a WRONG_KIND
	// response.
	Status Kind
}
