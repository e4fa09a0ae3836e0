package control

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rf-tools/chanspector/dsp"
	"github.com/rf-tools/chanspector/inspector"
	"github.com/rf-tools/chanspector/mq"
)

var (
	// ErrMismatchedReqID means a response carried a req_id other than the
	// one the in-flight request chose. The call is aborted rather than
	// retried: a stray response on the queue means some other producer is
	// misusing it, and silently resynchronizing would hide that.
	ErrMismatchedReqID = errors.New("control: response req_id does not match request")
	// ErrUnexpectedResponse means the response kind was not one the call
	// can interpret.
	ErrUnexpectedResponse = errors.New("control: unexpected response kind")
	// ErrWrongHandle is the client-side surface of a WRONG_HANDLE response.
	ErrWrongHandle = errors.New("control: wrong handle")
	// ErrOpenFailed is the client-side surface of an ERROR response to
	// OPEN: inspector construction or task registration failed.
	ErrOpenFailed = errors.New("control: open failed")
)

// Client is the blocking, in-process client side of the control protocol:
// each call writes one request to the engine's input queue, blocks on a
// typed read of the output queue, and correlates request and response by
// req_id. Calls are serialized internally, so one Client keeps at most one
// request in flight; the typed read lets responses overtake any sample
// batches sharing the output queue. Do not share one output queue between
// two Clients — each would steal the other's responses.
type Client struct {
	mu    sync.Mutex
	in    *mq.Queue
	out   *mq.Queue
	reqID uint32
}

// NewClient builds a Client sending requests on in and awaiting responses
// on out.
func NewClient(in, out *mq.Queue) *Client {
	return &Client{in: in, out: out}
}

func (c *Client) roundTrip(msg InspectorMsg) (InspectorMsg, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reqID++
	msg.ReqID = c.reqID
	if err := c.in.Write(TypeInspector, msg); err != nil {
		return InspectorMsg{}, err
	}

	got, ok := c.out.ReadType(TypeInspector)
	if !ok {
		return InspectorMsg{}, mq.ErrClosed
	}
	resp, isMsg := got.Payload.(InspectorMsg)
	if !isMsg {
		return InspectorMsg{}, fmt.Errorf("%w: payload %T", ErrUnexpectedResponse, got.Payload)
	}
	if resp.ReqID != msg.ReqID {
		return InspectorMsg{}, fmt.Errorf("%w: sent %d, got %d", ErrMismatchedReqID, msg.ReqID, resp.ReqID)
	}
	return resp, nil
}

// Open requests a new inspector for channel and returns its handle.
func (c *Client) Open(channel dsp.Channel) (int, error) {
	resp, err := c.roundTrip(InspectorMsg{Kind: KindOpen, Channel: channel})
	if err != nil {
		return 0, err
	}
	switch resp.Kind {
	case KindOpen:
		return resp.Handle, nil
	case KindError:
		return 0, ErrOpenFailed
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.Kind)
	}
}

// Close requests teardown of the inspector at handle.
func (c *Client) Close(handle int) error {
	resp, err := c.roundTrip(InspectorMsg{Kind: KindClose, Handle: handle})
	if err != nil {
		return err
	}
	switch resp.Kind {
	case KindClose:
		return nil
	case KindWrongHandle:
		return ErrWrongHandle
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.Kind)
	}
}

// GetInfo returns the current baud estimates of the inspector at handle.
func (c *Client) GetInfo(handle int) (BaudInfo, error) {
	resp, err := c.roundTrip(InspectorMsg{Kind: KindGetInfo, Handle: handle})
	if err != nil {
		return BaudInfo{}, err
	}
	switch resp.Kind {
	case KindInfo:
		return resp.Baud, nil
	case KindWrongHandle:
		return BaudInfo{}, ErrWrongHandle
	default:
		return BaudInfo{}, fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.Kind)
	}
}

// GetParams returns the current parameter set of the inspector at handle.
func (c *Client) GetParams(handle int) (inspector.Params, error) {
	resp, err := c.roundTrip(InspectorMsg{Kind: KindGetParams, Handle: handle})
	if err != nil {
		return inspector.Params{}, err
	}
	switch resp.Kind {
	case KindParams:
		return resp.Params, nil
	case KindWrongHandle:
		return inspector.Params{}, ErrWrongHandle
	default:
		return inspector.Params{}, fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.Kind)
	}
}

// SetParams replaces the parameter set of the inspector at handle.
func (c *Client) SetParams(handle int, p inspector.Params) error {
	resp, err := c.roundTrip(InspectorMsg{Kind: KindParams, Handle: handle, Params: p})
	if err != nil {
		return err
	}
	switch resp.Kind {
	case KindParams:
		return nil
	case KindWrongHandle:
		return ErrWrongHandle
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedResponse, resp.Kind)
	}
}
