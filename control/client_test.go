package control

import (
	"testing"

	"github.com/rf-tools/chanspector/dsp"
	"github.com/rf-tools/chanspector/inspector"
	"github.com/rf-tools/chanspector/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient spins up a handler pump over a fresh queue pair and
// returns the client attached to it. The pump stops when the input queue
// is finalized.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	in := mq.New(nil)
	out := mq.New(nil)
	h := NewHandler(NewTable(), 48000, out, noopRegistrar{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			m, ok := in.Read()
			if !ok {
				return
			}
			req, ok := m.Payload.(InspectorMsg)
			if !ok {
				continue
			}
			_ = h.Dispatch(&req)
		}
	}()
	t.Cleanup(func() {
		in.Finalize()
		<-done
		out.Finalize()
	})

	return NewClient(in, out)
}

func TestClientOpenCloseRoundTrip(t *testing.T) {
	c := newTestClient(t)

	handle, err := c.Open(dsp.Channel{CenterHz: 100e3, BandwidthHz: 10e3})
	require.NoError(t, err)
	assert.Equal(t, 0, handle)

	require.NoError(t, c.Close(handle))
	assert.ErrorIs(t, c.Close(handle), ErrWrongHandle)
}

func TestClientParamsRoundTrip(t *testing.T) {
	c := newTestClient(t)

	handle, err := c.Open(dsp.Channel{CenterHz: 0, BandwidthHz: 10e3})
	require.NoError(t, err)

	want := inspector.Params{Baud: 1200, InspectorID: 7, SymPhase: 0.5}
	require.NoError(t, c.SetParams(handle, want))

	got, err := c.GetParams(handle)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestClientGetInfo(t *testing.T) {
	c := newTestClient(t)

	handle, err := c.Open(dsp.Channel{CenterHz: 0, BandwidthHz: 10e3})
	require.NoError(t, err)

	info, err := c.GetInfo(handle)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, info.Fac, 0.0)
	assert.GreaterOrEqual(t, info.Nln, 0.0)
}

func TestClientWrongHandleSurfaces(t *testing.T) {
	c := newTestClient(t)
	_, err := c.GetParams(99)
	assert.ErrorIs(t, err, ErrWrongHandle)
	_, err = c.GetInfo(-1)
	assert.ErrorIs(t, err, ErrWrongHandle)
}

func TestClientRejectsMismatchedReqID(t *testing.T) {
	in := mq.New(nil)
	out := mq.New(nil)
	c := NewClient(in, out)

	// A stray response with a req_id the client never chose must abort the
	// call instead of being accepted as the answer.
	require.NoError(t, out.Write(TypeInspector, InspectorMsg{Kind: KindOpen, ReqID: 999}))

	_, err := c.Open(dsp.Channel{CenterHz: 0, BandwidthHz: 10e3})
	assert.ErrorIs(t, err, ErrMismatchedReqID)
}

func TestClientOpenFailureSurfacesAsError(t *testing.T) {
	in := mq.New(nil)
	out := mq.New(nil)
	h := NewHandler(NewTable(), 48000, out, noopRegistrar{fail: true})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			m, ok := in.Read()
			if !ok {
				return
			}
			req, ok := m.Payload.(InspectorMsg)
			if !ok {
				continue
			}
			_ = h.Dispatch(&req)
		}
	}()
	defer func() {
		in.Finalize()
		<-done
		out.Finalize()
	}()

	c := NewClient(in, out)
	_, err := c.Open(dsp.Channel{CenterHz: 0, BandwidthHz: 10e3})
	assert.ErrorIs(t, err, ErrOpenFailed)
}
