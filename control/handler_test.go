package control

import (
	"testing"

	"github.com/rf-tools/chanspector/dsp"
	"github.com/rf-tools/chanspector/inspector"
	"github.com/rf-tools/chanspector/mq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopRegistrar struct{ fail bool }

func (r noopRegistrar) Submit(insp *inspector.Inspector) error {
	if r.fail {
		return assert.AnError
	}
	return nil
}

func newTestHandler(t *testing.T, registrar TaskRegistrar) (*Handler, *mq.Queue) {
	t.Helper()
	out := mq.New(nil)
	h := NewHandler(NewTable(), 48000, out, registrar)
	return h, out
}

func readResponse(t *testing.T, out *mq.Queue) InspectorMsg {
	t.Helper()
	got, ok := out.Poll()
	require.True(t, ok)
	require.Equal(t, TypeInspector, got.Type)
	return got.Payload.(InspectorMsg)
}

func TestOpenCloseRoundTrip(t *testing.T) {
	h, out := newTestHandler(t, noopRegistrar{})

	open := &InspectorMsg{Kind: KindOpen, ReqID: 42, Channel: dsp.Channel{CenterHz: 100e3, BandwidthHz: 10e3}}
	require.NoError(t, h.Dispatch(open))
	resp := readResponse(t, out)
	assert.Equal(t, KindOpen, resp.Kind)
	assert.Equal(t, uint32(42), resp.ReqID)
	assert.Equal(t, 0, resp.Handle)

	closeMsg := &InspectorMsg{Kind: KindClose, ReqID: 43, Handle: 0}
	require.NoError(t, h.Dispatch(closeMsg))
	closeResp := readResponse(t, out)
	assert.Equal(t, KindClose, closeResp.Kind)
	assert.Equal(t, uint32(43), closeResp.ReqID)

	second := &InspectorMsg{Kind: KindClose, ReqID: 44, Handle: 0}
	require.NoError(t, h.Dispatch(second))
	secondResp := readResponse(t, out)
	assert.Equal(t, KindWrongHandle, secondResp.Kind)
}

func TestParamsEcho(t *testing.T) {
	h, out := newTestHandler(t, noopRegistrar{})

	require.NoError(t, h.Dispatch(&InspectorMsg{Kind: KindOpen, Channel: dsp.Channel{CenterHz: 0, BandwidthHz: 10e3}}))
	openResp := readResponse(t, out)
	handle := openResp.Handle

	set := &InspectorMsg{
		Kind:   KindParams,
		Handle: handle,
		Params: inspector.Params{Baud: 1200, FCOffsetHz: 0, FCPhase: 0, FCControl: inspector.FCManual, InspectorID: 7, SymPhase: 0.5},
	}
	require.NoError(t, h.Dispatch(set))
	setResp := readResponse(t, out)
	assert.Equal(t, KindParams, setResp.Kind)

	get := &InspectorMsg{Kind: KindGetParams, Handle: handle}
	require.NoError(t, h.Dispatch(get))
	getResp := readResponse(t, out)
	assert.Equal(t, KindParams, getResp.Kind)
	assert.Equal(t, float32(1200), getResp.Params.Baud)
	assert.Equal(t, uint32(7), getResp.Params.InspectorID)
}

func TestWrongKind(t *testing.T) {
	h, out := newTestHandler(t, noopRegistrar{})
	require.NoError(t, h.Dispatch(&InspectorMsg{Kind: Kind(0xFF)}))
	resp := readResponse(t, out)
	assert.Equal(t, KindWrongKind, resp.Kind)
	assert.Equal(t, Kind(0xFF), resp.Status)
}

func TestGetInfoOnUnknownHandleIsWrongHandle(t *testing.T) {
	h, out := newTestHandler(t, noopRegistrar{})
	require.NoError(t, h.Dispatch(&InspectorMsg{Kind: KindGetInfo, Handle: -1}))
	assert.Equal(t, KindWrongHandle, readResponse(t, out).Kind)

	require.NoError(t, h.Dispatch(&InspectorMsg{Kind: KindGetInfo, Handle: 5}))
	assert.Equal(t, KindWrongHandle, readResponse(t, out).Kind)
}

func TestOpenFailsWhenRegistrarRejectsTask(t *testing.T) {
	h, out := newTestHandler(t, noopRegistrar{fail: true})
	require.NoError(t, h.Dispatch(&InspectorMsg{Kind: KindOpen, Channel: dsp.Channel{CenterHz: 0, BandwidthHz: 10e3}}))
	resp := readResponse(t, out)
	assert.Equal(t, KindError, resp.Kind)
	assert.Equal(t, 1, h.Table.Len()) // tombstoned, not removed
}

func TestSweepReapsHaltedEntries(t *testing.T) {
	h, out := newTestHandler(t, noopRegistrar{})
	require.NoError(t, h.Dispatch(&InspectorMsg{Kind: KindOpen, Channel: dsp.Channel{CenterHz: 0, BandwidthHz: 10e3}}))
	handle := readResponse(t, out).Handle

	insp := h.Table.raw(handle)
	require.True(t, insp.Advance(inspector.Halting))
	require.True(t, insp.Advance(inspector.Halted))

	assert.Equal(t, 1, h.Table.Sweep())
	assert.Nil(t, h.Table.raw(handle))
}
