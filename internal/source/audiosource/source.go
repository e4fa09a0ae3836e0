// Package audiosource is a concrete upstream sample source: it turns a
// sound-card input into a complex baseband stream using PortAudio, letting
// the engine run end to end against real hardware without an SDR front
// end.
package audiosource

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/rf-tools/chanspector/worker"
)

// Source reads real-valued samples from a mono input device and presents
// them as a complex baseband stream (imaginary part zero — a real-valued
// capture has no image-reject mixer ahead of it, unlike a true I/Q SDR
// front end). It implements worker.Consumer.
type Source struct {
	stream     *portaudio.Stream
	bufferSize int

	mu      sync.Mutex
	cond    *sync.Cond
	samples []complex64 // the most recent retainSamplesMultiple*bufferSize samples
	base    int         // cursor offset of samples[0]
	pos     int         // total samples ever produced, for cursor bookkeeping
	closed  bool
}

// retainSamplesMultiple bounds how much history the ring keeps, as a
// multiple of the capture buffer size, so a slow or stalled task cannot
// grow the accumulation buffer without limit.
const retainSamplesMultiple = 16

// Open starts capturing from deviceName (empty for the default input
// device) at sampRate with the given buffer size in frames.
func Open(deviceName string, sampRate float64, bufferSize int) (*Source, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("audiosource: init: %w", err)
	}

	device, err := resolveDevice(deviceName)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	s := &Source{bufferSize: bufferSize}
	s.cond = sync.NewCond(&s.mu)
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  device.DefaultLowInputLatency,
		},
		SampleRate:      sampRate,
		FramesPerBuffer: bufferSize,
	}

	stream, err := portaudio.OpenStream(params, s.onSamples)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("audiosource: open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("audiosource: start stream: %w", err)
	}

	s.stream = stream
	return s, nil
}

func resolveDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		return portaudio.DefaultInputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("audiosource: list devices: %w", err)
	}
	for _, d := range devices {
		if d.Name == name && d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("audiosource: input device %q not found", name)
}

// onSamples is PortAudio's callback, invoked on its own real-time thread.
func (s *Source) onSamples(in []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range in {
		s.samples = append(s.samples, complex(v, 0))
	}
	s.pos += len(in)

	if retain := retainSamplesMultiple * s.bufferSize; len(s.samples) > retain {
		drop := len(s.samples) - retain
		s.samples = s.samples[drop:]
		s.base += drop
	}

	s.cond.Broadcast()
}

// Wait implements worker.Consumer: it blocks until samples are available
// for cur, or the source has been closed (returning false). Pool.Submit
// calls this before every Callback invocation so a freshly bound task
// never sees AssertSamples's ok=false before the PortAudio callback has
// produced its first buffer.
func (s *Source) Wait(cur *worker.Cursor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		start := cur.Next() - s.base
		if start < 0 {
			start = 0
		}
		if start < len(s.samples) {
			return true
		}
		if s.closed {
			return false
		}
		s.cond.Wait()
	}
}

// AssertSamples implements worker.Consumer: it returns whatever has
// accumulated since cur's offset, or ok=false if nothing new has arrived.
// A cursor that has fallen behind the retained window is fast-forwarded to
// the oldest sample still available rather than failing outright.
func (s *Source) AssertSamples(cur *worker.Cursor) ([]complex64, *worker.Cursor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := cur.Next() - s.base
	if start < 0 {
		start = 0
	}
	if start >= len(s.samples) {
		return nil, cur, false
	}

	out := make([]complex64, len(s.samples)-start)
	copy(out, s.samples[start:])
	return out, worker.NewCursor(s.pos), true
}

// RemoveTask is a no-op: the source has no per-task state to release since
// every task shares the same accumulation buffer.
func (s *Source) RemoveTask(cur *worker.Cursor) {}

// Close stops the stream and tears down PortAudio.
func (s *Source) Close() error {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()

	if err := s.stream.Close(); err != nil {
		return err
	}
	return portaudio.Terminate()
}
