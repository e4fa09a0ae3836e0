// Package rig is an optional rig-tuning convenience invoked from OPEN: when
// a channel's center frequency should also retune a physical receiver, this
// package drives it through Hamlib via the goHamlib binding.
package rig

import (
	"fmt"
	"sync"

	hamlib "github.com/xylo04/goHamlib"
)

// Controller retunes a single Hamlib-controlled rig. Safe for concurrent
// use: Hamlib's own rig handle is not thread-safe, so every call is
// serialized behind a mutex.
type Controller struct {
	mu  sync.Mutex
	rig hamlib.Rig
}

// Open initializes a rig of the given Hamlib model id, attached at device
// (e.g. "/dev/ttyUSB0").
func Open(model int, device string) (*Controller, error) {
	c := &Controller{}
	if err := c.rig.Init(model); err != nil {
		return nil, fmt.Errorf("rig: init model %d: %w", model, err)
	}
	c.rig.SetPort(hamlib.Port{
		RigPortType: hamlib.RigPortSerial,
		Portname:    device,
		Baudrate:    38400,
		Databits:    8,
		Stopbits:    1,
		Parity:      hamlib.ParityNone,
		Handshake:   hamlib.HandshakeNone,
	})
	if err := c.rig.Open(); err != nil {
		c.rig.Cleanup()
		return nil, fmt.Errorf("rig: open model %d on %s: %w", model, device, err)
	}
	return c, nil
}

// Tune sets the rig's current-VFO frequency to centerHz, the one piece of
// physical-world information an OPEN's channel carries.
func (c *Controller) Tune(centerHz float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rig.SetFreq(hamlib.VfoCurr, centerHz); err != nil {
		return fmt.Errorf("rig: set freq %v: %w", centerHz, err)
	}
	return nil
}

// Close releases the rig handle.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.rig.Close(); err != nil {
		return err
	}
	return c.rig.Cleanup()
}
