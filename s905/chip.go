// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package s905

import (
	"errors"
	"fmt"
	"os"

	"periph.io/x/amlogic/gpiomem"
)

// Chip is a pad controller instance bound to explicitly owned register
// mappings, independent of the process wide pins the host driver manages.
//
// The zero value is not usable; construct one with Open or NewChip. A Chip
// owns the maps it was built on and releases them in Close.
type Chip struct {
	periphs  *gpiomem.Map
	ao       *gpiomem.Map
	pins     []*Pin
	byName   map[string]*Pin
	byNumber map[int]*Pin
}

// Open maps the S905 register banks and returns a Chip driving them.
//
// The peripherals bank comes from /dev/gpiomem when the process is not root.
// The always-on bank is only exported through /dev/mem, so without root the
// GPIOAO pads come out unavailable.
//
// A process should keep at most one Chip per bank; duplicate mappings are
// not unsafe at the OS level but bypass the per bank write serialization.
func Open() (*Chip, error) {
	periphs, ao, err := openBanks()
	if err != nil {
		return nil, err
	}
	return NewChip(periphs, ao)
}

// NewChip builds a pad controller over already mapped register banks and
// takes ownership of them.
//
// periphs backs the GPIODV, GPIOY and GPIOX groups and is required. ao backs
// the GPIOAO group and may be nil, leaving those pads unavailable.
//
// Handing in gpiomem.Slice maps yields a controller over simulated
// registers.
func NewChip(periphs, ao *gpiomem.Map) (*Chip, error) {
	if periphs == nil {
		return nil, errors.New("s905-gpio: the periphs bank map is required")
	}
	pins, err := makePins()
	if err != nil {
		return nil, err
	}
	bind(pins, periphs, ao)
	c := &Chip{
		periphs:  periphs,
		ao:       ao,
		pins:     pins,
		byName:   make(map[string]*Pin, len(pins)),
		byNumber: make(map[int]*Pin, len(pins)),
	}
	for _, p := range pins {
		c.byName[p.name] = p
		c.byNumber[p.number] = p
	}
	return c, nil
}

func (c *Chip) String() string {
	return fmt.Sprintf("s905(%s)", c.periphs)
}

// Pins enumerates the pads, ordered by number.
func (c *Chip) Pins() []*Pin {
	return c.pins
}

// PinByName returns the pad with the given name, like "GPIOX_21", or
// ErrUnknownPin.
func (c *Chip) PinByName(name string) (*Pin, error) {
	if p := c.byName[name]; p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("s905-gpio: no pin named %q: %w", name, ErrUnknownPin)
}

// PinByNumber returns the pad with the given Linux GPIO number, or
// ErrUnknownPin. Numbers of groups the controller does not expose (GPIOZ,
// GPIOH, BOOT, CARD) are unknown even though they exist in silicon.
func (c *Chip) PinByNumber(n int) (*Pin, error) {
	if p := c.byNumber[n]; p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("s905-gpio: no pin number %d: %w", n, ErrUnknownPin)
}

// Close releases both register mappings. It is idempotent; pin operations
// after Close fail.
func (c *Chip) Close() error {
	err := c.periphs.Close()
	if c.ao != nil {
		if err2 := c.ao.Close(); err == nil {
			err = err2
		}
	}
	return err
}

// bankMap returns the Map backing a bank, nil when unmapped.
func (c *Chip) bankMap(id bankID) *gpiomem.Map {
	if id == bankAO {
		return c.ao
	}
	return c.periphs
}

// openBanks maps the hardware register banks, resolving relocated base
// addresses from the platform bus. The always-on bank needs /dev/mem and is
// skipped without root.
func openBanks() (periphs, ao *gpiomem.Map, err error) {
	pb, ab := gpioBanks()
	if periphs, err = gpiomem.Open(pb); err != nil {
		return nil, nil, err
	}
	if os.Geteuid() == 0 {
		if ao, err = gpiomem.Open(ab); err != nil {
			_ = periphs.Close()
			return nil, nil, err
		}
	}
	return periphs, ao, nil
}
