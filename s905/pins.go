// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// This file materializes the pad table and attaches the alternate function
// data embedded in s905_pins.json.

package s905

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"periph.io/x/conn/v3/pin"
)

// Alternate function assignments, one entry per pad that has any. Each
// function names the bit inside the controller's function select block that
// routes the pad to it; clearing all of a pad's function bits hands the pad
// to the gpio block.
//
// Pads used purely as gpio on supported boards carry no entry.
//
//go:embed s905_pins.json
var pinsSpec []byte

type funcSpec struct {
	Func pin.Func
	Reg  int // function select word index within the group's block
	Bit  uint
}

type pinSpec struct {
	Name  string
	Funcs []funcSpec
}

func getPinSpecs() ([]pinSpec, error) {
	var specs []pinSpec
	err := json.Unmarshal(pinsSpec, &specs)
	return specs, err
}

// applyPinSpecs attaches the serialized alternate functions to the matching
// pins.
func applyPinSpecs(pins []*Pin) error {
	specs, err := getPinSpecs()
	if err != nil {
		return fmt.Errorf("s905-gpio: decoding pin specs: %v", err)
	}
	byName := make(map[string]*Pin, len(pins))
	for _, p := range pins {
		byName[p.name] = p
	}
	for _, spec := range specs {
		p := byName[spec.Name]
		if p == nil {
			return fmt.Errorf("s905-gpio: pin spec %q names an unknown pad", spec.Name)
		}
		p.altFunc = make([]muxFunc, 0, len(spec.Funcs))
		selects := map[uint32]uint32{}
		for _, f := range spec.Funcs {
			if f.Reg < 0 || f.Bit > 31 {
				return fmt.Errorf("s905-gpio: pin spec %q: bad function select %d/%d", spec.Name, f.Reg, f.Bit)
			}
			off := p.group.muxOffset(f.Reg)
			p.altFunc = append(p.altFunc, muxFunc{f: f.Func, offset: off, bit: f.Bit})
			selects[off] |= 1 << f.Bit
		}
		p.gpioClear = make([]muxMask, 0, len(selects))
		for off, mask := range selects {
			p.gpioClear = append(p.gpioClear, muxMask{offset: off, mask: mask})
		}
	}
	return nil
}

// makeBasePins builds one Pin per pad in the group table. The pins come out
// unbound; a Chip adopts them and applyPinSpecs attaches function data.
func makeBasePins() []*Pin {
	var pins []*Pin
	for _, g := range groups {
		for i := uint(0); i < g.pads; i++ {
			pins = append(pins, &Pin{
				name:   fmt.Sprintf("%s_%d", g.name, i),
				number: g.base + int(i),
				group:  g,
				pad:    i,
			})
		}
	}
	return pins
}

func makePins() ([]*Pin, error) {
	pins := makeBasePins()
	if err := applyPinSpecs(pins); err != nil {
		return nil, err
	}
	return pins, nil
}

// cpupins is the process wide pin set behind the package level variables.
// The hardware driver binds it to the register banks at load time.
var cpupins = makeBasePins()

func cpuPin(name string) *Pin {
	for _, p := range cpupins {
		if p.name == name {
			return p
		}
	}
	panic("s905: unknown cpu pin " + name)
}

// The CPU pads. Board packages hand them out under header positions; the
// hardware driver registers them in gpioreg. Before the driver runs their
// operations fail with ErrNotInitialized.
var (
	GPIOAO_0  = cpuPin("GPIOAO_0")
	GPIOAO_1  = cpuPin("GPIOAO_1")
	GPIOAO_2  = cpuPin("GPIOAO_2")
	GPIOAO_3  = cpuPin("GPIOAO_3")
	GPIOAO_4  = cpuPin("GPIOAO_4")
	GPIOAO_5  = cpuPin("GPIOAO_5")
	GPIOAO_6  = cpuPin("GPIOAO_6")
	GPIOAO_7  = cpuPin("GPIOAO_7")
	GPIOAO_8  = cpuPin("GPIOAO_8")
	GPIOAO_9  = cpuPin("GPIOAO_9")
	GPIOAO_10 = cpuPin("GPIOAO_10")
	GPIOAO_11 = cpuPin("GPIOAO_11")
	GPIOAO_12 = cpuPin("GPIOAO_12")
	GPIOAO_13 = cpuPin("GPIOAO_13")

	GPIODV_0  = cpuPin("GPIODV_0")
	GPIODV_1  = cpuPin("GPIODV_1")
	GPIODV_2  = cpuPin("GPIODV_2")
	GPIODV_3  = cpuPin("GPIODV_3")
	GPIODV_4  = cpuPin("GPIODV_4")
	GPIODV_5  = cpuPin("GPIODV_5")
	GPIODV_6  = cpuPin("GPIODV_6")
	GPIODV_7  = cpuPin("GPIODV_7")
	GPIODV_8  = cpuPin("GPIODV_8")
	GPIODV_9  = cpuPin("GPIODV_9")
	GPIODV_10 = cpuPin("GPIODV_10")
	GPIODV_11 = cpuPin("GPIODV_11")
	GPIODV_12 = cpuPin("GPIODV_12")
	GPIODV_13 = cpuPin("GPIODV_13")
	GPIODV_14 = cpuPin("GPIODV_14")
	GPIODV_15 = cpuPin("GPIODV_15")
	GPIODV_16 = cpuPin("GPIODV_16")
	GPIODV_17 = cpuPin("GPIODV_17")
	GPIODV_18 = cpuPin("GPIODV_18")
	GPIODV_19 = cpuPin("GPIODV_19")
	GPIODV_20 = cpuPin("GPIODV_20")
	GPIODV_21 = cpuPin("GPIODV_21")
	GPIODV_22 = cpuPin("GPIODV_22")
	GPIODV_23 = cpuPin("GPIODV_23")
	GPIODV_24 = cpuPin("GPIODV_24")
	GPIODV_25 = cpuPin("GPIODV_25")
	GPIODV_26 = cpuPin("GPIODV_26")
	GPIODV_27 = cpuPin("GPIODV_27")
	GPIODV_28 = cpuPin("GPIODV_28")
	GPIODV_29 = cpuPin("GPIODV_29")

	GPIOY_0  = cpuPin("GPIOY_0")
	GPIOY_1  = cpuPin("GPIOY_1")
	GPIOY_2  = cpuPin("GPIOY_2")
	GPIOY_3  = cpuPin("GPIOY_3")
	GPIOY_4  = cpuPin("GPIOY_4")
	GPIOY_5  = cpuPin("GPIOY_5")
	GPIOY_6  = cpuPin("GPIOY_6")
	GPIOY_7  = cpuPin("GPIOY_7")
	GPIOY_8  = cpuPin("GPIOY_8")
	GPIOY_9  = cpuPin("GPIOY_9")
	GPIOY_10 = cpuPin("GPIOY_10")
	GPIOY_11 = cpuPin("GPIOY_11")
	GPIOY_12 = cpuPin("GPIOY_12")
	GPIOY_13 = cpuPin("GPIOY_13")
	GPIOY_14 = cpuPin("GPIOY_14")
	GPIOY_15 = cpuPin("GPIOY_15")
	GPIOY_16 = cpuPin("GPIOY_16")

	GPIOX_0  = cpuPin("GPIOX_0")
	GPIOX_1  = cpuPin("GPIOX_1")
	GPIOX_2  = cpuPin("GPIOX_2")
	GPIOX_3  = cpuPin("GPIOX_3")
	GPIOX_4  = cpuPin("GPIOX_4")
	GPIOX_5  = cpuPin("GPIOX_5")
	GPIOX_6  = cpuPin("GPIOX_6")
	GPIOX_7  = cpuPin("GPIOX_7")
	GPIOX_8  = cpuPin("GPIOX_8")
	GPIOX_9  = cpuPin("GPIOX_9")
	GPIOX_10 = cpuPin("GPIOX_10")
	GPIOX_11 = cpuPin("GPIOX_11")
	GPIOX_12 = cpuPin("GPIOX_12")
	GPIOX_13 = cpuPin("GPIOX_13")
	GPIOX_14 = cpuPin("GPIOX_14")
	GPIOX_15 = cpuPin("GPIOX_15")
	GPIOX_16 = cpuPin("GPIOX_16")
	GPIOX_17 = cpuPin("GPIOX_17")
	GPIOX_18 = cpuPin("GPIOX_18")
	GPIOX_19 = cpuPin("GPIOX_19")
	GPIOX_20 = cpuPin("GPIOX_20")
	GPIOX_21 = cpuPin("GPIOX_21")
	GPIOX_22 = cpuPin("GPIOX_22")
)
