// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package s905

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"periph.io/x/amlogic/gpiomem"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
	"periph.io/x/host/v3/distro"
	"periph.io/x/host/v3/sysfs"
)

// Errors returned by pin and Chip operations, wrapped with the pin context.
// Match with errors.Is.
var (
	// ErrUnknownPin is returned when resolving a name or number the pad
	// controller does not expose.
	ErrUnknownPin = errors.New("unknown pin")
	// ErrUnsupportedFunc is returned by SetFunc for a function the pad cannot
	// be routed to.
	ErrUnsupportedFunc = errors.New("unsupported function")
	// ErrUnsupportedPull is returned when the pad has no pull resistors or the
	// pull value is not valid.
	ErrUnsupportedPull = errors.New("unsupported pull")
	// ErrWrongDirection is returned by Write on a pin not configured as
	// output.
	ErrWrongDirection = errors.New("pin is not configured as output")
	// ErrUnavailable is returned for pads whose register bank is not mapped,
	// like the GPIOAO group without root.
	ErrUnavailable = errors.New("pad register bank is not mapped")
	// ErrNotInitialized is returned when using the package level pins before
	// host initialization succeeded.
	ErrNotInitialized = errors.New("s905-gpio is not initialized")
)

// Dir is the configured direction of a pad.
type Dir uint8

const (
	// DirUnset means no direction was configured through this process yet.
	DirUnset Dir = iota
	// DirIn releases the pad driver and samples the pad.
	DirIn
	// DirOut drives the pad with the level set by Write or Out.
	DirOut
)

func (d Dir) String() string {
	switch d {
	case DirIn:
		return "In"
	case DirOut:
		return "Out"
	default:
		return "Unset"
	}
}

// muxFunc is one alternate function of a pad and the function select bit
// routing the pad to it.
type muxFunc struct {
	f      pin.Func
	offset uint32 // byte offset of the select word in the pad's bank
	bit    uint
}

// muxMask is the set of a pad's function select bits within one word.
// Clearing all of a pad's masks hands the pad to the gpio block.
type muxMask struct {
	offset uint32
	mask   uint32
}

// Pin is a single S905 pad, driven through the mapped registers of its
// group.
//
// A Pin is usable once the host driver or a Chip bound it to a register
// bank. Operations on an unbound Pin fail with ErrNotInitialized, operations
// on a pad whose bank could not be mapped fail with ErrUnavailable.
//
// Methods are safe for concurrent use.
type Pin struct {
	// Descriptor data, immutable after construction.
	name      string
	number    int
	group     *group
	pad       uint
	altFunc   []muxFunc
	gpioClear []muxMask

	// Set once when bound to a controller.
	mem      *gpiomem.Map // register bank; nil while unbound or unavailable
	bound    bool
	sysfsPin *sysfs.Pin // kernel fallback for edge detection; may be nil

	mu        sync.Mutex // pairs register updates with the tracked state below
	direction Dir        // last direction configured through this Pin
	usingEdge bool       // edge detection is delegated to sysfsPin
}

// String implements conn.Resource.
func (p *Pin) String() string {
	return p.name
}

// Halt implements conn.Resource.
//
// It stops edge detection if enabled.
func (p *Pin) Halt() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.haltEdge()
}

// Name implements pin.Pin.
func (p *Pin) Name() string {
	return p.name
}

// Number implements pin.Pin.
//
// It is the Linux GPIO number of the pad on the ODROID-C2 kernel.
func (p *Pin) Number() int {
	return p.number
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	return string(p.Func())
}

// Func implements pin.PinFunc.
//
// The routing is read back from the registers: the selected alternate
// function if any, otherwise the gpio direction and current level.
func (p *Pin) Func() pin.Func {
	if p.mem == nil {
		return pin.FuncNone
	}
	for _, f := range p.altFunc {
		w, err := p.mem.ReadWord(f.offset)
		if err != nil {
			return pin.FuncNone
		}
		if w&(1<<f.bit) != 0 {
			return f.f
		}
	}
	oen, err := p.mem.ReadWord(p.group.regs.oen)
	if err != nil {
		return pin.FuncNone
	}
	if oen&p.bit(p.group.regs.oenBit) != 0 {
		if p.Read() {
			return gpio.IN_HIGH
		}
		return gpio.IN_LOW
	}
	if p.Read() {
		return gpio.OUT_HIGH
	}
	return gpio.OUT_LOW
}

// SupportedFuncs implements pin.PinFunc.
func (p *Pin) SupportedFuncs() []pin.Func {
	fs := make([]pin.Func, 0, 2+len(p.altFunc))
	fs = append(fs, gpio.IN, gpio.OUT)
	for _, f := range p.altFunc {
		fs = append(fs, f.f)
	}
	return fs
}

// SetFunc implements pin.PinFunc.
//
// Routing an alternate function invalidates the tracked gpio direction, so a
// later Write fails until the direction is configured again.
func (p *Pin) SetFunc(f pin.Func) error {
	switch f {
	case gpio.IN:
		return p.In(gpio.PullNoChange, gpio.NoEdge)
	case gpio.OUT_HIGH:
		return p.Out(gpio.High)
	case gpio.OUT, gpio.OUT_LOW:
		return p.Out(gpio.Low)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ready(); err != nil {
		return p.wrap(err)
	}
	for _, alt := range p.altFunc {
		if alt.f != f {
			continue
		}
		if err := p.haltEdge(); err != nil {
			return err
		}
		if err := p.selectFunc(&alt); err != nil {
			return p.wrap(err)
		}
		p.direction = DirUnset
		return nil
	}
	return p.wrap(fmt.Errorf("%s: %w", f, ErrUnsupportedFunc))
}

// In implements gpio.PinIn.
//
// It routes the pad to gpio, switches it to input and applies pull. Edge
// detection is delegated to the kernel exported pin when the sysfs-gpio
// driver provides one; without it only polling works.
func (p *Pin) In(pull gpio.Pull, edge gpio.Edge) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ready(); err != nil {
		return p.wrap(err)
	}
	if p.usingEdge && edge == gpio.NoEdge {
		if err := p.haltEdge(); err != nil {
			return err
		}
	}
	if err := p.routeGPIO(); err != nil {
		return p.wrap(err)
	}
	if err := p.setDirection(DirIn); err != nil {
		return p.wrap(err)
	}
	if pull != gpio.PullNoChange {
		if err := p.setPull(pull); err != nil {
			return p.wrap(err)
		}
	}
	if edge != gpio.NoEdge {
		if p.sysfsPin == nil {
			return p.wrap(fmt.Errorf("pin %d is not exported by sysfs, no edge detection", p.number))
		}
		if err := p.sysfsPin.In(gpio.PullNoChange, edge); err != nil {
			return p.wrap(err)
		}
		p.usingEdge = true
	}
	return nil
}

// Read implements gpio.PinIn.
//
// The level register is read on every call, never cached. It reflects the
// driven level when the pad is an output.
func (p *Pin) Read() gpio.Level {
	if p.mem == nil {
		return gpio.Low
	}
	w, err := p.mem.ReadWord(p.group.regs.in)
	if err != nil {
		return gpio.Low
	}
	return w&p.bit(p.group.regs.inBit) != 0
}

// WaitForEdge implements gpio.PinIn.
//
// Edges run through the kernel exported pin; without one it returns false
// immediately.
func (p *Pin) WaitForEdge(timeout time.Duration) bool {
	if p.sysfsPin != nil {
		return p.sysfsPin.WaitForEdge(timeout)
	}
	return false
}

// Pull implements gpio.PinIn.
//
// The pull configuration is read back from the registers, PullNoChange when
// it cannot be read.
func (p *Pin) Pull() gpio.Pull {
	if p.mem == nil || !p.group.pulls {
		return gpio.PullNoChange
	}
	puen, err := p.mem.ReadWord(p.group.regs.puen)
	if err != nil {
		return gpio.PullNoChange
	}
	if puen&p.bit(p.group.regs.puenBit) == 0 {
		return gpio.Float
	}
	pupd, err := p.mem.ReadWord(p.group.regs.pupd)
	if err != nil {
		return gpio.PullNoChange
	}
	if pupd&p.bit(p.group.regs.pupdBit) != 0 {
		return gpio.PullUp
	}
	return gpio.PullDown
}

// DefaultPull implements gpio.PinIn.
//
// The reset pull state of the pads is not modeled.
func (p *Pin) DefaultPull() gpio.Pull {
	return gpio.PullNoChange
}

// Out implements gpio.PinOut.
//
// On the first call after input or alternate function routing it configures
// the pad as a gpio output. The level is loaded before the direction flips
// so the pad never drives a stale level.
func (p *Pin) Out(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ready(); err != nil {
		return p.wrap(err)
	}
	if p.direction == DirOut {
		if err := p.writeOut(l); err != nil {
			return p.wrap(err)
		}
		return nil
	}
	if err := p.haltEdge(); err != nil {
		return err
	}
	if err := p.routeGPIO(); err != nil {
		return p.wrap(err)
	}
	if err := p.writeOut(l); err != nil {
		return p.wrap(err)
	}
	if err := p.setDirection(DirOut); err != nil {
		return p.wrap(err)
	}
	return nil
}

// PWM implements gpio.PinOut.
//
// The S905 PWM controllers are not supported; drive the pad in software.
func (p *Pin) PWM(gpio.Duty, physic.Frequency) error {
	return p.wrap(errors.New("pwm is not supported"))
}

//

// SetDirection configures the pad as gpio input or output through the output
// enable register and tracks the result for Write.
func (p *Pin) SetDirection(d Dir) error {
	if d != DirIn && d != DirOut {
		return p.wrap(fmt.Errorf("invalid direction %s", d))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ready(); err != nil {
		return p.wrap(err)
	}
	if err := p.setDirection(d); err != nil {
		return p.wrap(err)
	}
	return nil
}

// Direction returns the direction tracked from the last SetDirection, In or
// Out call made through this Pin. It is DirUnset before the first call and
// after alternate function routing; the hardware is not re-read.
func (p *Pin) Direction() Dir {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.direction
}

// Write drives the output level of a pad previously set to DirOut.
//
// This is the bit banging hot path: a single serialized read-modify-write on
// the output register. The direction check uses the tracked state, not a
// register read; Write fails with ErrWrongDirection when the last direction
// configured through this Pin is not output.
func (p *Pin) Write(l gpio.Level) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ready(); err != nil {
		return p.wrap(err)
	}
	if p.direction != DirOut {
		return p.wrap(fmt.Errorf("direction is %s: %w", p.direction, ErrWrongDirection))
	}
	if err := p.writeOut(l); err != nil {
		return p.wrap(err)
	}
	return nil
}

// SetPull configures the pad's pull resistor independently of its direction.
// PullNoChange leaves the rails alone, Float disables them.
func (p *Pin) SetPull(pull gpio.Pull) error {
	if pull == gpio.PullNoChange {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ready(); err != nil {
		return p.wrap(err)
	}
	if err := p.setPull(pull); err != nil {
		return p.wrap(err)
	}
	return nil
}

//

// ready reports whether the pad can be driven.
func (p *Pin) ready() error {
	if p.mem == nil {
		if p.bound {
			return ErrUnavailable
		}
		return ErrNotInitialized
	}
	return nil
}

// bit returns the pad's mask inside a register class whose pad 0 sits at
// base.
func (p *Pin) bit(base uint) uint32 {
	return 1 << (base + p.pad)
}

// routeGPIO clears the pad's function select bits, handing the pad to the
// gpio block.
//
// mu must be held.
func (p *Pin) routeGPIO() error {
	for _, m := range p.gpioClear {
		if err := p.mem.ModifyWord(m.offset, m.mask, 0); err != nil {
			return fmt.Errorf("function select: %w", err)
		}
	}
	return nil
}

// selectFunc routes the pad to one alternate function, clearing the pad's
// other select bits.
//
// mu must be held.
func (p *Pin) selectFunc(f *muxFunc) error {
	for _, m := range p.gpioClear {
		bits := uint32(0)
		if m.offset == f.offset {
			bits = 1 << f.bit
		}
		if err := p.mem.ModifyWord(m.offset, m.mask, bits); err != nil {
			return fmt.Errorf("function select: %w", err)
		}
	}
	return nil
}

// setDirection performs the output enable read-modify-write and updates the
// tracked direction. The output enable bit reads 1 for input.
//
// mu must be held.
func (p *Pin) setDirection(d Dir) error {
	bits := uint32(0)
	if d == DirIn {
		bits = p.bit(p.group.regs.oenBit)
	}
	if err := p.mem.ModifyWord(p.group.regs.oen, p.bit(p.group.regs.oenBit), bits); err != nil {
		return fmt.Errorf("direction: %w", err)
	}
	p.direction = d
	return nil
}

// writeOut performs the output level read-modify-write.
//
// mu must be held.
func (p *Pin) writeOut(l gpio.Level) error {
	bits := uint32(0)
	if l {
		bits = p.bit(p.group.regs.outBit)
	}
	if err := p.mem.ModifyWord(p.group.regs.out, p.bit(p.group.regs.outBit), bits); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	return nil
}

// setPull configures the pull rails, select bit first, enable second, so the
// wrong rail is never powered.
//
// mu must be held.
func (p *Pin) setPull(pull gpio.Pull) error {
	if !p.group.pulls {
		return fmt.Errorf("%s: %w", pull, ErrUnsupportedPull)
	}
	puen := p.bit(p.group.regs.puenBit)
	pupd := p.bit(p.group.regs.pupdBit)
	switch pull {
	case gpio.Float:
		if err := p.mem.ModifyWord(p.group.regs.puen, puen, 0); err != nil {
			return fmt.Errorf("pull enable: %w", err)
		}
	case gpio.PullUp:
		if err := p.mem.ModifyWord(p.group.regs.pupd, pupd, pupd); err != nil {
			return fmt.Errorf("pull select: %w", err)
		}
		if err := p.mem.ModifyWord(p.group.regs.puen, puen, puen); err != nil {
			return fmt.Errorf("pull enable: %w", err)
		}
	case gpio.PullDown:
		if err := p.mem.ModifyWord(p.group.regs.pupd, pupd, 0); err != nil {
			return fmt.Errorf("pull select: %w", err)
		}
		if err := p.mem.ModifyWord(p.group.regs.puen, puen, puen); err != nil {
			return fmt.Errorf("pull enable: %w", err)
		}
	default:
		return fmt.Errorf("%s: %w", pull, ErrUnsupportedPull)
	}
	return nil
}

// haltEdge stops any ongoing edge detection.
//
// mu must be held.
func (p *Pin) haltEdge() error {
	if !p.usingEdge {
		return nil
	}
	if err := p.sysfsPin.Halt(); err != nil {
		return p.wrap(err)
	}
	p.usingEdge = false
	return nil
}

func (p *Pin) wrap(err error) error {
	return fmt.Errorf("s905-gpio (%s): %w", p, err)
}

//

// Present returns true if the host is running on an Amlogic S905
// (meson-gxbb).
func Present() bool {
	if isArm {
		for _, c := range distro.DTCompatible() {
			if strings.Contains(c, "meson-gxbb") || strings.Contains(strings.ToLower(c), "odroid-c2") {
				return true
			}
		}
	}
	return false
}

// bind points every pin at the mapped bank backing its pad group. A nil map
// leaves that group's pads unavailable.
func bind(pins []*Pin, periphs, ao *gpiomem.Map) {
	for _, p := range pins {
		switch p.group.bank {
		case bankPeriphs:
			p.mem = periphs
		case bankAO:
			p.mem = ao
		}
		p.bound = true
	}
}

// driverGPIO implements periph.Driver.
type driverGPIO struct {
	periphs *gpiomem.Map
	ao      *gpiomem.Map
}

func (d *driverGPIO) String() string {
	return "s905-gpio"
}

func (d *driverGPIO) Prerequisites() []string {
	return nil
}

func (d *driverGPIO) After() []string {
	// sysfs-gpio provides the edge detection fallback and registers the
	// kernel view of the pads, which Init takes over.
	return []string{"sysfs-gpio"}
}

// Init maps the pad controller register banks and registers the pins.
//
// The always-on bank is only reachable through /dev/mem; without root the
// GPIOAO pads are left unavailable instead of failing the whole driver.
func (d *driverGPIO) Init() (bool, error) {
	if !Present() {
		return false, errors.New("Amlogic S905 CPU not detected")
	}
	periphs, ao, err := openBanks()
	if err != nil {
		return true, err
	}
	d.periphs, d.ao = periphs, ao
	if err := applyPinSpecs(cpupins); err != nil {
		return true, err
	}
	bind(cpupins, periphs, ao)
	for _, p := range cpupins {
		p.sysfsPin = sysfs.Pins[p.number]
		num := strconv.Itoa(p.number)
		// sysfs-gpio ran first and registered the kernel view of the pad;
		// take the entries over so lookups resolve to the memory mapped pin.
		_ = gpioreg.Unregister("GPIO" + num)
		_ = gpioreg.Unregister(num)
		if err := gpioreg.Register(p); err != nil {
			return true, err
		}
		if err := gpioreg.RegisterAlias("GPIO"+num, p.name); err != nil {
			return true, err
		}
		if err := gpioreg.RegisterAlias(num, p.name); err != nil {
			return true, err
		}
	}
	return true, nil
}

func init() {
	if isArm {
		driverreg.MustRegister(&drvGPIO)
	}
}

var drvGPIO driverGPIO

var _ conn.Resource = &Pin{}
var _ gpio.PinIn = &Pin{}
var _ gpio.PinOut = &Pin{}
var _ gpio.PinIO = &Pin{}
var _ pin.PinFunc = &Pin{}
