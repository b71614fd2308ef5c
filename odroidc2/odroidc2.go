// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// ODROID-C2 pin out.

package odroidc2

import (
	"errors"
	"strings"

	"periph.io/x/amlogic/s905"
	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/pin"
	"periph.io/x/conn/v3/pin/pinreg"
	"periph.io/x/host/v3/distro"
)

// Present returns true if an ODROID-C2 board is detected.
func Present() bool {
	if isArm {
		return strings.Contains(distro.DTModel(), "ODROID-C2")
	}

	return false
}

var (
	// AIN0 and AIN1 are the SAR ADC inputs on J2. They are not gpio.
	AIN0 pin.Pin = &pin.BasicPin{N: "AIN0"}
	AIN1 pin.Pin = &pin.BasicPin{N: "AIN1"}

	// J2 is the 40 pin expansion header.
	J2_1  pin.Pin    = pin.V3_3
	J2_2  pin.Pin    = pin.V5
	J2_3  gpio.PinIO = s905.GPIODV_24 // I2C0_SDA
	J2_4  pin.Pin    = pin.V5
	J2_5  gpio.PinIO = s905.GPIODV_25 // I2C0_SCL
	J2_6  pin.Pin    = pin.GROUND
	J2_7  gpio.PinIO = s905.GPIOX_21
	J2_8  gpio.PinIO = s905.GPIOX_12 // UART1_TX
	J2_9  pin.Pin    = pin.GROUND
	J2_10 gpio.PinIO = s905.GPIOX_13 // UART1_RX
	J2_11 gpio.PinIO = s905.GPIOX_19
	J2_12 gpio.PinIO = s905.GPIOX_10
	J2_13 gpio.PinIO = s905.GPIOX_11
	J2_14 pin.Pin    = pin.GROUND
	J2_15 gpio.PinIO = s905.GPIOX_9
	J2_16 gpio.PinIO = s905.GPIOX_8
	J2_17 pin.Pin    = pin.V3_3
	J2_18 gpio.PinIO = s905.GPIOX_5
	J2_19 gpio.PinIO = s905.GPIOX_7
	J2_20 pin.Pin    = pin.GROUND
	J2_21 gpio.PinIO = s905.GPIOX_4
	J2_22 gpio.PinIO = s905.GPIOX_3
	J2_23 gpio.PinIO = s905.GPIOX_2
	J2_24 gpio.PinIO = s905.GPIOX_1
	J2_25 pin.Pin    = pin.GROUND
	J2_26 gpio.PinIO = s905.GPIOY_14
	J2_27 gpio.PinIO = s905.GPIODV_26 // I2C1_SDA
	J2_28 gpio.PinIO = s905.GPIODV_27 // I2C1_SCL
	J2_29 gpio.PinIO = s905.GPIOX_0
	J2_30 pin.Pin    = pin.GROUND
	J2_31 gpio.PinIO = s905.GPIOY_8
	J2_32 gpio.PinIO = s905.GPIOY_13
	J2_33 gpio.PinIO = s905.GPIOX_6
	J2_34 pin.Pin    = pin.GROUND
	J2_35 gpio.PinIO = s905.GPIOY_3
	J2_36 gpio.PinIO = s905.GPIOY_7
	J2_37 pin.Pin    = AIN1
	J2_38 pin.Pin    = pin.V1_8
	J2_39 pin.Pin    = pin.GROUND
	J2_40 pin.Pin    = AIN0

	// J7 is the 7 pin always-on header. Its pads keep working in suspend and
	// are driven through the AO register bank, so they need root.
	J7_1 pin.Pin    = pin.GROUND
	J7_2 pin.Pin    = pin.V5
	J7_3 gpio.PinIO = s905.GPIOAO_6
	J7_4 gpio.PinIO = s905.GPIOAO_10
	J7_5 gpio.PinIO = s905.GPIOAO_9
	J7_6 gpio.PinIO = s905.GPIOAO_8
	J7_7 gpio.PinIO = s905.GPIOAO_7 // IR_IN

	// UART is the 4 pin serial console header.
	UART_1 pin.Pin    = pin.GROUND
	UART_2 gpio.PinIO = s905.GPIOAO_0 // UART0_TX
	UART_3 gpio.PinIO = s905.GPIOAO_1 // UART0_RX
	UART_4 pin.Pin    = pin.V3_3
)

// registerHeaders registers the physical headers.
func registerHeaders() error {
	if err := pinreg.Register("J2", [][]pin.Pin{
		{J2_1, J2_2},
		{J2_3, J2_4},
		{J2_5, J2_6},
		{J2_7, J2_8},
		{J2_9, J2_10},
		{J2_11, J2_12},
		{J2_13, J2_14},
		{J2_15, J2_16},
		{J2_17, J2_18},
		{J2_19, J2_20},
		{J2_21, J2_22},
		{J2_23, J2_24},
		{J2_25, J2_26},
		{J2_27, J2_28},
		{J2_29, J2_30},
		{J2_31, J2_32},
		{J2_33, J2_34},
		{J2_35, J2_36},
		{J2_37, J2_38},
		{J2_39, J2_40},
	}); err != nil {
		return err
	}

	if err := pinreg.Register("J7", [][]pin.Pin{
		{J7_1},
		{J7_2},
		{J7_3},
		{J7_4},
		{J7_5},
		{J7_6},
		{J7_7},
	}); err != nil {
		return err
	}

	return pinreg.Register("UART", [][]pin.Pin{
		{UART_1},
		{UART_2},
		{UART_3},
		{UART_4},
	})
}

// driver implements periph.Driver.
type driver struct {
}

// String is the text representation of the board.
func (d *driver) String() string {
	return "odroidc2"
}

// Prerequisites load drivers before the actual driver is loaded. For
// this board, we do not need any prerequisites.
func (d *driver) Prerequisites() []string {
	return nil
}

// After this driver is loaded, we need to load the S905 driver for the
// GPIO pins the headers are built from.
func (d *driver) After() []string {
	return []string{"s905-gpio"}
}

// Init initializes the driver by checking its presence and if found, the
// driver will be registered.
func (d *driver) Init() (bool, error) {
	if !Present() {
		return false, errors.New("board ODROID-C2 not detected")
	}

	err := registerHeaders()
	return true, err
}

// init register the driver.
func init() {
	if isArm {
		driverreg.MustRegister(&drv)
	}
}

var drv driver
