// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package s905 drives the GPIO pads of the Amlogic S905 (meson-gxbb) SoC,
// the processor of the ODROID-C2, through its memory mapped pad controller
// registers.
//
// Going through the registers keeps a pin access in the sub-microsecond
// range, fast enough to bit bang protocols that a syscall per toggle cannot
// reach. Direction, level and pull changes are read-modify-write sequences
// on words shared by a whole pad group; the package serializes them per
// register bank so concurrent pin updates cannot drop each other's bits.
// Plain reads and level writes on an already configured output stay a single
// register access.
//
// Pins are reachable three ways: the package level variables (GPIOX_21 and
// friends) once the host driver initialized, gpioreg lookups by name, number
// or "GPIO249" style alias, and an explicit Chip instance. A Chip owns its
// own register mappings, which is also how tests run the controller against
// gpiomem.Slice simulated banks instead of hardware.
//
// The GPIOAO pads sit in the always-on power domain whose registers are only
// exported through /dev/mem, so they need root; the other groups work over
// /dev/gpiomem.
//
// Edge detection is not done in this block; In and WaitForEdge delegate
// edges to the kernel exported sysfs pin when the sysfs-gpio driver loaded.
package s905
