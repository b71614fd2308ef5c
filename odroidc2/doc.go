// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package odroidc2 contains Hardkernel ODROID-C2 hardware logic.
//
// Requires a device tree enabled kernel.
//
// # Physical
//
// https://wiki.odroid.com/odroid-c2/hardware/hardware
package odroidc2
