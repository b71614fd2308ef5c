//go:build !linux

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.
//
// Physical register banks are a Linux kernel surface; elsewhere only Slice
// backed Maps work.

package gpiomem

import "fmt"

// Open fails on this OS. Use Slice for simulated registers.
func Open(b Bank) (*Map, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("gpiomem: %s: no register access on this OS: %w", &b, ErrMapFailed)
}

func munmap(b []byte) error {
	return nil
}
