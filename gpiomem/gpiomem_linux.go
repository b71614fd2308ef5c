//go:build linux

// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiomem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
	"kernel.org/pub/linux/libs/security/libcap/cap"
)

const (
	devMem     = "/dev/mem"
	devGPIOMem = "/dev/gpiomem"
)

// Open maps the bank into the process address space.
//
// Root goes straight to /dev/mem so banks outside the window exported by the
// gpiomem driver stay reachable; everybody else goes through /dev/gpiomem.
// Either device is opened read-write with O_SYNC so stores reach the
// registers uncached. The mapping is page aligned internally; offsets into
// the returned Map are relative to Bank.PhysAddr.
func Open(b Bank) (*Map, error) {
	if err := b.check(); err != nil {
		return nil, err
	}
	dev := devGPIOMem
	if os.Geteuid() == 0 {
		dev = devMem
	}
	f, err := os.OpenFile(dev, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("gpiomem: opening %s for %s: %v; %s: %w", dev, &b, err, permissionHint(dev), ErrPermission)
		case errors.Is(err, fs.ErrNotExist) && dev == devGPIOMem:
			return nil, fmt.Errorf("gpiomem: %s does not exist and the process is not root: %w", dev, ErrPermission)
		default:
			return nil, fmt.Errorf("gpiomem: opening %s for %s: %v: %w", dev, &b, err, ErrMapFailed)
		}
	}

	pageSize := uint64(os.Getpagesize())
	base := b.PhysAddr &^ (pageSize - 1)
	shift := int(b.PhysAddr - base)
	length := (shift + b.Len + int(pageSize) - 1) &^ int(pageSize-1)

	mem, err := unix.Mmap(int(f.Fd()), int64(base), length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		switch {
		case errors.Is(err, unix.EPERM) || errors.Is(err, unix.EACCES):
			return nil, fmt.Errorf("gpiomem: mapping %s from %s: %v; %s: %w", &b, dev, err, permissionHint(dev), ErrPermission)
		case errors.Is(err, unix.EINVAL):
			return nil, fmt.Errorf("gpiomem: mapping %s from %s: %v: %w", &b, dev, err, ErrInvalidRange)
		default:
			return nil, fmt.Errorf("gpiomem: mapping %s from %s: %v: %w", &b, dev, err, ErrMapFailed)
		}
	}
	return &Map{bank: b, mem: mem[shift : shift+b.Len], mmap: mem, f: f}, nil
}

// permissionHint names the cheapest way out of a permission failure, based
// on what the process already holds.
func permissionHint(dev string) string {
	if dev == devGPIOMem {
		return "add the user to the group owning " + devGPIOMem
	}
	if set := cap.GetProc(); set != nil {
		if ok, err := set.GetFlag(cap.Effective, cap.SYS_RAWIO); err == nil && ok {
			return "CAP_SYS_RAWIO is held but " + devMem + " still refused access, check the device node permissions"
		}
	}
	return "run as root or grant CAP_SYS_RAWIO"
}

func munmap(b []byte) error {
	return unix.Munmap(b)
}
