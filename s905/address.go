// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package s905

import (
	"os"
	"path"
	"regexp"
	"strconv"
	"strings"

	"periph.io/x/amlogic/gpiomem"
)

// gpioBanks returns the register banks to map, starting from the datasheet
// defaults and taking relocated addresses from the platform bus when the
// kernel exposes them.
func gpioBanks() (periphs, ao gpiomem.Bank) {
	return resolveBanks("/sys/bus/platform/drivers")
}

func resolveBanks(driverDir string) (periphs, ao gpiomem.Bank) {
	periphs, ao = PeriphsBank, AOBank
	items, err := os.ReadDir(driverDir)
	if err != nil {
		return periphs, ao
	}
	for _, item := range items {
		if !item.IsDir() {
			continue
		}
		if matched, _ := regexp.MatchString(`^meson.*pinctrl$`, item.Name()); !matched {
			continue
		}
		applyBaseAddresses(path.Join(driverDir, item.Name()), &periphs, &ao)
	}
	return periphs, ao
}

// applyBaseAddresses extracts register bases from the device names bound in
// one pinctrl driver directory, like "c88344b0.pinctrl". The kernel builds
// those names from the unit address of the function select block, which sits
// muxBase past the start of its bank.
func applyBaseAddresses(dir string, periphs, ao *gpiomem.Bank) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, item := range items {
		addr, ok := extractUnitAddress(item.Name())
		if !ok {
			continue
		}
		switch uint32(addr & 0xFFF) {
		case groupDV.muxBase:
			periphs.PhysAddr = addr - uint64(groupDV.muxBase)
		case groupAO.muxBase:
			ao.PhysAddr = addr - uint64(groupAO.muxBase)
		}
	}
}

// extractUnitAddress parses the hexadecimal unit address prefix out of a
// platform device name like "c88344b0.pinctrl".
func extractUnitAddress(name string) (uint64, bool) {
	if !strings.HasSuffix(name, ".pinctrl") {
		return 0, false
	}
	prefix := name[:len(name)-len(".pinctrl")]
	addr, err := strconv.ParseUint(prefix, 16, 64)
	if err != nil {
		return 0, false
	}
	return addr, true
}
