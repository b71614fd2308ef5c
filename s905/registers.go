// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Register layout of the S905 (meson-gxbb) GPIO controllers.
//
// The SoC has two pad controllers. The one on the peripherals bus drives the
// GPIODV, GPIOY and GPIOX groups used on the ODROID-C2 header; the always-on
// domain has a second, smaller one for the GPIOAO pads. Each group owns a
// handful of 32 bit registers with one bit per pad; the always-on block
// packs two register classes into a single word at different bit bases.
//
// Everything in this file is board data. Changing a pad or adding a group is
// an edit here and in s905_pins.json, not a code change.

package s905

import "periph.io/x/amlogic/gpiomem"

// Default register banks of the S905. The device tree can relocate them, see
// gpioBanks.
var (
	// PeriphsBank is the peripherals bus register window holding the EE
	// domain pad controller.
	PeriphsBank = gpiomem.Bank{Name: "periphs", PhysAddr: 0xC8834000, Len: 0x1000}
	// AOBank is the always-on domain register window. The gpiomem device
	// node only exports the periphs window, so this bank needs /dev/mem.
	AOBank = gpiomem.Bank{Name: "aobus", PhysAddr: 0xC8100000, Len: 0x1000}
)

type bankID int

const (
	bankPeriphs bankID = iota
	bankAO
)

// groupRegs holds the byte offsets of one pad group's registers inside its
// bank and the bit position of pad 0 in each register class. A pad's bit is
// the class base plus its index within the group.
type groupRegs struct {
	oen     uint32 // direction; 1 is input, 0 is output
	oenBit  uint
	out     uint32 // output level
	outBit  uint
	in      uint32 // sampled pad level
	inBit   uint
	puen    uint32 // pull resistor enable
	puenBit uint
	pupd    uint32 // pull direction; 1 is up, 0 is down
	pupdBit uint
}

// group is one pad group of a controller.
type group struct {
	name    string
	bank    bankID
	pads    uint
	base    int    // Linux gpio number of pad 0 on the C2 kernel
	regs    groupRegs
	muxBase uint32 // byte offset of the function select block
	pulls   bool   // the group has pull rail control
}

// muxOffset returns the byte offset of the n-th function select word of the
// group's controller.
func (g *group) muxOffset(reg int) uint32 {
	return g.muxBase + 4*uint32(reg)
}

// The periphs controller keeps the GPIO registers around byte 0x430, the
// pull control around 0x4E8 and the PIN_MUX_0..9 function select block at
// 0x4B0. Word indices in the comments are the datasheet CBUS offsets.
var (
	groupDV = group{
		name: "GPIODV",
		bank: bankPeriphs,
		pads: 30,
		base: 181,
		regs: groupRegs{
			oen:  0x430, // 0x10C
			out:  0x434, // 0x10D
			in:   0x438, // 0x10E
			puen: 0x520, // 0x148
			pupd: 0x4E8, // 0x13A
		},
		muxBase: 0x4B0,
		pulls:   true,
	}
	groupY = group{
		name: "GPIOY",
		bank: bankPeriphs,
		pads: 17,
		base: 211,
		regs: groupRegs{
			oen:  0x43C, // 0x10F
			out:  0x440, // 0x110
			in:   0x444, // 0x111
			puen: 0x524, // 0x149
			pupd: 0x4EC, // 0x13B
		},
		muxBase: 0x4B0,
		pulls:   true,
	}
	groupX = group{
		name: "GPIOX",
		bank: bankPeriphs,
		pads: 23,
		base: 228,
		regs: groupRegs{
			oen:  0x460, // 0x118
			out:  0x464, // 0x119
			in:   0x468, // 0x11A
			puen: 0x530, // 0x14C
			pupd: 0x4F8, // 0x13E
		},
		muxBase: 0x4B0,
		pulls:   true,
	}
	// The always-on block shares words between classes: direction in bits
	// 0..13 and output in bits 16..29 of AO_GPIO_O_EN_N, pull select in bits
	// 0..13 and pull enable in bits 16..29 of AO_RTI_PULL_UP_REG.
	groupAO = group{
		name: "GPIOAO",
		bank: bankAO,
		pads: 14,
		base: 122,
		regs: groupRegs{
			oen:     0x24,
			oenBit:  0,
			out:     0x24,
			outBit:  16,
			in:      0x28,
			inBit:   0,
			puen:    0x2C,
			puenBit: 16,
			pupd:    0x2C,
			pupdBit: 0,
		},
		muxBase: 0x14,
		pulls:   true,
	}
)

// groups lists the pad groups exposed by this package, ordered by Linux gpio
// number. The Z, H, BOOT and CARD groups of the periphs controller are not
// brought out on supported boards and are left out of the table.
var groups = []*group{&groupAO, &groupDV, &groupY, &groupX}
