// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpiomem maps GPIO register banks into process memory and provides
// bounds checked 32 bit word access to them.
//
// A Map is one mapped bank. Plain loads and stores of whole words need no
// coordination, but GPIO registers pack many pins per word, so every
// read-modify-write of a packed bitfield must go through ModifyWord, which
// serializes against other modifications of the same bank.
//
// Maps over real hardware come from Open. Slice builds the same Map over an
// ordinary byte slice so controllers can be tested against simulated
// registers.
package gpiomem

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Errors returned by Open and Map operations, wrapped with context. Test
// with errors.Is.
var (
	// ErrPermission means the backing device refused access with the
	// privileges of the current process.
	ErrPermission = errors.New("permission denied")
	// ErrInvalidRange means the bank geometry is unusable, either rejected
	// up front or refused by the kernel.
	ErrInvalidRange = errors.New("invalid register range")
	// ErrMapFailed means the mapping could not be established for a reason
	// other than permissions or geometry.
	ErrMapFailed = errors.New("mapping failed")
	// ErrOutOfRange means a word access fell outside the mapped window.
	ErrOutOfRange = errors.New("offset out of range")
	// ErrClosed means the Map was already closed.
	ErrClosed = errors.New("map is closed")
)

// Bank describes one physical register bank. It is plain board data; SoC
// packages declare the values and hand them to Open.
type Bank struct {
	// Name identifies the bank in error messages, like "periphs".
	Name string
	// PhysAddr is the physical base address of the first register. It does
	// not need to be page aligned; Open aligns the mapping and hides the
	// slack.
	PhysAddr uint64
	// Len is the length of the register window in bytes. It must be a
	// positive multiple of 4.
	Len int
}

func (b *Bank) String() string {
	return fmt.Sprintf("%s@%#x", b.Name, b.PhysAddr)
}

// check rejects unusable geometry before any system call is attempted.
func (b *Bank) check() error {
	if b.Len <= 0 || b.Len%4 != 0 {
		return fmt.Errorf("gpiomem: bank %s has invalid length %d: %w", b, b.Len, ErrInvalidRange)
	}
	if b.PhysAddr+uint64(b.Len) < b.PhysAddr {
		return fmt.Errorf("gpiomem: bank %s wraps the physical address space: %w", b, ErrInvalidRange)
	}
	return nil
}

// Map is one mapped register bank.
//
// The zero value is not usable; get one from Open or Slice. Methods are safe
// for concurrent use, except that Close must not race with an access to the
// same Map from code that assumes the mapping is still live.
type Map struct {
	bank Bank
	mem  []byte   // the bank window; nil once closed
	mmap []byte   // the full page aligned mapping, nil when Slice backed
	f    *os.File // backing device, nil when Slice backed

	// mu serializes ModifyWord sequences and Close. ReadWord and WriteWord
	// are single aligned word accesses and intentionally do not take it.
	mu sync.Mutex
}

// Slice returns a Map backed by mem instead of hardware, with the same
// bounds checks, locking and Close behavior as a real mapping.
func Slice(b Bank, mem []byte) *Map {
	return &Map{bank: b, mem: mem}
}

// Bank returns the bank description the Map was created from.
func (m *Map) Bank() Bank {
	return m.bank
}

// Len returns the length in bytes of the accessible window, 0 once closed.
func (m *Map) Len() int {
	return len(m.mem)
}

func (m *Map) String() string {
	return m.bank.String()
}

// ReadWord returns the 32 bit register word at the given byte offset. The
// load happens on every call; nothing is cached.
func (m *Map) ReadWord(offset uint32) (uint32, error) {
	if err := m.bounds(offset); err != nil {
		return 0, err
	}
	return binary.NativeEndian.Uint32(m.mem[offset:]), nil
}

// WriteWord stores v as the full 32 bit register word at the given byte
// offset. On failure the register is left untouched.
func (m *Map) WriteWord(offset uint32, v uint32) error {
	if err := m.bounds(offset); err != nil {
		return err
	}
	binary.NativeEndian.PutUint32(m.mem[offset:], v)
	return nil
}

// ModifyWord replaces the bits selected by mask in the word at the given
// byte offset, leaving the other bits as they are:
//
//	w = (w &^ mask) | (bits & mask)
//
// The load, merge and store run under the bank lock, so concurrent
// modifications of pins packed into the same word cannot lose updates.
func (m *Map) ModifyWord(offset, mask, bits uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.bounds(offset); err != nil {
		return err
	}
	w := binary.NativeEndian.Uint32(m.mem[offset:])
	w = (w &^ mask) | (bits & mask)
	binary.NativeEndian.PutUint32(m.mem[offset:], w)
	return nil
}

// Close releases the mapping and the backing device handle. It is
// idempotent; closing an already closed Map returns nil. All later word
// accesses fail with ErrClosed.
func (m *Map) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mem == nil {
		return nil
	}
	m.mem = nil
	var err error
	if m.mmap != nil {
		err = munmap(m.mmap)
		m.mmap = nil
	}
	if m.f != nil {
		if err2 := m.f.Close(); err == nil {
			err = err2
		}
		m.f = nil
	}
	if err != nil {
		return fmt.Errorf("gpiomem: closing %s: %v", &m.bank, err)
	}
	return nil
}

func (m *Map) bounds(offset uint32) error {
	if m.mem == nil {
		return fmt.Errorf("gpiomem: %s: %w", &m.bank, ErrClosed)
	}
	if offset%4 != 0 {
		return fmt.Errorf("gpiomem: %s unaligned offset %#x: %w", &m.bank, offset, ErrOutOfRange)
	}
	if int64(offset)+4 > int64(len(m.mem)) {
		return fmt.Errorf("gpiomem: %s offset %#x outside %#x byte window: %w", &m.bank, offset, len(m.mem), ErrOutOfRange)
	}
	return nil
}
