// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpiomem

import (
	"errors"
	"sync"
	"testing"
)

func testBank() Bank {
	return Bank{Name: "test", PhysAddr: 0xC8834000, Len: 64}
}

func TestSliceReadWrite(t *testing.T) {
	m := Slice(testBank(), make([]byte, 64))
	if got := m.Len(); got != 64 {
		t.Fatalf("Len() = %d, want 64", got)
	}
	if err := m.WriteWord(8, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	v, err := m.ReadWord(8)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0xdeadbeef {
		t.Fatalf("ReadWord(8) = %#x, want 0xdeadbeef", v)
	}
	for _, off := range []uint32{0, 4, 12} {
		if v, _ := m.ReadWord(off); v != 0 {
			t.Errorf("word at %#x = %#x, want 0", off, v)
		}
	}
}

func TestBounds(t *testing.T) {
	mem := make([]byte, 64)
	m := Slice(testBank(), mem)
	for _, off := range []uint32{64, 61, 2, 0xFFFFFFFC, 0xFFFFFFFF} {
		if _, err := m.ReadWord(off); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ReadWord(%#x) = %v, want ErrOutOfRange", off, err)
		}
		if err := m.WriteWord(off, 0xFFFFFFFF); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("WriteWord(%#x) = %v, want ErrOutOfRange", off, err)
		}
		if err := m.ModifyWord(off, 0xFFFFFFFF, 0xFFFFFFFF); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("ModifyWord(%#x) = %v, want ErrOutOfRange", off, err)
		}
	}
	for i, b := range mem {
		if b != 0 {
			t.Fatalf("byte %d was modified by a failed access", i)
		}
	}
}

func TestBankCheck(t *testing.T) {
	bad := []struct {
		name string
		b    Bank
	}{
		{"zero length", Bank{Name: "z", PhysAddr: 0x1000, Len: 0}},
		{"negative length", Bank{Name: "n", PhysAddr: 0x1000, Len: -4}},
		{"unrounded length", Bank{Name: "u", PhysAddr: 0x1000, Len: 6}},
		{"wrapping window", Bank{Name: "w", PhysAddr: ^uint64(0) - 8, Len: 4096}},
	}
	for _, tt := range bad {
		if err := tt.b.check(); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("%s: check() = %v, want ErrInvalidRange", tt.name, err)
		}
	}
	good := Bank{Name: "g", PhysAddr: 0xC8834000, Len: 4096}
	if err := good.check(); err != nil {
		t.Errorf("check() on a valid bank = %v", err)
	}
}

func TestOpenRejectsBadBank(t *testing.T) {
	if _, err := Open(Bank{Name: "bad", PhysAddr: 0x1000, Len: 3}); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("Open() with a bad length = %v, want ErrInvalidRange", err)
	}
}

func TestModifyWord(t *testing.T) {
	m := Slice(testBank(), make([]byte, 64))
	if err := m.WriteWord(16, 0xF0F0F0F0); err != nil {
		t.Fatal(err)
	}
	if err := m.ModifyWord(16, 0x0000FF00, 0x0000AB00); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.ReadWord(16); v != 0xF0F0AB00 {
		t.Fatalf("after masked modify: %#x, want 0xf0f0ab00", v)
	}
	// Bits outside the mask must be ignored.
	if err := m.ModifyWord(16, 0x1, 0xFFFFFFFF); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.ReadWord(16); v != 0xF0F0AB01 {
		t.Fatalf("bits leaked outside the mask: %#x", v)
	}
}

func TestCloseIdempotent(t *testing.T) {
	m := Slice(testBank(), make([]byte, 64))
	if err := m.Close(); err != nil {
		t.Fatalf("first Close() = %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
	if _, err := m.ReadWord(0); !errors.Is(err, ErrClosed) {
		t.Errorf("ReadWord after Close = %v, want ErrClosed", err)
	}
	if err := m.WriteWord(0, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteWord after Close = %v, want ErrClosed", err)
	}
	if err := m.ModifyWord(0, 1, 1); !errors.Is(err, ErrClosed) {
		t.Errorf("ModifyWord after Close = %v, want ErrClosed", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", m.Len())
	}
}

// Each goroutine owns one bit of the same word and hammers it. A lost update
// would wipe bits the loser does not own.
func TestModifyWordConcurrent(t *testing.T) {
	m := Slice(testBank(), make([]byte, 64))
	const workers = 8
	const rounds = 2000
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(bit uint) {
			defer wg.Done()
			mask := uint32(1) << bit
			for j := 0; j < rounds; j++ {
				v := uint32(0)
				if j%2 == 0 {
					v = mask
				}
				if err := m.ModifyWord(0, mask, v); err != nil {
					t.Error(err)
					return
				}
			}
			if err := m.ModifyWord(0, mask, mask); err != nil {
				t.Error(err)
			}
		}(uint(i))
	}
	wg.Wait()
	v, err := m.ReadWord(0)
	if err != nil {
		t.Fatal(err)
	}
	if want := uint32(1)<<workers - 1; v != want {
		t.Fatalf("final word %#x, want %#x; an update was lost", v, want)
	}
}
