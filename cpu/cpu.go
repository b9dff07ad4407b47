// Package cpu implements the MOS Technology 6502 microprocessor, as used in
// the NES: opcode decode, addressing-mode resolution, the documented and
// undocumented instruction set, and per-instruction cycle accounting.
package cpu

import (
	"fmt"

	"gonenes/mask"
	"gonenes/mem"
)

// Status register bit masks. NV1B DIZC.
const (
	FlagC  byte = 0x01 // carry
	FlagZ  byte = 0x02 // zero
	FlagI  byte = 0x04 // interrupt disable
	FlagD  byte = 0x08 // decimal (stored, never alters arithmetic; see SPEC_FULL.md)
	FlagB1 byte = 0x10 // break, low bit
	FlagB2 byte = 0x20 // break, high bit, permanently set on a hardware 6502
	FlagV  byte = 0x40 // overflow
	FlagN  byte = 0x80 // negative
)

// pullMask is the set of status bits PLP and RTI are allowed to change.
// B1/B2 are never touched by either; this is load-bearing architectural
// behavior, not a bug (spec.md §9).
const pullMask = FlagN | FlagV | FlagD | FlagI | FlagZ | FlagC

// traceWriter is the one method (io.StringWriter's) the Tracer hook needs;
// declared locally so this package has no dependency on io beyond what it
// already pulls in transitively.
type traceWriter interface {
	WriteString(string) (int, error)
}

// Cpu holds the 6502's architectural registers plus the bookkeeping needed
// to reproduce its per-instruction cycle timing. It has no memory of its
// own; all reads and writes are routed through Bus.
type Cpu struct {
	A, X, Y byte
	P       byte // status register, NV1B DIZC
	S       byte // stack pointer, indexes page 0x0100-0x01FF
	PC      uint16

	CyclesRemaining int    // clocks still owed by the in-flight instruction
	CyclesTotal     uint64 // monotonically increasing, for tracing/tests
	BoundsCrossed   bool   // set by addressing resolution, consumed by Step

	Bus *mem.Bus

	// Tracer, if set, renders the state of the Cpu immediately before an
	// opcode fetch; Step writes its result (plus a newline) to TraceOut.
	// Both are nil by default - the core stays silent unless a caller
	// wires one in (see the trace package).
	Tracer   func(*Cpu) string
	TraceOut traceWriter
}

// NewCpu returns a Cpu wired to bus, in the nestest automated-mode power-on
// state: PC=0xC000, S=0xFD, P=0x24, A=X=Y=0.
func NewCpu(bus *mem.Bus) *Cpu {
	c := &Cpu{Bus: bus}
	c.Reset()
	return c
}

// Reset restores the nestest automated-mode power-on state. A general
// implementation would instead read the reset vector at 0xFFFC/D; that path
// is exposed separately as ResetFromVector so callers who want it don't
// disturb the hard-wired 0xC000 start nestest depends on.
func (c *Cpu) Reset() {
	c.A, c.X, c.Y = 0, 0, 0
	c.S = 0xFD
	c.P = FlagI | FlagB2
	c.PC = 0xC000
	c.CyclesRemaining = 0
	c.CyclesTotal = 0
	c.BoundsCrossed = false
}

// ResetFromVector performs the same register initialization as Reset, but
// takes the start address from the reset vector at 0xFFFC/D rather than the
// nestest-automated-mode convention.
func (c *Cpu) ResetFromVector() {
	c.Reset()
	c.PC = c.Bus.Read16(0xFFFC)
}

// flag reports whether bit is set in P.
func (c *Cpu) flag(bit byte) bool { return c.P&bit != 0 }

// setFlag sets or clears bit in P depending on cond, the primitive every
// single-flag update in this package funnels through (PLP and RTI mask P
// directly).
func (c *Cpu) setFlag(bit byte, cond bool) { mask.SetBit(&c.P, bit, cond) }

// setNZ sets N from bit 7 of v and Z from v == 0, the pattern shared by
// nearly every load/transfer/arithmetic primitive.
func (c *Cpu) setNZ(v byte) {
	c.setFlag(FlagN, v&0x80 != 0)
	c.setFlag(FlagZ, v == 0)
}

// push writes v to the stack page and decrements S (mod 256).
func (c *Cpu) push(v byte) {
	c.Bus.Write(0x0100+uint16(c.S), v)
	c.S--
}

// pop increments S (mod 256) and reads from the stack page.
func (c *Cpu) pop() byte {
	c.S++
	return c.Bus.Read(0x0100 + uint16(c.S))
}

func (c *Cpu) push16(v uint16) {
	c.push(byte(v >> 8))
	c.push(byte(v))
}

func (c *Cpu) pop16() uint16 {
	lo := uint16(c.pop())
	hi := uint16(c.pop())
	return hi<<8 | lo
}

// Step advances the Cpu by exactly one 6502 clock. If an instruction is
// still mid-flight (CyclesRemaining > 0), this call only drains the
// counter; otherwise it fetches, decodes, and executes the next
// instruction and loads CyclesRemaining with its (penalty-adjusted) total.
//
// The only error Step returns is the unknown-opcode safety net: every byte
// except 0x00 (BRK, deliberately unimplemented; see DESIGN.md) has a row in
// the dispatch table, so fetching 0x00 is the only way to reach it.
func (c *Cpu) Step() error {
	if c.CyclesRemaining > 0 {
		c.CyclesTotal++
		c.CyclesRemaining--
		return nil
	}

	if c.Tracer != nil && c.TraceOut != nil {
		c.TraceOut.WriteString(c.Tracer(c) + "\n")
	}

	c.BoundsCrossed = false

	opByte := c.Bus.Read(c.PC)
	fetchedAt := c.PC
	c.PC++

	opc := OpcodeAt(opByte)
	if !opc.Valid {
		return fmt.Errorf("cpu: unknown opcode %#02x at %#04x", opByte, fetchedAt)
	}

	addr := c.resolveAddress(opc.Mode)
	c.CyclesRemaining += int(opc.Cycles)

	c.execute(opc, addr)

	if c.BoundsCrossed && opc.PageCross {
		c.CyclesRemaining++
	}

	c.CyclesRemaining--
	c.CyclesTotal++
	return nil
}
