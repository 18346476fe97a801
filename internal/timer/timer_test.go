package timer

import (
	"testing"

	"github.com/kestrelhollow/dmg-core/internal/irq"
)

func TestDIVWriteResetsToZero(t *testing.T) {
	ic := irq.New()
	tm := New(ic)
	tm.Tick(300)
	if tm.ReadDIV() == 0 {
		t.Fatalf("expected DIV to have advanced before reset")
	}
	tm.WriteDIV(0x42)
	if tm.ReadDIV() != 0 {
		t.Fatalf("DIV after write got %#02x want 0", tm.ReadDIV())
	}
}

func TestTIMAOverflowReloadsAfterCooldown(t *testing.T) {
	ic := irq.New()
	ic.WriteIE(1 << irq.Timer)
	tm := New(ic)
	tm.WriteTAC(0x05) // enabled, bit 3 (262144 Hz)
	tm.WriteTMA(0xAB)
	tm.WriteTIMA(0xFF)

	// The selected bit (3) first falls 1->0 at div=16, triggering the
	// overflow; the reload from TMA completes 4 T-cycles later.
	tm.Tick(16)
	if tm.ReadTIMA() != 0x00 {
		t.Fatalf("TIMA mid-cooldown got %#02x want 0x00", tm.ReadTIMA())
	}
	if _, ok := ic.Highest(); ok {
		t.Fatalf("timer interrupt should not fire before cooldown completes")
	}
	tm.Tick(4)
	if tm.ReadTIMA() != 0xAB {
		t.Fatalf("TIMA after reload got %#02x want 0xAB", tm.ReadTIMA())
	}
	bit, ok := ic.Highest()
	if !ok || bit != irq.Timer {
		t.Fatalf("expected timer interrupt pending, got bit=%d ok=%v", bit, ok)
	}
}

func TestTIMAWriteDuringCooldownCancelsReload(t *testing.T) {
	ic := irq.New()
	tm := New(ic)
	tm.WriteTAC(0x05)
	tm.WriteTIMA(0xFF)
	tm.Tick(16) // overflow triggers, TIMA=0x00, cooldown started
	tm.WriteTIMA(0x10)
	tm.Tick(4)
	if tm.ReadTIMA() != 0x10 {
		t.Fatalf("TIMA after cancelled reload got %#02x want 0x10", tm.ReadTIMA())
	}
}

func TestTACDisabledNeverIncrements(t *testing.T) {
	ic := irq.New()
	tm := New(ic)
	tm.WriteTAC(0x00) // disabled
	tm.Tick(100000)
	if tm.ReadTIMA() != 0 {
		t.Fatalf("TIMA should stay 0 while timer disabled, got %#02x", tm.ReadTIMA())
	}
}
