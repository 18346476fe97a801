package bitutil

import "testing"

func TestCombineAndSplit(t *testing.T) {
	v := Combine(0x12, 0x34)
	if v != 0x1234 {
		t.Fatalf("Combine got %#04x want 0x1234", v)
	}
	if High(v) != 0x12 || Low(v) != 0x34 {
		t.Fatalf("High/Low got %02x/%02x want 12/34", High(v), Low(v))
	}
}

func TestSetClearIsSet(t *testing.T) {
	var b uint8 = 0
	b = Set(b, 3)
	if !IsSet(b, 3) {
		t.Fatalf("expected bit 3 set")
	}
	b = Clear(b, 3)
	if IsSet(b, 3) {
		t.Fatalf("expected bit 3 clear")
	}
}

func TestHalfCarryAdd8(t *testing.T) {
	if !HalfCarryAdd8(0x0F, 0x01, 0) {
		t.Fatalf("0x0F+0x01 should half-carry")
	}
	if HalfCarryAdd8(0x0E, 0x01, 0) {
		t.Fatalf("0x0E+0x01 should not half-carry")
	}
	if !HalfCarryAdd8(0xFF, 0x00, 1) {
		t.Fatalf("0xFF+0x00+carry should half-carry")
	}
}

func TestHalfCarrySub8(t *testing.T) {
	if !HalfCarrySub8(0x00, 0x01, 0) {
		t.Fatalf("0x00-0x01 should borrow in low nibble")
	}
	if HalfCarrySub8(0x1F, 0x01, 0) {
		t.Fatalf("0x1F-0x01 should not borrow")
	}
}

func TestSignExtend(t *testing.T) {
	if SignExtend(0xFF) != 0xFFFF {
		t.Fatalf("SignExtend(-1) got %#04x want 0xFFFF", SignExtend(0xFF))
	}
	if SignExtend(0x01) != 0x0001 {
		t.Fatalf("SignExtend(1) got %#04x want 0x0001", SignExtend(0x01))
	}
}
