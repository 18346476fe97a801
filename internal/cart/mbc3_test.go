package cart

import "testing"

func TestMBC3ZeroBankRemapsToOne(t *testing.T) {
	m := newMBC3(romOfSize(4))
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank write 0 got %#02x want bank 1", got)
	}
}

func TestMBC3RAMEnableAndBanking(t *testing.T) {
	m := newMBC3(romOfSize(2))
	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0x4000, 0x02) // RAM bank 2
	if dirty := m.Write(0xA000, 0x7E); !dirty {
		t.Fatalf("RAM write should report dirty")
	}
	if got := m.Read(0xA000); got != 0x7E {
		t.Fatalf("RAM bank 2 byte 0 got %#02x want 0x7E", got)
	}
	m.Write(0x4000, 0x00)
	if got := m.Read(0xA000); got == 0x7E {
		t.Fatalf("RAM bank 0 should be distinct storage from bank 2")
	}
}

func TestMBC3RTCRegisterSelectIsInertRAMBankZero(t *testing.T) {
	m := newMBC3(romOfSize(2))
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x11) // bank 0
	m.Write(0x4000, 0x08) // RTC seconds register select: no clock modeled
	if got := m.Read(0xA000); got != 0x11 {
		t.Fatalf("RTC-register-select should read back as RAM bank 0, got %#02x", got)
	}
}

func TestMBC3RAMDisabledByDefault(t *testing.T) {
	m := newMBC3(romOfSize(2))
	if got := m.Read(0xA000); got != 0xFF {
		t.Fatalf("disabled RAM read got %#02x want 0xFF", got)
	}
}
