package netdev

import (
	"errors"
	"testing"

	"wghttp/internal/models"
	"wghttp/internal/netdev/libnetdev"
)

func TestCodeTableIsComplete(t *testing.T) {
	for c := libnetdev.CodeNoMem; c <= libnetdev.CodeGetifaddrsFailed; c++ {
		if _, ok := codeTable[c]; !ok {
			t.Fatalf("code %d has no mapping", c)
		}
	}
}

func TestFromCode(t *testing.T) {
	tests := []struct {
		code libnetdev.Code
		kind models.Kind
		msg  string
	}{
		{libnetdev.CodeDevNotFound, models.KindDeviceNotFound, "wg0: device not found"},
		{libnetdev.CodeDevIPSetFailed, models.KindAddressSetFailed, "wg0: failed to set device ip"},
		{libnetdev.CodeDevNetmaskSetFailed, models.KindNetmaskSetFailed, "wg0: failed to set device netmask"},
		{libnetdev.CodeInvalidIPPrefix, models.KindInvalidPrefix, "wg0: invalid ip prefix length"},
		{libnetdev.CodeGetDevFlagsFailed, models.KindFlagsGetFailed, "wg0: failed to get interface flags"},
		{libnetdev.Code(99), models.KindUnknown, "wg0: network device error"},
	}
	for _, tt := range tests {
		err := fromCode("wg0", tt.code)
		if !models.IsKind(err, tt.kind) {
			t.Fatalf("code %d: expected %s, got %v", tt.code, tt.kind, err)
		}
		if err.Error() != tt.msg {
			t.Fatalf("code %d: expected %q, got %q", tt.code, tt.msg, err.Error())
		}
	}
	if fromCode("wg0", nil) != nil {
		t.Fatal("nil must stay nil")
	}
	if !models.IsKind(fromCode("wg0", errors.New("boom")), models.KindUnknown) {
		t.Fatal("foreign errors map to unknown")
	}
}

func TestLibAdapterValidatesFirst(t *testing.T) {
	a := NewLibAdapter()
	p, _ := models.ParseAddrPrefix("fd00::1/64")
	// IPv6-адрес в слоте IPv4.
	err := a.SetAddress("wg0", models.NetworkAddress{IPv4: &p})
	if !models.IsKind(err, models.KindInvalidAddress) {
		t.Fatalf("expected invalid address, got %v", err)
	}
}

func TestDecodeRecordField(t *testing.T) {
	var rec libnetdev.IP
	rec.SetIPv4("10.0.0.1/24")
	p, ok := decodeRecordField(rec.IPv4[:])
	if !ok || p.String() != "10.0.0.1/24" {
		t.Fatalf("unexpected decode %v %v", p, ok)
	}
	if _, ok := decodeRecordField(rec.IPv6[:]); ok {
		t.Fatal("empty field must be absent")
	}
	rec.SetIPv6("garbage")
	if _, ok := decodeRecordField(rec.IPv6[:]); ok {
		t.Fatal("unparsable field must be absent")
	}
}
