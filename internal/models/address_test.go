package models

import (
	"errors"
	"net/netip"
	"testing"
)

func TestParseAddrPrefix(t *testing.T) {
	tests := []struct {
		in       string
		want     string
		wantKind Kind
	}{
		{in: "10.0.0.1/24", want: "10.0.0.1/24"},
		{in: "10.0.0.1", want: "10.0.0.1/32"},
		{in: "fd00::1", want: "fd00::1/128"},
		{in: "fd00::1/64", want: "fd00::1/64"},
		{in: "10.0.0.1/0", want: "10.0.0.1/0"},
		{in: "10.0.0.1/33", wantKind: KindInvalidPrefix},
		{in: "fd00::1/129", wantKind: KindInvalidPrefix},
		{in: "10.0.0.300/24", wantKind: KindInvalidAddress},
		{in: "10.0.0.1/abc", wantKind: KindInvalidAddressString},
		{in: "10.0.0.1/+24", wantKind: KindInvalidAddressString},
		{in: "10.0.0.1/024", wantKind: KindInvalidAddressString},
		{in: "10.0.0.1/-1", wantKind: KindInvalidAddressString},
		{in: "10.0.0.1/", wantKind: KindInvalidAddressString},
		{in: "", wantKind: KindInvalidAddressString},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAddrPrefix(tt.in)
			if tt.wantKind != KindUnknown {
				if !IsKind(err, tt.wantKind) {
					t.Fatalf("expected %s, got %v", tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestNetworkAddressValidate(t *testing.T) {
	v4 := AddrPrefix{Addr: netip.MustParseAddr("10.0.0.1"), Bits: 24}
	v6 := AddrPrefix{Addr: netip.MustParseAddr("fd00::1"), Bits: 64}

	if err := (NetworkAddress{IPv4: &v4, IPv6: &v6}).Validate(); err != nil {
		t.Fatalf("dual stack should pass, got %v", err)
	}
	if err := (NetworkAddress{}).Validate(); err != nil {
		t.Fatalf("empty address should pass, got %v", err)
	}

	badPrefix := AddrPrefix{Addr: v4.Addr, Bits: 33}
	if err := (NetworkAddress{IPv4: &badPrefix}).Validate(); !IsKind(err, KindInvalidPrefix) {
		t.Fatalf("expected invalid prefix, got %v", err)
	}
	badPrefix6 := AddrPrefix{Addr: v6.Addr, Bits: 129}
	if err := (NetworkAddress{IPv6: &badPrefix6}).Validate(); !IsKind(err, KindInvalidPrefix) {
		t.Fatalf("expected invalid prefix, got %v", err)
	}
	if err := (NetworkAddress{IPv4: &v6}).Validate(); !IsKind(err, KindInvalidAddress) {
		t.Fatalf("expected invalid address for family mismatch, got %v", err)
	}
}

func TestValidateAllowedIPsKeepsOrder(t *testing.T) {
	got, err := ValidateAllowedIPs([]string{"10.0.0.2/32", "fd00::2/128", "10.1.0.0/16"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"10.0.0.2/32", "fd00::2/128", "10.1.0.0/16"}
	for i := range want {
		if got[i].String() != want[i] {
			t.Fatalf("index %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if _, err := ValidateAllowedIPs([]string{"10.0.0.2/32", "10.0.0.3/33"}); !IsKind(err, KindInvalidPrefix) {
		t.Fatalf("expected invalid prefix, got %v", err)
	}
}

func TestErrorKindMatching(t *testing.T) {
	err := Errorf(KindDeviceNotFound, "device %s not found", "wg0")
	if !errors.Is(err, &Error{Kind: KindDeviceNotFound}) {
		t.Fatal("errors.Is should match by kind")
	}
	if errors.Is(err, &Error{Kind: KindPeerNotFound}) {
		t.Fatal("errors.Is should not match a different kind")
	}

	stepped := WithStep(err, "set address on wg0")
	if !IsKind(stepped, KindDeviceNotFound) {
		t.Fatalf("kind lost after WithStep: %v", stepped)
	}
	if stepped.Error() != "set address on wg0: device wg0 not found" {
		t.Fatalf("unexpected message: %s", stepped.Error())
	}
	if KindOf(errors.New("plain")) != KindUnknown {
		t.Fatal("foreign errors must map to unknown")
	}
	if WithStep(nil, "x") != nil {
		t.Fatal("WithStep(nil) must be nil")
	}
}
