package models

import (
	"net/netip"
	"strconv"
	"strings"
)

const (
	MaxPrefixV4 = 32
	MaxPrefixV6 = 128
)

// AddrPrefix — адрес интерфейса с длиной префикса.
// netip.Prefix не подходит: он не хранит префикс больше максимума семейства,
// а такой ввод нужно уметь отклонить с понятной ошибкой.
type AddrPrefix struct {
	Addr netip.Addr
	Bits uint8
}

func (p AddrPrefix) String() string {
	return p.Addr.String() + "/" + strconv.Itoa(int(p.Bits))
}

func (p AddrPrefix) Prefix() netip.Prefix {
	return netip.PrefixFrom(p.Addr, int(p.Bits))
}

func maxBits(a netip.Addr) int {
	if a.Is4() {
		return MaxPrefixV4
	}
	return MaxPrefixV6
}

// ParseAddrPrefix разбирает "addr/prefix". Без префикса берётся максимум семейства.
func ParseAddrPrefix(s string) (AddrPrefix, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AddrPrefix{}, NewError(KindInvalidAddressString, "invalid ip string format")
	}
	addrPart, bitsPart, hasBits := strings.Cut(s, "/")
	addr, err := netip.ParseAddr(addrPart)
	if err != nil || addr.Zone() != "" {
		return AddrPrefix{}, Errorf(KindInvalidAddress, "invalid ip address %q", addrPart)
	}
	addr = addr.Unmap()
	if !hasBits {
		return AddrPrefix{Addr: addr, Bits: uint8(maxBits(addr))}, nil
	}
	// только десятичные цифры без знака и ведущих нулей
	if bitsPart == "" || strings.TrimLeft(bitsPart, "0123456789") != "" ||
		(len(bitsPart) > 1 && bitsPart[0] == '0') {
		return AddrPrefix{}, Errorf(KindInvalidAddressString, "invalid ip prefix %q", bitsPart)
	}
	bits, err := strconv.Atoi(bitsPart)
	if err != nil {
		return AddrPrefix{}, Errorf(KindInvalidAddressString, "invalid ip prefix %q", bitsPart)
	}
	if bits > maxBits(addr) {
		return AddrPrefix{}, Errorf(KindInvalidPrefix, "prefix /%d is too large for %s", bits, addr)
	}
	return AddrPrefix{Addr: addr, Bits: uint8(bits)}, nil
}

// NetworkAddress — адреса интерфейса по семействам, каждое необязательно.
type NetworkAddress struct {
	IPv4 *AddrPrefix
	IPv6 *AddrPrefix
}

func (n NetworkAddress) Empty() bool { return n.IPv4 == nil && n.IPv6 == nil }

// Validate проверяет семейство и длину префикса до любого обращения к ядру.
func (n NetworkAddress) Validate() error {
	if v4 := n.IPv4; v4 != nil {
		if !v4.Addr.Is4() {
			return Errorf(KindInvalidAddress, "%s is not an ipv4 address", v4.Addr)
		}
		if v4.Bits > MaxPrefixV4 {
			return Errorf(KindInvalidPrefix, "ipv4 prefix /%d is out of range", v4.Bits)
		}
	}
	if v6 := n.IPv6; v6 != nil {
		if !v6.Addr.Is6() || v6.Addr.Is4In6() {
			return Errorf(KindInvalidAddress, "%s is not an ipv6 address", v6.Addr)
		}
		if v6.Bits > MaxPrefixV6 {
			return Errorf(KindInvalidPrefix, "ipv6 prefix /%d is out of range", v6.Bits)
		}
	}
	return nil
}

// ValidateAllowedIPs проверяет список CIDR пира, порядок не меняется.
func ValidateAllowedIPs(list []string) ([]AddrPrefix, error) {
	out := make([]AddrPrefix, 0, len(list))
	for _, s := range list {
		p, err := ParseAddrPrefix(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
