// Package libnetdev — вспомогательная библиотека настройки интерфейсов.
// Обмен идёт записью IP с двумя буферами фиксированной длины "addr/prefix",
// ошибки — целочисленные коды Code, как у системных вызовов.
package libnetdev

import (
	"net/netip"
	"strconv"
	"strings"

	"wghttp/internal/cstr"
)

// IPNetmaskStrLen — INET6_ADDRSTRLEN + "/128" + ноль, с запасом.
const IPNetmaskStrLen = 51

// IP — запись адресов интерфейса. Пустой буфер означает «семейства нет».
type IP struct {
	IPv4 [IPNetmaskStrLen]byte
	IPv6 [IPNetmaskStrLen]byte
}

// Code — код ошибки библиотеки.
type Code int

const (
	CodeNoMem               Code = 1
	CodeCtlSocketFailed     Code = 2
	CodeNetlinkSocketFailed Code = 3
	CodeGetDevFlagsFailed   Code = 4
	CodeSetDevFlagsFailed   Code = 5
	CodeInvalidIPStr        Code = 6
	CodeInvalidIP           Code = 7
	CodeInvalidIPPrefix     Code = 8
	CodeDevIPSetFailed      Code = 9
	CodeDevNetmaskSetFailed Code = 10
	CodeDevNotFound         Code = 11
	CodeNetlinkSendFailed   Code = 12
	CodeGetifaddrsFailed    Code = 13
)

func (c Code) Error() string { return "libnetdev error " + strconv.Itoa(int(c)) }

// SetIPv4 / SetIPv6 заполняют буферы записи; пустая строка очищает семейство.
func (ip *IP) SetIPv4(s string) { cstr.EncodeInto(ip.IPv4[:], s) }
func (ip *IP) SetIPv6(s string) { cstr.EncodeInto(ip.IPv6[:], s) }

// split разбирает "addr/prefix" из буфера. ok=false — буфер пустой.
func split(buf []byte, v6 bool) (addr netip.Addr, bits int, ok bool, err error) {
	s, derr := cstr.Decode(buf)
	if derr != nil {
		return netip.Addr{}, 0, false, CodeInvalidIPStr
	}
	if s == "" {
		return netip.Addr{}, 0, false, nil
	}
	limit := 32
	if v6 {
		limit = 128
	}
	addrPart, bitsPart, hasBits := strings.Cut(s, "/")
	addr, perr := netip.ParseAddr(addrPart)
	if perr != nil || addr.Is6() != v6 || addr.Zone() != "" {
		return netip.Addr{}, 0, false, CodeInvalidIP
	}
	bits = limit
	if hasBits {
		n, aerr := strconv.Atoi(bitsPart)
		if aerr != nil || n < 0 {
			return netip.Addr{}, 0, false, CodeInvalidIPStr
		}
		if n > limit {
			return netip.Addr{}, 0, false, CodeInvalidIPPrefix
		}
		bits = n
	}
	return addr, bits, true, nil
}

func format(addr netip.Addr, bits int) string {
	return addr.String() + "/" + strconv.Itoa(bits)
}
