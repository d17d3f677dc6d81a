package netdev

import (
	"errors"

	"wghttp/internal/logs"
	"wghttp/internal/models"
	"wghttp/internal/netdev/libnetdev"
)

type codeInfo struct {
	kind models.Kind
	msg  string
}

// codeTable — соответствие кодов libnetdev видам ошибок.
var codeTable = map[libnetdev.Code]codeInfo{
	libnetdev.CodeNoMem:               {models.KindNoMemory, "memory allocation failed"},
	libnetdev.CodeCtlSocketFailed:     {models.KindControlSocketFailed, "failed to open control socket"},
	libnetdev.CodeNetlinkSocketFailed: {models.KindNotificationSocketFailed, "failed to open netlink socket"},
	libnetdev.CodeGetDevFlagsFailed:   {models.KindFlagsGetFailed, "failed to get interface flags"},
	libnetdev.CodeSetDevFlagsFailed:   {models.KindFlagsSetFailed, "failed to set interface flags"},
	libnetdev.CodeInvalidIPStr:        {models.KindInvalidAddressString, "invalid ip string format"},
	libnetdev.CodeInvalidIP:           {models.KindInvalidAddress, "invalid ip address"},
	libnetdev.CodeInvalidIPPrefix:     {models.KindInvalidPrefix, "invalid ip prefix length"},
	libnetdev.CodeDevIPSetFailed:      {models.KindAddressSetFailed, "failed to set device ip"},
	libnetdev.CodeDevNetmaskSetFailed: {models.KindNetmaskSetFailed, "failed to set device netmask"},
	libnetdev.CodeDevNotFound:         {models.KindDeviceNotFound, "device not found"},
	libnetdev.CodeNetlinkSendFailed:   {models.KindNotificationSocketFailed, "failed to send netlink message"},
	libnetdev.CodeGetifaddrsFailed:    {models.KindNotificationSocketFailed, "failed to enumerate interface addresses"},
}

const unknownCodeMsg = "network device error"

// fromCode переводит код библиотеки в *models.Error. Сам код наверх не уходит.
func fromCode(name string, err error) error {
	if err == nil {
		return nil
	}
	var code libnetdev.Code
	if !errors.As(err, &code) {
		return models.Errorf(models.KindUnknown, "%s: %s", name, unknownCodeMsg)
	}
	info, ok := codeTable[code]
	if !ok {
		logs.Logger.WithField("device", name).Debugf("unmapped libnetdev code %d", int(code))
		return models.Errorf(models.KindUnknown, "%s: %s", name, unknownCodeMsg)
	}
	return models.Errorf(info.kind, "%s: %s", name, info.msg)
}

// LibAdapter настраивает интерфейсы через libnetdev. Поддерживает IPv4 и IPv6.
type LibAdapter struct{}

func NewLibAdapter() *LibAdapter { return &LibAdapter{} }

func (a *LibAdapter) GetAddress(name string) (models.NetworkAddress, error) {
	var rec libnetdev.IP
	if err := libnetdev.GetIP(name, &rec); err != nil {
		return models.NetworkAddress{}, fromCode(name, err)
	}
	var out models.NetworkAddress
	if p, ok := decodeRecordField(rec.IPv4[:]); ok && p.Addr.Is4() {
		out.IPv4 = &p
	}
	if p, ok := decodeRecordField(rec.IPv6[:]); ok && p.Addr.Is6() {
		out.IPv6 = &p
	}
	return out, nil
}

func (a *LibAdapter) SetAddress(name string, addr models.NetworkAddress) error {
	if err := addr.Validate(); err != nil {
		return err
	}
	var rec libnetdev.IP
	if addr.IPv4 != nil {
		rec.SetIPv4(addr.IPv4.String())
	}
	if addr.IPv6 != nil {
		rec.SetIPv6(addr.IPv6.String())
	}
	return fromCode(name, libnetdev.SetIP(name, &rec))
}

func (a *LibAdapter) Up(name string) error {
	return fromCode(name, libnetdev.Up(name))
}
