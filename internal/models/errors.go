package models

import (
	"errors"
	"fmt"
)

// Kind — категория ошибки уровня адаптеров. Набор закрытый и плоский.
type Kind int

const (
	KindUnknown Kind = iota
	KindDeviceNotFound
	KindDeviceAddFailed
	KindDeviceSetFailed
	KindPeerNotFound
	KindInvalidAddressString
	KindInvalidAddress
	KindInvalidPrefix
	KindAddressSetFailed
	KindNetmaskSetFailed
	KindControlSocketFailed
	KindNotificationSocketFailed
	KindUnsupportedAddressFamily
	KindNoMemory
	KindFlagsGetFailed
	KindFlagsSetFailed
)

var kindNames = map[Kind]string{
	KindUnknown:                  "unknown",
	KindDeviceNotFound:           "device_not_found",
	KindDeviceAddFailed:          "device_add_failed",
	KindDeviceSetFailed:          "device_set_failed",
	KindPeerNotFound:             "peer_not_found",
	KindInvalidAddressString:     "invalid_address_string",
	KindInvalidAddress:           "invalid_address",
	KindInvalidPrefix:            "invalid_prefix",
	KindAddressSetFailed:         "address_set_failed",
	KindNetmaskSetFailed:         "netmask_set_failed",
	KindControlSocketFailed:      "control_socket_failed",
	KindNotificationSocketFailed: "notification_socket_failed",
	KindUnsupportedAddressFamily: "unsupported_address_family",
	KindNoMemory:                 "no_memory",
	KindFlagsGetFailed:           "flags_get_failed",
	KindFlagsSetFailed:           "flags_set_failed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// Error — ошибка, которую адаптеры отдают наверх.
// Сообщение человекочитаемое, сырые коды бэкенда в него не попадают.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return e.Msg
}

// Is сравнивает по Kind: errors.Is(err, &models.Error{Kind: models.KindDeviceNotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func NewError(kind Kind, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// KindOf возвращает Kind ошибки; для посторонних ошибок — KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// WithStep добавляет к сообщению шаг многошаговой операции, Kind сохраняется.
func WithStep(err error, step string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return &Error{Kind: e.Kind, Msg: step + ": " + e.Error()}
	}
	return &Error{Kind: KindUnknown, Msg: step + ": " + err.Error()}
}
