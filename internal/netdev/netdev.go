// Package netdev — бэкенды настройки сетевых интерфейсов: адрес, маска, флаг up.
//
// IoctlAdapter работает через управляющий сокет и умеет только IPv4.
// LibAdapter работает через libnetdev и поддерживает оба семейства.
package netdev

import (
	"wghttp/internal/cstr"
	"wghttp/internal/models"
)

// decodeRecordField читает "addr/prefix" из буфера записи.
// Битый или пустой буфер — семейство считается отсутствующим.
func decodeRecordField(buf []byte) (models.AddrPrefix, bool) {
	s := cstr.DecodeLossy(buf)
	if s == "" {
		return models.AddrPrefix{}, false
	}
	p, err := models.ParseAddrPrefix(s)
	if err != nil {
		return models.AddrPrefix{}, false
	}
	return p, true
}
