// Package cstr кодирует строки в буферы фиксированной ёмкости с завершающим
// нулём (имена интерфейсов, ifreq, записи адресов libnetdev) и обратно.
package cstr

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrInvalidUTF8 = errors.New("buffer is not valid utf-8")

// DecodeError — строгий разбор буфера не удался.
type DecodeError struct {
	Offset int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid utf-8 at offset %d", e.Offset)
}

func (e *DecodeError) Unwrap() error { return ErrInvalidUTF8 }

// Encode возвращает буфер длины n: не более n-1 байт строки, остаток — нули.
// Длинная строка обрезается молча, проверять длину должен вызывающий.
func Encode(s string, n int) []byte {
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n)
	EncodeInto(buf, s)
	return buf
}

// EncodeInto заполняет dst так же, как Encode.
func EncodeInto(dst []byte, s string) {
	if len(dst) == 0 {
		return
	}
	k := copy(dst[:len(dst)-1], s)
	clear(dst[k:])
}

// Clamp — то, что останется от s после Encode(s, n) и обратного чтения.
func Clamp(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if i := strings.IndexByte(s, 0); i >= 0 {
		s = s[:i]
	}
	if len(s) > n-1 {
		s = s[:n-1]
	}
	return s
}

func terminated(buf []byte) []byte {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		return buf[:i]
	}
	return buf
}

// Decode читает строку до первого нуля (или до конца буфера) и требует валидный UTF-8.
func Decode(buf []byte) (string, error) {
	b := terminated(buf)
	if !utf8.Valid(b) {
		off := 0
		for off < len(b) {
			r, size := utf8.DecodeRune(b[off:])
			if r == utf8.RuneError && size <= 1 {
				break
			}
			off += size
		}
		return "", &DecodeError{Offset: off}
	}
	return string(b), nil
}

// DecodeLossy — как Decode, но битые последовательности заменяются на U+FFFD.
// Только для справочных полей.
func DecodeLossy(buf []byte) string {
	return strings.ToValidUTF8(string(terminated(buf)), "�")
}
