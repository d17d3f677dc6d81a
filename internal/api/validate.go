package api

import (
	"errors"
	"strings"

	"wghttp/internal/models"
)

// errBadRequest — ошибка разбора запроса, всегда 400.
type errBadRequest struct{ msg string }

func (e *errBadRequest) Error() string { return e.msg }

func badRequest(msg string) error { return &errBadRequest{msg: msg} }

func validateDeviceName(name string) error {
	switch {
	case name == "":
		return badRequest("device_name must not be empty")
	case len(name) > models.MaxDeviceNameLen:
		return badRequest("device_name must be at most 15 bytes")
	case strings.ContainsAny(name, "/ \t\n\x00"):
		return badRequest("device_name contains forbidden characters")
	}
	return nil
}

func validatePublicKey(key string) error {
	if len(key) != models.KeyTextLen {
		return badRequest("public_key must be 44 characters")
	}
	return nil
}

// networkAddressFrom разбирает адреса из запроса и проверяет семейства.
func networkAddressFrom(in DeviceIPAddr) (models.NetworkAddress, error) {
	var out models.NetworkAddress
	if in.IPv4 == nil && in.IPv6 == nil {
		return out, badRequest("at least one of ip_addresses.ipv4, ip_addresses.ipv6 is required")
	}
	if in.IPv4 != nil {
		p, err := models.ParseAddrPrefix(*in.IPv4)
		if err != nil {
			return out, err
		}
		out.IPv4 = &p
	}
	if in.IPv6 != nil {
		p, err := models.ParseAddrPrefix(*in.IPv6)
		if err != nil {
			return out, err
		}
		out.IPv6 = &p
	}
	return out, out.Validate()
}

func (r *CreateDeviceRequest) validate() (models.NetworkAddress, error) {
	if err := validateDeviceName(r.DeviceName); err != nil {
		return models.NetworkAddress{}, err
	}
	return networkAddressFrom(r.IPAddresses)
}

func (r *CreatePeerRequest) validate() error {
	_, err := models.ValidateAllowedIPs(r.AllowedIPs)
	return err
}

func isBadRequest(err error) bool {
	var br *errBadRequest
	return errors.As(err, &br)
}
