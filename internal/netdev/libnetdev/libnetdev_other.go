//go:build !linux

package libnetdev

func GetIP(string, *IP) error { return CodeNetlinkSocketFailed }

func SetIP(_ string, ip *IP) error {
	if _, _, _, err := split(ip.IPv4[:], false); err != nil {
		return err
	}
	if _, _, _, err := split(ip.IPv6[:], true); err != nil {
		return err
	}
	return CodeNetlinkSocketFailed
}

func Up(string) error { return CodeCtlSocketFailed }
