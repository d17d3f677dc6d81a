package wireguard

import (
	"fmt"

	"golang.org/x/crypto/curve25519"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

type peerKeys struct {
	private   wgtypes.Key
	public    wgtypes.Key
	preshared wgtypes.Key
}

// generatePeerKeys — пара ключей пира и общий ключ (PSK).
func generatePeerKeys() (peerKeys, error) {
	priv, err := wgtypes.GeneratePrivateKey()
	if err != nil {
		return peerKeys{}, fmt.Errorf("generate private key: %w", err)
	}
	psk, err := wgtypes.GenerateKey()
	if err != nil {
		return peerKeys{}, fmt.Errorf("generate preshared key: %w", err)
	}
	return peerKeys{private: priv, public: priv.PublicKey(), preshared: psk}, nil
}

// publicFromPrivate выводит публичный ключ через X25519.
// Нужен для userspace-устройств: UAPI не отдаёт публичный ключ интерфейса.
func publicFromPrivate(priv wgtypes.Key) (wgtypes.Key, error) {
	if priv == (wgtypes.Key{}) {
		return wgtypes.Key{}, nil
	}
	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return wgtypes.Key{}, err
	}
	return wgtypes.NewKey(pub)
}

// keyText — base64 ключа, пустая строка для нулевого ключа.
func keyText(k wgtypes.Key) string {
	if k == (wgtypes.Key{}) {
		return ""
	}
	return k.String()
}
