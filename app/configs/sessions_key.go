package configs

import (
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"github.com/gorilla/securecookie"
)

const (
	authKeyLength = 64
	encKeyLength  = 32
)

// SessionKeys are the cookie signing and encryption keys. The first 32 bytes
// of AuthKey also sign CSRF tokens.
type SessionKeys struct {
	AuthKey []byte
	EncKey  []byte
}

func decodeKey(name, raw string, valid func(n int) bool, want string) ([]byte, error) {
	if raw == "" {
		return nil, fmt.Errorf("%s environment variable not set", name)
	}
	key, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s from Base64: %w", name, err)
	}
	if !valid(len(key)) {
		return nil, fmt.Errorf("%s decodes to %d bytes, want %s", name, len(key), want)
	}
	return key, nil
}

func LoadSessionKeys(env ENV) (*SessionKeys, error) {
	authKey, err := decodeKey("APP_AUTH_KEY", env.AppAuthKey, func(n int) bool { return n >= 32 }, "at least 32")
	if err != nil {
		return nil, err
	}
	encKey, err := decodeKey("APP_ENC_KEY", env.AppEncKey, func(n int) bool { return n == 16 || n == 24 || n == 32 }, "16, 24 or 32")
	if err != nil {
		return nil, err
	}

	log.Println("✅ Session keys loaded and decoded successfully.")
	return &SessionKeys{AuthKey: authKey, EncKey: encKey}, nil
}

func GenerateSessionKeys() (*SessionKeys, error) {
	authKey := securecookie.GenerateRandomKey(authKeyLength)
	if authKey == nil {
		return nil, fmt.Errorf("could not generate authentication key")
	}
	encKey := securecookie.GenerateRandomKey(encKeyLength)
	if encKey == nil {
		return nil, fmt.Errorf("could not generate encryption key")
	}
	return &SessionKeys{AuthKey: authKey, EncKey: encKey}, nil
}

// EnvLines renders the keys in .env format.
func (k *SessionKeys) EnvLines() string {
	return fmt.Sprintf("APP_AUTH_KEY=%s\nAPP_ENC_KEY=%s\n",
		base64.URLEncoding.EncodeToString(k.AuthKey),
		base64.URLEncoding.EncodeToString(k.EncKey))
}

// WriteSessionKeys generates a key pair and writes it to path. An existing
// file is never overwritten, since rotating keys logs every user out.
func WriteSessionKeys(path string) (*SessionKeys, error) {
	keys, err := GenerateSessionKeys()
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.WriteString(keys.EnvLines()); err != nil {
		return nil, fmt.Errorf("failed to write keys to %s: %w", path, err)
	}
	return keys, nil
}
