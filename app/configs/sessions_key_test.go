package configs

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSessionKeysRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env.new_keys")

	keys, err := WriteSessionKeys(path)
	require.NoError(t, err)
	assert.Len(t, keys.AuthKey, authKeyLength)
	assert.Len(t, keys.EncKey, encKeyLength)

	values, err := godotenv.Read(path)
	require.NoError(t, err)

	loaded, err := LoadSessionKeys(ENV{AppAuthKey: values["APP_AUTH_KEY"], AppEncKey: values["APP_ENC_KEY"]})
	require.NoError(t, err)
	assert.Equal(t, keys.AuthKey, loaded.AuthKey)
	assert.Equal(t, keys.EncKey, loaded.EncKey)

	_, err = WriteSessionKeys(path)
	assert.Error(t, err, "existing key file must not be overwritten")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadSessionKeysRejectsBadKeys(t *testing.T) {
	good := base64.URLEncoding.EncodeToString(make([]byte, 32))
	short := base64.URLEncoding.EncodeToString(make([]byte, 8))

	tests := []struct {
		name string
		env  ENV
		want string
	}{
		{"missing auth", ENV{AppEncKey: good}, "APP_AUTH_KEY environment variable not set"},
		{"missing enc", ENV{AppAuthKey: good}, "APP_ENC_KEY environment variable not set"},
		{"short auth", ENV{AppAuthKey: short, AppEncKey: good}, "APP_AUTH_KEY decodes to 8 bytes"},
		{"odd enc", ENV{AppAuthKey: good, AppEncKey: short}, "APP_ENC_KEY decodes to 8 bytes"},
		{"not base64", ENV{AppAuthKey: "!!!", AppEncKey: good}, "failed to decode APP_AUTH_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSessionKeys(tt.env)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}
