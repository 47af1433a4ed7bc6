package config

import (
	"io"
	"log"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	gossh "golang.org/x/crypto/ssh"
)

func TestInitialize(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if _, err := InitializeFs(fsys, "honeypot", log.New(io.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := LoadFs(fsys, "honeypot")
	if err != nil {
		t.Fatal(err)
	}

	t.Run("CreateDownload", func(t *testing.T) {
		fd, err := cfg.CreateDownload("test")
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("CreateSessionLog", func(t *testing.T) {
		fd, err := cfg.CreateSessionLog("session.cast")
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("OpenEventLog", func(t *testing.T) {
		fd, err := cfg.OpenEventLog()
		assert.Nil(t, err)
		fd.Close()
	})

	t.Run("OpenSeedTarGz", func(t *testing.T) {
		// No seed archive is installed by default.
		_, err := cfg.OpenSeedTarGz()
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("PrivateKeyPem", func(t *testing.T) {
		keyPem, err := cfg.PrivateKeyPem()
		assert.Nil(t, err)
		assert.NotNil(t, keyPem)

		_, err = gossh.ParsePrivateKey(keyPem)
		assert.Nil(t, err, "host key must parse as an SSH signer")
	})
}

func TestInitializeIsIdempotent(t *testing.T) {
	fsys := afero.NewMemMapFs()
	quiet := log.New(io.Discard, "", 0)

	if _, err := InitializeFs(fsys, ".", quiet); err != nil {
		t.Fatal(err)
	}
	first, err := afero.ReadFile(fsys, PrivateKeyName)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := InitializeFs(fsys, ".", quiet); err != nil {
		t.Fatal(err)
	}
	second, err := afero.ReadFile(fsys, PrivateKeyName)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, first, second, "rerunning init must not rotate the host key")
}
