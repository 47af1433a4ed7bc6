package config

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"log"
	"os"

	"github.com/spf13/afero"
)

// Initialize populates dir with a default configuration, generating a
// host key and the data directories next to it. Entries that already
// exist are left alone so reruns are safe.
func Initialize(dir string, output *log.Logger) (*Configuration, error) {
	return InitializeFs(afero.NewOsFs(), dir, output)
}

// InitializeFs is Initialize against an arbitrary filesystem.
func InitializeFs(fsys afero.Fs, dir string, output *log.Logger) (*Configuration, error) {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	configFs := afero.NewBasePathFs(fsys, dir)

	if err := writeIfMissing(configFs, output, ConfigurationName, 0644, func() ([]byte, error) {
		return defaultConfigData, nil
	}); err != nil {
		return nil, err
	}

	if err := writeIfMissing(configFs, output, PrivateKeyName, 0600, generateHostKey); err != nil {
		return nil, err
	}

	for _, dataDir := range []string{DownloadDirName, LogsDirName, StoreDirName} {
		if err := configFs.MkdirAll(dataDir, 0700); err != nil {
			return nil, err
		}
	}

	output.Printf("Configuration initialized in %q", dir)
	return LoadFs(fsys, dir)
}

func writeIfMissing(fsys afero.Fs, output *log.Logger, name string, perm os.FileMode, generate func() ([]byte, error)) error {
	exists, err := afero.Exists(fsys, name)
	if err != nil {
		return err
	}
	if exists {
		output.Printf("Skipping %s, already exists", name)
		return nil
	}

	output.Printf("Creating %s", name)
	contents, err := generate()
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, name, contents, perm)
}

// generateHostKey creates an ed25519 SSH host key as a PKCS#8 PEM.
func generateHostKey() ([]byte, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	der, err := x509.MarshalPKCS8PrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}
