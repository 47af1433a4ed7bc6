// Package config holds the on-disk configuration of a vsh instance: a
// YAML file plus the data directories (downloads, session logs, store)
// that live next to it.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	DownloadDirName   = "downloads"
	LogsDirName       = "session_logs"
	StoreDirName      = "store"
	PrivateKeyName    = "private_key"
	RootFSName        = "root_fs.tar.gz"
	EventLogName      = "events.log"
)

type Configuration struct {
	configFs afero.Fs

	Motd      string `json:"motd"`
	Hostname  string `json:"hostname" validate:"required,hostname_rfc1123"`
	SSHPort   int    `json:"ssh_port" validate:"gte=0,lte=65535"`
	SSHBanner string `json:"ssh_banner"`

	// AllowAnyPassword opens password auth to every credential pair.
	AllowAnyPassword bool `json:"allow_any_password"`
	// AllowAnyKey opens public key auth to every presented key.
	AllowAnyKey bool `json:"allow_any_key"`

	GlobalPasswords []string `json:"global_passwords"`

	DefaultUser string `json:"default_user" validate:"required"`

	Users []User `json:"users" validate:"unique=Username"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

type User struct {
	Username  string   `json:"username" validate:"required"`
	UID       int      `json:"uid" validate:"gte=0"`
	GID       int      `json:"gid" validate:"gte=0"`
	Home      string   `json:"home" validate:"required"`
	Shell     string   `json:"shell" validate:"required"`
	Passwords []string `json:"passwords" validate:"unique"`
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// Create a download with the given name.
func (c *Configuration) CreateDownload(name string) (afero.File, error) {
	toCreate := filepath.Join(DownloadDirName, name)
	return c.fs().Create(toCreate)
}

// CreateSessionLog creates a terminal recording file with the given
// name.
func (c *Configuration) CreateSessionLog(name string) (afero.File, error) {
	toCreate := filepath.Join(LogsDirName, name)
	return c.fs().Create(toCreate)
}

// PrivateKeyPem returns the bytes of the host private key.
func (c *Configuration) PrivateKeyPem() ([]byte, error) {
	return afero.ReadFile(c.fs(), PrivateKeyName)
}

// OpenEventLog opens the event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.fs().OpenFile(EventLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.fs().OpenFile(EventLogName, os.O_RDONLY, 0600)
}

// OpenSeedTarGz opens the seed .tar.gz archive, if one was installed.
func (c *Configuration) OpenSeedTarGz() (afero.File, error) {
	return c.fs().Open(RootFSName)
}

// StoreFs returns the directory tree that holds the persisted shell
// filesystem.
func (c *Configuration) StoreFs() afero.Fs {
	return afero.NewBasePathFs(c.fs(), StoreDirName)
}

// GetPasswords returns allowable passwords for the given username.
func (c *Configuration) GetPasswords(username string) []string {
	var out []string
	for _, v := range c.Users {
		if v.Username == username {
			out = append(out, v.Passwords...)
		}
	}

	out = append(out, c.GlobalPasswords...)
	return out
}

// GetUser looks up a configured user by name.
func (c *Configuration) GetUser(username string) (User, bool) {
	for _, v := range c.Users {
		if v.Username == username {
			return v, true
		}
	}
	return User{}, false
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
