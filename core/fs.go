package core

import (
	"fmt"
	"os"

	"github.com/vsh-project/vsh/commands"
	"github.com/vsh-project/vsh/core/config"
	"github.com/vsh-project/vsh/core/vfs"
)

// OpenFilesystem opens the shell filesystem for a configuration.
// Ephemeral sessions run on a throwaway in-memory store; otherwise
// state persists through the journal under the config dir. A fresh
// store is seeded before use.
func OpenFilesystem(cfg *config.Configuration, ephemeral bool) (*vfs.FS, error) {
	var store vfs.Store = vfs.NewMemStore()
	if !ephemeral {
		journal, err := vfs.OpenJournalStore(cfg.StoreFs(), ".")
		if err != nil {
			return nil, fmt.Errorf("couldn't open store: %w", err)
		}
		store = journal
	}

	fsys, err := vfs.New(store)
	if err != nil {
		store.Close()
		return nil, err
	}

	if fsys.Empty() {
		if err := seedFilesystem(cfg, fsys); err != nil {
			fsys.Close()
			return nil, fmt.Errorf("couldn't seed filesystem: %w", err)
		}
	}
	return fsys, nil
}

// seedFilesystem populates a brand new filesystem, preferring an
// installed seed archive over the builtin minimal tree.
func seedFilesystem(cfg *config.Configuration, fsys *vfs.FS) error {
	seedFd, err := cfg.OpenSeedTarGz()
	switch {
	case err == nil:
		defer seedFd.Close()
		if err := vfs.ExtractTarGz(fsys, seedFd); err != nil {
			return err
		}
	case os.IsNotExist(err):
		if err := vfs.Seed(fsys, cfg.Hostname, cfg.DefaultUser, cfg.Motd); err != nil {
			return err
		}
	default:
		return err
	}

	// PATH lookups and ls /bin need entries for the command set even
	// when the seed archive lacks them.
	return vfs.SeedBinaries(fsys, commands.Names())
}
