package config

import (
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const DBPath = "db"

func ExpandHomePath(p string) string {
	res, err := homedir.Expand(p)
	if err != nil {
		panic(err)
	}
	return res
}

// ExpandDBPath resolves the store path against the home directory unless it
// is already absolute.
func ExpandDBPath(homePath, dbPath string) string {
	if path.IsAbs(dbPath) {
		return dbPath
	}
	return path.Join(homePath, dbPath)
}

func HomeDirExists(path string) (bool, error) {
	stat, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if !stat.IsDir() {
		return false, errors.New("home dir path exists, but is a file")
	}

	return true, nil
}

func EnsureHomeDir(path string) error {
	exists, err := HomeDirExists(path)
	if err != nil {
		return err
	}
	if !exists {
		return errors.New("home directory does not exist - try running etf-cli init")
	}
	return nil
}

func InitHomeDir(homePath string) error {
	if err := os.MkdirAll(homePath, 0700); err != nil {
		return err
	}
	if err := os.MkdirAll(path.Join(homePath, DBPath), 0700); err != nil {
		return err
	}
	return WriteDefaultConfigFile(homePath)
}
