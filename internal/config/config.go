package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

const (
	dbFileName     = "data.sqlite"
	gedcomFileName = "data.ged"
	mediaDirName   = "media"
	usersDirName   = "users"
	fallbackUser   = "default"
)

// Environment variables read by Resolve.
const (
	EnvHome = "PEDIGREE_HOME"
	EnvUser = "PEDIGREE_USER"
	EnvAddr = "PEDIGREE_ADDR"
)

// Config holds the resolved per-user data locations. Each user owns a
// directory under HomeDir holding the database, the default GEDCOM file and
// a media folder.
type Config struct {
	HomeDir     string // base users directory
	ProjectRoot string // parent of HomeDir; exported FILE paths are relative to it
	User        string
	UserDir     string
	DBPath      string
	GedcomPath  string
	MediaDir    string
	EnvVarSet   bool // whether PEDIGREE_HOME was used
}

// LoadEnv loads KEY=value pairs from the given files (default ".env") into
// the process environment. Missing files are ignored and variables that are
// already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Resolve returns the configuration for username. An empty username falls
// back to PEDIGREE_USER and then DefaultUser. The users directory is
// PEDIGREE_HOME when set, else ./users.
func Resolve(username string) (*Config, error) {
	var home string
	var envVarSet bool

	if envPath := os.Getenv(EnvHome); envPath != "" {
		home = envPath
		envVarSet = true
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		home = filepath.Join(cwd, usersDirName)
	}

	if username == "" {
		username = os.Getenv(EnvUser)
	}
	if username == "" {
		username = DefaultUser()
	}
	if err := ValidateUser(username); err != nil {
		return nil, err
	}

	userDir := filepath.Join(home, username)
	return &Config{
		HomeDir:     home,
		ProjectRoot: filepath.Dir(home),
		User:        username,
		UserDir:     userDir,
		DBPath:      filepath.Join(userDir, dbFileName),
		GedcomPath:  filepath.Join(userDir, gedcomFileName),
		MediaDir:    filepath.Join(userDir, mediaDirName),
		EnvVarSet:   envVarSet,
	}, nil
}

// ValidateUser rejects user names that would escape the users directory.
func ValidateUser(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid user name %q", name)
	}
	return nil
}

// EnsureDirs creates the user directory and its media folder.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.UserDir, c.MediaDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// Exists checks if the user directory and DB file both exist.
// It returns an error for non-existence failures (e.g. permission errors).
func (c *Config) Exists() (bool, error) {
	for _, p := range []string{c.UserDir, c.DBPath} {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}

// Users lists the user directories under HomeDir, sorted by name.
func (c *Config) Users() ([]string, error) {
	entries, err := os.ReadDir(c.HomeDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

var (
	defaultUser     string
	defaultUserOnce sync.Once
)

// DefaultUser returns the OS login name, or "default" when it cannot be
// determined. The result is cached for the lifetime of the process.
func DefaultUser() string {
	defaultUserOnce.Do(func() {
		defaultUser = resolveUser()
	})
	return defaultUser
}

func resolveUser() string {
	u, err := user.Current()
	if err == nil && u.Username != "" && ValidateUser(u.Username) == nil {
		return u.Username
	}
	return fallbackUser
}
