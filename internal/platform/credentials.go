package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nootverse/noot/pkg/core"
)

// Credentials is the on-disk form of a session, written by the identity
// provider integration (or noot login).
type Credentials struct {
	Identity   string    `yaml:"identity"`
	Credential string    `yaml:"credential"`
	UpdatedAt  time.Time `yaml:"updated_at"`
}

// Session converts the file contents to a session. Missing fields mean
// anonymous.
func (c Credentials) Session() core.Session {
	if strings.TrimSpace(c.Identity) == "" || strings.TrimSpace(c.Credential) == "" {
		return core.Anonymous()
	}
	return core.NewSession(c.Identity, c.Credential)
}

// ReadSession reads the credential file. A missing file is an anonymous
// session, not an error.
func ReadSession(path string) (core.Session, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return core.Anonymous(), nil
	}
	if err != nil {
		return core.Anonymous(), fmt.Errorf("read credentials: %w", err)
	}
	var c Credentials
	if err := yaml.Unmarshal(data, &c); err != nil {
		return core.Anonymous(), fmt.Errorf("parse credentials %s: %w", path, err)
	}
	return c.Session(), nil
}

// SaveCredentials writes c to path readable by the owner only.
func SaveCredentials(path string, c Credentials) error {
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now().UTC()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	return writeFileAtomic(path, data, 0o600)
}

// RemoveCredentials deletes the credential file. Removing a missing file
// succeeds.
func RemoveCredentials(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
