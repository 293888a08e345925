// Package file stores each record as a JSON document on disk, one file per
// record, named "<kind>_<id>.json" under a root directory.
package file

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Yash3561/Nexus/pkg/storage"
)

// Driver implements storage.Driver on a directory.
type Driver struct {
	root string
}

// NewDriver creates root if needed and returns a driver writing into it.
func NewDriver(root string) (*Driver, error) {
	if root == "" {
		return nil, errors.New("file storage root is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage root: %w", err)
	}
	return &Driver{root: root}, nil
}

// Root returns the directory records are written to.
func (d *Driver) Root() string {
	return d.root
}

// encodedPrefix marks a file name encoded with base64url. It is outside the
// plain alphabet so plain and encoded names never meet.
const encodedPrefix = "~"

// EncodeID maps an id onto a file name. Ids made only of letters, digits,
// '-', '_', '.' and '@' that do not start with a dot are used as they are;
// any other id is written as "~" followed by its unpadded base64url form.
// Distinct ids always get distinct names.
func EncodeID(id string) string {
	if isPlainID(id) {
		return id
	}
	return encodedPrefix + base64.RawURLEncoding.EncodeToString([]byte(id))
}

// DecodeID reverses EncodeID.
func DecodeID(name string) (string, error) {
	enc, ok := strings.CutPrefix(name, encodedPrefix)
	if !ok {
		return name, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return "", fmt.Errorf("decoding record name %q: %w", name, err)
	}
	return string(raw), nil
}

func isPlainID(id string) bool {
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '@':
		case c == '.' && i > 0:
		default:
			return false
		}
	}
	return true
}

func (d *Driver) path(kind storage.Kind, id string) string {
	return filepath.Join(d.root, string(kind)+"_"+EncodeID(id)+".json")
}

// Get reads a record file.
func (d *Driver) Get(_ context.Context, kind storage.Kind, id string) ([]byte, error) {
	body, err := os.ReadFile(d.path(kind, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storage.NotFoundError{Kind: kind, ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	return body, nil
}

// Put writes body to a temp file in the root and renames it over the
// record, so readers never observe a partial write.
func (d *Driver) Put(_ context.Context, kind storage.Kind, id string, body []byte) error {
	target := d.path(kind, id)

	tmp, err := os.CreateTemp(d.root, ".tmp-"+string(kind)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp record: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp record: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming record: %w", err)
	}
	return nil
}

// Delete removes a record file.
func (d *Driver) Delete(_ context.Context, kind storage.Kind, id string) error {
	err := os.Remove(d.path(kind, id))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting record: %w", err)
	}
	return nil
}

// List returns the ids of every record file of a kind. Files whose names
// do not decode are skipped.
func (d *Driver) List(_ context.Context, kind storage.Kind) ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	prefix := string(kind) + "_"
	ids := []string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := DecodeID(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json"))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}
