// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package variant

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

const variantsKey = "variants"

// Manifest maps variant names to table filenames. Top-level keys other
// than "variants" are carried through rewrites untouched.
type Manifest struct {
	Variants map[string]string
	extra    map[string]json.RawMessage
}

// ErrCorruptManifest is returned by ReadManifest for a manifest that is
// not a JSON object with a string-valued "variants" object.
var ErrCorruptManifest = errors.New("corrupt manifest")

// ReadManifest loads the manifest at path. A missing file is an empty
// manifest.
func ReadManifest(path string) (*Manifest, error) {
	m := &Manifest{Variants: map[string]string{}, extra: map[string]json.RawMessage{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptManifest, path, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: %s: not an object", ErrCorruptManifest, path)
	}
	if raw, ok := top[variantsKey]; ok {
		var variants map[string]string
		if err := json.Unmarshal(raw, &variants); err != nil {
			return nil, fmt.Errorf("%w: %s: %s: %v", ErrCorruptManifest, path, variantsKey, err)
		}
		if variants != nil {
			m.Variants = variants
		}
		delete(top, variantsKey)
	}
	m.extra = top
	return m, nil
}

// Marshal renders the manifest as indented JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	top := make(map[string]any, len(m.extra)+1)
	for k, v := range m.extra {
		top[k] = v
	}
	variants := m.Variants
	if variants == nil {
		variants = map[string]string{}
	}
	top[variantsKey] = variants
	data, err := json.MarshalIndent(top, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// UpdateManifest sets variants[name] = filename in the manifest at path,
// keeping every other entry. The read-merge-write runs under an exclusive
// lock on path+".lock" and replaces the file by rename, so concurrent
// generators for different variants never lose each other's entries.
// A corrupt manifest is logged and replaced by a fresh one.
func UpdateManifest(path, name, filename string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking manifest: %w", err)
	}
	defer lock.Unlock()

	m, err := ReadManifest(path)
	if errors.Is(err, ErrCorruptManifest) {
		logger.Warn("resetting corrupt manifest", zap.String("path", path), zap.Error(err))
		m, err = &Manifest{Variants: map[string]string{}}, nil
	}
	if err != nil {
		return err
	}
	m.Variants[name] = filename

	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes data to a temp file beside path and renames it
// into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("syncing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
