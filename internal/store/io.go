package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// readFile reads the file at path into b; a missing file is not an error.
func readFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// writeFile writes bytes via a temp file, then atomically replaces the target.
func writeFile(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// sealedFile is a JSON document encrypted at rest under a passphrase.
type sealedFile struct {
	path       string
	passphrase string
	params     ScryptParams
}

// load decrypts the file into out. A missing file leaves out untouched.
func (f sealedFile) load(out any) error {
	b, err := readFile(f.path)
	if err != nil {
		return err
	}
	if b == nil { // file didn’t exist
		return nil
	}
	raw, err := decrypt(f.passphrase, b)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// save encrypts v and replaces the file.
func (f sealedFile) save(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ct, err := encrypt(f.passphrase, raw, f.params)
	if err != nil {
		return err
	}
	return writeFile(f.path, ct, 0o600)
}
