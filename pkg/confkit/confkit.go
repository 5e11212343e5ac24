// Package confkit holds the conventions this module's config files
// follow: paths inside a config file resolve relative to that file,
// and larger sections may live in side files referenced by name.
package confkit

import (
	"os"
	"path/filepath"
)

// ResolvePath expands environment variables in file and, unless the
// result is absolute, resolves it against base.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// BaseDir returns the directory of the main config file. Relative
// paths inside that file resolve against it, not the working dir.
func BaseDir(mainPath string) string {
	return filepath.Dir(mainPath)
}

// Section is a config field whose body lives in a side file: the main
// config carries only the file name, Hydrate fills in the Value.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Hydrate resolves File against base and loads it through loader. A
// section without a File stays empty so callers can fall back to their
// defaults. After a successful load, File holds the resolved path.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	path := ResolvePath(base, s.File)
	v, err := loader(path)
	if err != nil {
		return err
	}
	s.File, s.Value = path, v
	return nil
}
