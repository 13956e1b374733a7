// Package storage persists configuration and data models as flat files,
// one document per model, in either JSON or YAML.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Store loads and saves one model type under a directory. The zero name
// of a document maps to "<dir>/<name><ext>" in the store's primary
// format; Load falls back to the alternate format when the primary file
// is absent.
type Store[T any] struct {
	fs    afero.Fs
	dir   string
	codec Codec
}

func NewStore[T any](dir string, codec Codec) *Store[T] {
	return &Store[T]{fs: afero.NewOsFs(), dir: dir, codec: codec}
}

// WithFs returns a copy of the store reading and writing through fs.
func (s *Store[T]) WithFs(fs afero.Fs) *Store[T] {
	clone := *s
	clone.fs = fs
	return &clone
}

// WithDir returns a copy of the store rooted at dir.
func (s *Store[T]) WithDir(dir string) *Store[T] {
	clone := *s
	clone.dir = dir
	return &clone
}

func (s *Store[T]) Load(name string) (T, error) {
	var zero T

	path, codec, err := s.resolve(name)
	if err != nil {
		return zero, err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		// resolve stat'd the file already, so anything but a racing
		// removal is a real read failure, not absence
		if os.IsNotExist(err) {
			return zero, &NotFoundError{Path: path}
		}
		return zero, fmt.Errorf("reading '%s': %w", path, err)
	}

	var value T
	if err := codec.Unmarshal(data, &value); err != nil {
		return zero, &ParseError{Path: path, Err: err}
	}
	if err := validateModel(path, &value); err != nil {
		return zero, err
	}
	return value, nil
}

// Save writes the document through a uniquely named temp file and
// renames it into place, so a reader never sees a half-written file.
func (s *Store[T]) Save(name string, value T) error {
	data, err := s.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding '%s': %w", name, err)
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating '%s': %w", s.dir, err)
	}

	path := filepath.Join(s.dir, name+s.codec.Ext())
	tmp := path + "." + uuid.NewString() + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing '%s': %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("replacing '%s': %w", path, err)
	}
	return nil
}

// resolve picks the file to read: the primary format if its file exists,
// otherwise the alternate format. The reported NotFoundError names the
// primary path.
func (s *Store[T]) resolve(name string) (string, Codec, error) {
	primary := filepath.Join(s.dir, name+s.codec.Ext())
	if s.regularFile(primary) {
		return primary, s.codec, nil
	}

	alt := alternate(s.codec)
	fallback := filepath.Join(s.dir, name+alt.Ext())
	if s.regularFile(fallback) {
		return fallback, alt, nil
	}

	return "", nil, &NotFoundError{Path: primary}
}

func (s *Store[T]) regularFile(path string) bool {
	info, err := s.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func validateModel(path string, value any) error {
	if reflect.Indirect(reflect.ValueOf(value)).Kind() != reflect.Struct {
		return nil
	}

	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validating '%s': %w", path, err)
	}

	fields := make([]FieldError, 0, len(violations))
	for _, v := range violations {
		msg := "violates '" + v.Tag() + "'"
		if v.Param() != "" {
			msg = "violates '" + v.Tag() + "=" + v.Param() + "'"
		}
		fields = append(fields, FieldError{Path: v.Namespace(), Message: msg})
	}
	return &ValidationError{Path: path, Fields: fields}
}
