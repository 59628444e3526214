// Package parser drives ast.Parse over one or many .reproto sources,
// following golangee/tadl's parser.ParseProject pattern: walk a
// directory, parse each matching file, and collect errors per file
// without aborting the whole walk.
package parser

import (
	"io/fs"
	"path/filepath"

	"github.com/reprotoc/reproto/ast"
	"github.com/reprotoc/reproto/source"
)

// ParseFile parses a single source into an ast.File.
func ParseFile(src *source.Source) (*ast.File, error) {
	return ast.Parse(src)
}

// FileError pairs a source path with the error encountered parsing it.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ParseAll parses every .reproto file under the given paths (files or
// directories, searched recursively), returning the successfully
// parsed files plus one *FileError per failure. A failure in one file
// never aborts parsing of the others.
func ParseAll(paths ...string) ([]*ast.File, []*FileError) {
	var (
		files []*ast.File
		errs  []*FileError
	)

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				errs = append(errs, &FileError{Path: path, Err: err})
				return nil
			}

			if d.IsDir() || filepath.Ext(path) != ".reproto" {
				return nil
			}

			f, perr := ParseFile(source.FromFile(path))
			if perr != nil {
				errs = append(errs, &FileError{Path: path, Err: perr})
				return nil
			}

			files = append(files, f)

			return nil
		})
		if err != nil {
			errs = append(errs, &FileError{Path: root, Err: err})
		}
	}

	return files, errs
}
