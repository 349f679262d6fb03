package simplemedia

import (
	"fmt"
	"os"
)

// NormalizeContent resolves a pending content input into a file handle.
//
// A nil input, or a HandleContent without a file, yields (nil, nil). A
// PathContent must reference an existing regular file, otherwise an
// *InvalidContentError is returned.
func NormalizeContent(in ContentInput) (FileHandle, error) {
	switch c := in.(type) {
	case nil:
		return nil, nil
	case HandleContent:
		return c.File, nil
	case *HandleContent:
		if c == nil {
			return nil, nil
		}
		return c.File, nil
	case PathContent:
		path := string(c)
		info, err := os.Stat(path)
		if err != nil {
			return nil, &InvalidContentError{Path: path, Err: err}
		}
		if !info.Mode().IsRegular() {
			return nil, &InvalidContentError{Path: path}
		}
		file, err := OpenLocalFile(path)
		if err != nil {
			return nil, &InvalidContentError{Path: path, Err: err}
		}
		return file, nil
	default:
		return nil, fmt.Errorf("unsupported binary content %T: %w", in, ErrInvalidContent)
	}
}
