package static

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/staticway/staticway/core/handler"
	"github.com/staticway/staticway/core/serve"
)

// File creates a handler that serves a single static file with content type
// detection, caching validators and range support. Engine options apply as
// for Dir. Panics at startup if the file doesn't exist or is a directory.
func File[C handler.Context](filePath string, opts ...serve.Option) handler.HandlerFunc[C] {
	cleanPath := filepath.Clean(filePath)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			panic("static.File: file does not exist: " + cleanPath)
		}
		panic("static.File: error accessing file: " + err.Error())
	}
	if info.IsDir() {
		panic("static.File: path is a directory, not a file: " + cleanPath)
	}

	eng, err := serve.New(filepath.Dir(cleanPath), opts...)
	if err != nil {
		panic("static.File: " + err.Error())
	}
	name := "/" + filepath.Base(cleanPath)

	return func(ctx C) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			err := eng.ServePath(w, r, name)
			if errors.Is(err, serve.ErrNotHandled) {
				// The file was present at startup but is gone now.
				http.NotFound(w, r)
				return nil
			}
			return err
		}
	}
}
