package media

import (
	"net/http"
	"os"
)

// FileSystem serves files from dir without exposing directory listings.
func FileSystem(dir string) http.FileSystem {
	return filesOnly{http.Dir(dir)}
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
