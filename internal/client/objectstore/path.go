package objectstore

import (
	"errors"
	"strings"
)

var ErrInvalidPath = errors.New("invalid remote path")

// Path addresses a file inside a hierarchical namespace.
type Path struct {
	Filesystem string
	Name       string
}

func (p Path) String() string {
	return p.Filesystem + "/" + p.Name
}

// ParsePath splits "/filesystem/dir/file" into its filesystem and file name.
// A single leading separator is optional.
func ParsePath(remote string) (Path, error) {
	remote = strings.TrimPrefix(remote, "/")

	filesystem, name, found := strings.Cut(remote, "/")
	if !found || filesystem == "" || name == "" {
		return Path{}, ErrInvalidPath
	}

	return Path{Filesystem: filesystem, Name: name}, nil
}
