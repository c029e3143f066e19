package workspace

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rclgo/msgidl/compiler/parser"
)

// InterfaceDirs are the package subdirectories scanned for documents
var InterfaceDirs = []string{"msg", "srv", "action"}

// Discover returns the interface files of the package rooted at dir,
// sorted by path. Only the msg, srv and action subdirectories are
// searched, and only files whose extension names a document kind.
func Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	for _, sub := range InterfaceDirs {
		entries, err := os.ReadDir(filepath.Join(dir, sub))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if _, ok := parser.KindOf(entry.Name()); ok {
				files = append(files, filepath.Join(dir, sub, entry.Name()))
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

type packageManifest struct {
	Name string `xml:"name"`
}

// PackageName returns the name declared in dir/package.xml, falling back
// to the directory's base name
func PackageName(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "package.xml"))
	if err == nil {
		var manifest packageManifest
		if xml.Unmarshal(data, &manifest) == nil && manifest.Name != "" {
			return manifest.Name
		}
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Base(dir)
	}
	return filepath.Base(abs)
}
