package utils

import (
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/twpayne/go-vfs/v4"
)

// ReadEnv reads an env file into a map. A missing file is not an error.
func ReadEnv(file string) (map[string]string, error) {
	if _, err := os.Stat(file); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	return godotenv.Read(file)
}

// CreateIfNotExists creates the given dir, and any parent, on the given fs.
func CreateIfNotExists(fs vfs.FS, path string) error {
	if _, err := fs.Stat(path); os.IsNotExist(err) {
		return vfs.MkdirAll(fs, path, 0o755)
	}
	return nil
}

// CopyFile copies src to dst on the given fs, keeping the source permissions.
func CopyFile(fs vfs.FS, src, dst string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return err
	}
	data, err := fs.ReadFile(src)
	if err != nil {
		return err
	}
	return fs.WriteFile(dst, data, info.Mode().Perm())
}

// Exists returns true if the path exists on the given fs.
func Exists(fs vfs.FS, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// UniqueSlice removes duplicates and returns the values sorted.
func UniqueSlice(slice []string) []string {
	keys := make(map[string]bool)
	var list []string
	for _, entry := range slice {
		if _, value := keys[entry]; !value {
			keys[entry] = true
			list = append(list, entry)
		}
	}
	sort.Strings(list)
	return list
}

// CleanupSlice removes empty and whitespace-only values.
func CleanupSlice(slice []string) []string {
	var cleanSlice []string
	for _, item := range slice {
		if strings.TrimSpace(item) == "" {
			continue
		}
		cleanSlice = append(cleanSlice, item)
	}
	return cleanSlice
}

// FileMode returns the permissions of path, or def if it cannot be read.
func FileMode(fs vfs.FS, path string, def os.FileMode) os.FileMode {
	info, err := fs.Stat(path)
	if err != nil {
		return def
	}
	return info.Mode().Perm()
}
