package site

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/postbuilder/internal/config"
	sberrors "git.home.luguber.info/inful/postbuilder/internal/errors"
)

const dirMode = 0o755

// placeAssets mirrors the src tree into dst, copying or linking each file
// according to mode. It returns the number of files placed.
func placeAssets(src, dst string, mode config.AssetMode) (int, error) {
	if err := ensureRealDir(dst); err != nil {
		return 0, sberrors.AssetCopyError(dst, err)
	}
	if mode == config.AssetsLink {
		abs, err := filepath.Abs(src)
		if err != nil {
			return 0, sberrors.AssetCopyError(src, err)
		}
		return mirror(abs, dst, linkFile)
	}
	return mirror(src, dst, copyFile)
}

// mirror walks src recursively, creating real directories under dst and
// calling place for every file. Symlinks in src are followed.
func mirror(src, dst string, place func(src, dst string) error) (int, error) {
	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, sberrors.AssetCopyError(src, err)
	}
	placed := 0
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		fi, err := os.Stat(srcPath)
		if err != nil {
			return placed, sberrors.AssetCopyError(srcPath, err)
		}
		if fi.IsDir() {
			if err := ensureRealDir(dstPath); err != nil {
				return placed, sberrors.AssetCopyError(dstPath, err)
			}
			n, err := mirror(srcPath, dstPath, place)
			placed += n
			if err != nil {
				return placed, err
			}
			continue
		}
		if err := clearFileSlot(dstPath); err != nil {
			return placed, sberrors.AssetCopyError(dstPath, err)
		}
		if err := place(srcPath, dstPath); err != nil {
			return placed, sberrors.AssetCopyError(dstPath, err)
		}
		placed++
	}
	return placed, nil
}

// ensureRealDir makes dir a real directory. A symlink in its place is
// removed first; a regular file is a collision.
func ensureRealDir(dir string) error {
	fi, err := os.Lstat(dir)
	switch {
	case err == nil && fi.Mode()&os.ModeSymlink != 0:
		if err := os.Remove(dir); err != nil {
			return err
		}
	case err == nil && fi.IsDir():
		return nil
	case err == nil:
		return fmt.Errorf("cannot replace file %s with a directory", dir)
	case !errors.Is(err, fs.ErrNotExist):
		return err
	}
	return os.MkdirAll(dir, dirMode)
}

// clearFileSlot removes a symlink at path so the new file does not write
// through it. A directory at path is a collision.
func clearFileSlot(path string) error {
	fi, err := os.Lstat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return err
	case fi.IsDir():
		return fmt.Errorf("cannot replace directory %s with a file", path)
	case fi.Mode()&os.ModeSymlink != 0:
		return os.Remove(path)
	}
	return nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}
	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}
	// Preserve file permissions of an existing destination too.
	return os.Chmod(dst, srcInfo.Mode().Perm())
}

// linkFile points dst at the absolute src path. clearFileSlot has already
// removed any previous link.
func linkFile(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return err
		}
	}
	return os.Symlink(src, dst)
}
