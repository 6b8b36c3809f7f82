package site

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/postbuilder/internal/config"
	sberrors "git.home.luguber.info/inful/postbuilder/internal/errors"
)

func TestBuild_CopyReplacesStaleSymlinks(t *testing.T) {
	s := newTestSite(t)
	s.write("elsewhere/old.css", "stale\n")
	require.NoError(t, os.MkdirAll(s.path("build/style"), 0o750))
	require.NoError(t, os.Symlink(s.path("elsewhere/old.css"), s.path("build/style/main.css")))

	_, _, err := s.build()
	require.NoError(t, err)

	fi, err := os.Lstat(s.path("build/style/main.css"))
	require.NoError(t, err)
	assert.True(t, fi.Mode().IsRegular())
	assert.Equal(t, "body { margin: 0 }\n", s.read("build/style/main.css"))
	assert.Equal(t, "stale\n", s.read("elsewhere/old.css"), "symlink target must not be overwritten")
}

func TestBuild_CopyReplacesLinkedStyleDir(t *testing.T) {
	s := newTestSite(t)
	require.NoError(t, os.MkdirAll(s.path("build"), 0o750))
	require.NoError(t, os.Symlink(s.path("style"), s.path("build/style")))

	_, _, err := s.build()
	require.NoError(t, err)

	fi, err := os.Lstat(s.path("build/style"))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())
	assert.NoFileExists(t, s.path("style/codehilite.css"), "generated stylesheet must not leak into the source style dir")
}

func TestBuild_CopyMergesNestedDirectories(t *testing.T) {
	s := newTestSite(t)
	s.write("style/fonts/mono.woff", "font")
	s.write("build/style/keep.txt", "kept")

	_, report, err := s.build()
	require.NoError(t, err)
	assert.Equal(t, 2, report.AssetsPlaced)
	assert.Equal(t, "font", s.read("build/style/fonts/mono.woff"))
	assert.Equal(t, "kept", s.read("build/style/keep.txt"))
}

func TestBuild_LinkMode(t *testing.T) {
	s := newTestSite(t)
	s.write("style/fonts/mono.woff", "font")
	s.cfg.Assets = config.AssetsLink

	_, _, err := s.build()
	require.NoError(t, err)

	fi, err := os.Lstat(s.path("build/style"))
	require.NoError(t, err)
	assert.True(t, fi.IsDir(), "style output must be a real directory")

	target, err := os.Readlink(s.path("build/style/main.css"))
	require.NoError(t, err)
	assert.Equal(t, s.path("style/main.css"), target)
	assert.True(t, filepath.IsAbs(target))

	_, err = os.Readlink(s.path("build/style/fonts/mono.woff"))
	require.NoError(t, err)

	fi, err = os.Lstat(s.path("build/style/codehilite.css"))
	require.NoError(t, err)
	assert.True(t, fi.Mode().IsRegular())

	// A second build keeps working over the existing links.
	_, _, err = s.build()
	require.NoError(t, err)
}

func TestBuild_AssetCollision(t *testing.T) {
	s := newTestSite(t)
	s.write("style/fonts/mono.woff", "font")
	s.write("build/style/fonts", "i am a file")

	_, _, err := s.build()
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategoryAssetCopy), "got %v", err)
}

func TestBuild_AssetCollisionFileOverDir(t *testing.T) {
	s := newTestSite(t)
	require.NoError(t, os.MkdirAll(s.path("build/style/main.css"), 0o750))

	_, _, err := s.build()
	require.Error(t, err)
	assert.True(t, sberrors.IsCategory(err, sberrors.CategoryAssetCopy), "got %v", err)
}
