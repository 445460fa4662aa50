package pack

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/huonw/jump/internal/logger"
	"github.com/huonw/jump/internal/manifest"
)

// CreateArchive packs the directory dir/name into an archive of the
// requested type and returns the produced archive's path along with the
// resolved type. The archive is written next to the source directory as
// <dir>.zip and is never silently overwritten.
//
// Only zip archives are implemented. Tar and compressed tar requests
// return an error wrapping errors.ErrUnsupported rather than producing
// wrong or empty output.
func CreateArchive(
	ctx context.Context,
	dir string,
	name string,
	archiveType manifest.ArchiveType,
) (string, manifest.ArchiveType, error) {
	directory, err := canonicalDir(dir, name, archiveType)
	if err != nil {
		return "", archiveType, err
	}

	if _, compressed := archiveType.CompressedWith(); compressed || archiveType == manifest.Tar {
		return "", archiveType, fmt.Errorf(
			"cannot create a %s archive of %s: %s archives are not implemented: %w",
			archiveType, directory, archiveType, errors.ErrUnsupported,
		)
	}

	archivePath, err := createZip(ctx, directory)
	if err != nil {
		return "", manifest.Zip, err
	}

	return archivePath, manifest.Zip, nil
}

// canonicalDir resolves dir/name to an absolute, symlink-free directory
// path and verifies it is a directory.
func canonicalDir(dir, name string, archiveType manifest.ArchiveType) (string, error) {
	resolved, err := filepath.EvalSymlinks(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf(
			"cannot create a %s archive from %s: directory does not exist: %w",
			archiveType, name, err,
		)
	}

	directory, err := filepath.Abs(resolved)
	if err != nil {
		return "", fmt.Errorf("cannot resolve archive source %s: %w", resolved, err)
	}

	info, err := os.Stat(directory)
	if err != nil {
		return "", fmt.Errorf(
			"cannot create a %s archive from %s: %w", archiveType, name, err,
		)
	}

	if !info.IsDir() {
		return "", fmt.Errorf(
			"cannot create a %s archive from %s: %s is a file",
			archiveType, name, directory,
		)
	}

	return directory, nil
}

// createZip packs dir into a sibling <dir>.zip and returns its path.
func createZip(ctx context.Context, dir string) (string, error) {
	zipPath := dir + ".zip"

	out, err := os.OpenFile(zipPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return "", fmt.Errorf("open %s for packing %s into: %w", zipPath, dir, err)
	}

	writer := zip.NewWriter(out)

	// dir is already symlink-free, so it seeds the visited set directly.
	visited := map[string]struct{}{dir: {}}

	if err = addTree(ctx, writer, dir, dir, visited); err != nil {
		_ = writer.Close()
		_ = out.Close()

		return "", fmt.Errorf("pack %s into %s: %w", dir, zipPath, err)
	}

	// Close order matters: the writer flush emits the central directory
	// and EOCD record, then the file handle is released.
	if err = writer.Close(); err != nil {
		_ = out.Close()

		return "", fmt.Errorf("finalize zip %s: %w", zipPath, err)
	}

	if err = out.Close(); err != nil {
		return "", fmt.Errorf("finalize zip %s: %w", zipPath, err)
	}

	return zipPath, nil
}

// addTree recursively adds the contents of dir to the archive, root
// first, directories before their contents. Symlinks are read through to
// their targets; the archive never stores link records. The root
// directory itself is not added as an entry.
//
// visited holds the resolved path of every directory already entered, so
// a symlink pointing back at an ancestor fails fast instead of recursing
// until the path length limit.
func addTree(ctx context.Context, writer *zip.Writer, root, dir string, visited map[string]struct{}) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("walk %s: %w", dir, err)
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// Stat, not Lstat: symlinked files and directories resolve to
		// their target content.
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize archive path %s: %w", path, err)
		}

		entryName, err := archiveEntryName(relPath)
		if err != nil {
			return err
		}

		header := &zip.FileHeader{
			Name:     entryName,
			Method:   zip.Deflate,
			Modified: info.ModTime(),
		}
		applyFileMode(header, info.Mode())

		if info.IsDir() {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				return fmt.Errorf("walk %s: %w", path, err)
			}

			if _, seen := visited[resolved]; seen {
				return fmt.Errorf(
					"file system loop detected: %s resolves to %s, which is already being archived",
					path, resolved,
				)
			}

			visited[resolved] = struct{}{}

			logger.Debugf(ctx, "Adding dir entry %s", entryName)

			header.Name += "/"
			header.Method = zip.Store

			if _, err = writer.CreateHeader(header); err != nil {
				return fmt.Errorf("add directory entry %s: %w", entryName, err)
			}

			if err = addTree(ctx, writer, root, path, visited); err != nil {
				return err
			}

			continue
		}

		logger.Debugf(ctx, "Adding file entry %s", entryName)

		if err = addFile(writer, header, path); err != nil {
			return err
		}
	}

	return nil
}

// addFile copies one regular file (or symlink target) into the archive.
func addFile(writer *zip.Writer, header *zip.FileHeader, path string) error {
	source, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	// Best-effort close on the success path; errors on a read-only
	// handle carry no information.
	defer func() {
		_ = source.Close()
	}()

	entry, err := writer.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add file entry %s: %w", header.Name, err)
	}

	if _, err = io.Copy(entry, source); err != nil {
		return fmt.Errorf("copy %s into archive: %w", path, err)
	}

	return nil
}

// archiveEntryName converts a host-relative path to a zip entry name.
// Entry names are always forward-slash separated and must be valid UTF-8.
func archiveEntryName(relPath string) (string, error) {
	if !utf8.ValidString(relPath) {
		return "", fmt.Errorf("archive path %q is not valid UTF-8", relPath)
	}

	return filepath.ToSlash(relPath), nil
}
