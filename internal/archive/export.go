// SPDX-License-Identifier: MIT

// Package archive serializes the virtual layout of an overlay tree into a
// cpio archive, optionally zstd-compressed. The archive reflects what a
// hooked process would see: directories of the virtual tree, with file
// contents read from their redirected real locations.
package archive

import (
	"fmt"
	"io"

	"github.com/cavaliergopher/cpio"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/afero"

	"github.com/veilfs/veilfs/internal/overlay"
)

const (
	dirMode  = cpio.TypeDir | cpio.FileMode(0o755)
	fileMode = cpio.TypeReg | cpio.FileMode(0o644)
)

// Exporter writes overlay snapshots. Redirect targets are read through the
// given filesystem.
type Exporter struct {
	fsys afero.Fs
}

// NewExporter creates an [Exporter] on top of fsys.
func NewExporter(fsys afero.Fs) *Exporter {
	return &Exporter{fsys: fsys}
}

// Export writes the tree as a cpio archive to w. With compress set, the
// archive is wrapped in a zstd stream. Masked nodes and nodes without
// readable targets are left out.
func (e *Exporter) Export(w io.Writer, tree *overlay.Tree, compress bool) error {
	out := w

	var zw *zstd.Encoder

	if compress {
		var err error

		zw, err = zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("new zstd writer: %w", err)
		}

		out = zw
	}

	cw := cpio.NewWriter(out)

	if err := e.writeTree(cw, tree); err != nil {
		return err
	}

	if err := cw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if zw != nil {
		if err := zw.Close(); err != nil {
			return fmt.Errorf("close zstd stream: %w", err)
		}
	}

	return nil
}

func (e *Exporter) writeTree(cw *cpio.Writer, tree *overlay.Tree) error {
	return tree.Walk(func(path string, node *overlay.Node) error {
		if node.Masked() {
			return nil
		}

		name := path[1:] // archive names are relative

		if node.Dir() {
			return writeHeader(cw, &cpio.Header{Name: name, Mode: dirMode})
		}

		if node.Target() == "" {
			return nil
		}

		return e.writeFile(cw, name, node.Target())
	})
}

func (e *Exporter) writeFile(cw *cpio.Writer, name, target string) error {
	file, err := e.fsys.Open(target)
	if err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", target, err)
	}

	hdr := &cpio.Header{
		Name: name,
		Mode: fileMode,
		Size: info.Size(),
	}

	if err := writeHeader(cw, hdr); err != nil {
		return err
	}

	if _, err := io.Copy(cw, file); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}

func writeHeader(cw *cpio.Writer, hdr *cpio.Header) error {
	if err := cw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header for %s: %w", hdr.Name, err)
	}

	return nil
}
