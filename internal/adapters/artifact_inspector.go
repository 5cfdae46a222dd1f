package adapters

import (
	"archive/tar"
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/klauspost/compress/zstd"
	"github.com/klauspost/pgzip"
	"github.com/ulikunitz/xz"
	"lukechampine.com/blake3"

	"runepkg/internal/ports"
	"runepkg/internal/types"
)

const maxPkgInfoSize = 1 << 20

// ArtifactInspectorAdapter reads the .PKGINFO member of a built package
// archive and digests the archive file.
type ArtifactInspectorAdapter struct{}

func NewArtifactInspectorAdapter() ArtifactInspectorAdapter {
	return ArtifactInspectorAdapter{}
}

func (a ArtifactInspectorAdapter) Inspect(path string) (types.ArtifactInfo, error) {
	info := types.ArtifactInfo{Path: path}
	digest, err := digestFile(path)
	if err != nil {
		return info, err
	}
	info.Digest = digest

	fields, err := readPkgInfo(path)
	if err != nil {
		return info, err
	}
	info.Name = fields["pkgname"]
	info.Version = fields["pkgver"]
	info.Arch = fields["arch"]
	if info.Name == "" || info.Version == "" {
		return info, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(".PKGINFO is missing pkgname or pkgver")
	}
	return info, nil
}

func digestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open artifact").
			WithCause(err)
	}
	defer f.Close()
	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to digest artifact").
			WithCause(err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func readPkgInfo(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open artifact").
			WithCause(err)
	}
	defer f.Close()

	stream, closeStream, err := decompressor(path, f)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to decompress artifact").
			WithCause(err)
	}
	defer closeStream()

	tr := tar.NewReader(stream)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read artifact archive").
				WithCause(err)
		}
		if strings.TrimPrefix(header.Name, "./") != ".PKGINFO" {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(tr, maxPkgInfoSize))
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to read .PKGINFO").
				WithCause(err)
		}
		return ParsePkgInfo(data), nil
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("artifact has no .PKGINFO")
}

func decompressor(path string, r io.Reader) (io.Reader, func(), error) {
	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case strings.HasSuffix(base, ".xz"):
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return xr, func() {}, nil
	case strings.HasSuffix(base, ".gz"):
		gr, err := pgzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gr, func() { _ = gr.Close() }, nil
	default:
		return r, func() {}, nil
	}
}

// ParsePkgInfo reads "key = value" lines. Repeated keys keep the first
// value; comments and blank lines are skipped.
func ParsePkgInfo(data []byte) map[string]string {
	out := map[string]string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, exists := out[key]; exists {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}

var _ ports.ArtifactInspectorPort = ArtifactInspectorAdapter{}
