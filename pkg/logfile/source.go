package logfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// ErrSourceNotFound is reported when the log path does not exist or cannot
// be opened.
var ErrSourceNotFound = errors.New("log source not found")

// ErrArchiveMissingMember is reported when a .zip source holds no .log
// member. Archives with the wrong content are fatal for that source.
var ErrArchiveMissingMember = errors.New("archive contains no log member")

// Content is the fully read state of a log source. Offset is the byte
// position a Tracker should continue from; it is zero for archives, which
// are static snapshots and never tailed.
type Content struct {
	Lines   []string
	Offset  int64
	Archive bool
}

// ReadSource reads a log source in full: a plain text file, a rotated .gz
// file, or a static .zip archive holding exactly one .log member. Archive
// content is decoded with the Latin-1 fallback like everything else.
func ReadSource(path string) (*Content, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return readZipSource(path)
	case ".gz":
		return readGzipSource(path)
	default:
		return readPlainSource(path)
	}
}

func readPlainSource(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("read log %s: %w", path, err)
	}
	return &Content{
		Lines:  SplitLines(Decode(data)),
		Offset: int64(len(data)),
	}, nil
}

func readGzipSource(path string) (*Content, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", path, err)
	}
	return &Content{
		Lines:   SplitLines(Decode(data)),
		Archive: true,
	}, nil
}

func readZipSource(path string) (*Content, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	defer zr.Close()

	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(member.Name)) != ".log" {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("open archive member %s: %w", member.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read archive member %s: %w", member.Name, err)
		}
		return &Content{
			Lines:   SplitLines(Decode(data)),
			Archive: true,
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrArchiveMissingMember, path)
}
