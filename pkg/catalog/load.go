// Package catalog loads the exported project catalog and derives the
// selection trees the UI navigates.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zip"

	"github.com/user/bus-explorer-tui/pkg/logfile"
	"github.com/user/bus-explorer-tui/pkg/models"
)

// sidecar is the on-disk shape of the <bundle>.cache.json file written next
// to a zip bundle after a successful extraction.
type sidecar struct {
	Digest  string          `json:"digest"`
	Catalog *models.Catalog `json:"catalog"`
}

// Load reads the project catalog from a plain JSON export or from a .zip
// bundle holding exactly one .json member. Bundle extraction is skipped
// when a sidecar cache next to the bundle matches the bundle's content
// digest; a missing, corrupt, or stale sidecar falls back to a fresh
// extraction and is rewritten. The returned catalog is read-only.
func Load(path string) (*models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	if strings.ToLower(filepath.Ext(path)) != ".zip" {
		return decodeCatalog(path, data)
	}

	digest := strconv.FormatUint(xxhash.Sum64(data), 16)
	sidecarPath := path + ".cache.json"
	if cat := readSidecar(sidecarPath, digest); cat != nil {
		return cat, nil
	}

	member, err := bundleMember(path)
	if err != nil {
		return nil, err
	}
	cat, err := decodeCatalog(path, member)
	if err != nil {
		return nil, err
	}
	writeSidecar(sidecarPath, digest, cat)
	return cat, nil
}

func decodeCatalog(path string, data []byte) (*models.Catalog, error) {
	var cat models.Catalog
	if err := json.Unmarshal([]byte(logfile.Decode(data)), &cat); err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return &cat, nil
}

// bundleMember extracts the single .json member of a catalog bundle.
func bundleMember(path string) ([]byte, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog bundle %s: %w", path, err)
	}
	defer zr.Close()

	for _, member := range zr.File {
		if member.FileInfo().IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(member.Name)) != ".json" {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("open bundle member %s: %w", member.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read bundle member %s: %w", member.Name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", logfile.ErrArchiveMissingMember, path)
}

// readSidecar returns the cached catalog when the sidecar parses and its
// digest matches the current bundle content, nil otherwise.
func readSidecar(path, digest string) *models.Catalog {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var sc sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil
	}
	if sc.Digest != digest || sc.Catalog == nil {
		return nil
	}
	return sc.Catalog
}

// writeSidecar is best effort: a failure to cache never fails the load.
func writeSidecar(path, digest string, cat *models.Catalog) {
	data, err := json.Marshal(sidecar{Digest: digest, Catalog: cat})
	if err != nil {
		return
	}
	_ = os.WriteFile(path, data, 0600)
}
