package scoretable

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ydkpoints/internal/fileutil"
	"ydkpoints/internal/services"
)

const (
	documentPrefix  = "point_"
	documentSuffix  = ".txt"
	maxDocumentSize = 8 << 20
)

// Document is one versioned score document on disk.
type Document struct {
	Version  string
	Path     string
	Modified time.Time
}

// Catalog lists score documents in dir, newest version first. Versions embed
// a YYMMDD date so lexical order is chronological.
func Catalog(dir string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read score table dir: %w", err)
	}
	var docs []Document
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isDocumentName(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		full := filepath.Join(dir, name)
		docs = append(docs, Document{Version: VersionFromPath(full), Path: full, Modified: info.ModTime()})
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Version > docs[j].Version
	})
	return docs, nil
}

func isDocumentName(name string) bool {
	return strings.HasPrefix(name, documentPrefix) && strings.HasSuffix(name, documentSuffix)
}

// Latest returns the newest document in dir.
func Latest(dir string) (Document, error) {
	docs, err := Catalog(dir)
	if err != nil {
		return Document{}, err
	}
	if len(docs) == 0 {
		return Document{}, services.Wrap(services.ErrConfiguration, "scoretable", "catalog", "no point_*.txt documents in "+dir, nil)
	}
	return docs[0], nil
}

// Download fetches a remote score document into dir and returns its catalog
// entry. The file name is taken from the URL path.
func Download(ctx context.Context, client *http.Client, rawURL, dir string) (Document, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return Document{}, fmt.Errorf("parse score table url: %w", err)
	}
	name := path.Base(parsed.Path)
	if !isDocumentName(name) {
		return Document{}, fmt.Errorf("score table url must end in %s<version>%s, got %q", documentPrefix, documentSuffix, name)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return Document{}, fmt.Errorf("build score table request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Document{}, services.Wrap(services.ErrTransient, "scoretable", "download", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Document{}, services.Wrap(services.ErrTransient, "scoretable", "download", fmt.Sprintf("%s returned %s", rawURL, resp.Status), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return Document{}, fmt.Errorf("read score table body: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Document{}, fmt.Errorf("create score table dir: %w", err)
	}
	dest := filepath.Join(dir, name)
	if err := fileutil.WriteAtomic(dest, data, 0o644); err != nil {
		return Document{}, fmt.Errorf("save score table: %w", err)
	}
	return Document{Version: VersionFromPath(dest), Path: dest, Modified: time.Now()}, nil
}

// Import copies a local point_<version>.txt document into dir.
func Import(src, dir string) (Document, error) {
	name := filepath.Base(src)
	if !isDocumentName(name) {
		return Document{}, services.Wrap(services.ErrValidation, "scoretable", "import", fmt.Sprintf("%q is not a %s<version>%s document", name, documentPrefix, documentSuffix), nil)
	}
	if _, err := os.Stat(src); err != nil {
		return Document{}, services.Wrap(services.ErrNotFound, "scoretable", "import", src, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Document{}, fmt.Errorf("create score table dir: %w", err)
	}
	dest := filepath.Join(dir, name)
	if err := fileutil.CopyFileVerified(src, dest); err != nil {
		return Document{}, fmt.Errorf("import score table: %w", err)
	}
	return Document{Version: VersionFromPath(dest), Path: dest, Modified: time.Now()}, nil
}
