package server

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
)

//go:embed static/*
var staticFiles embed.FS

// StaticFilesFS is the embedded asset tree rooted at static/
var StaticFilesFS = sync.OnceValue(func() fs.FS {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("Failed to create sub filesystem: " + err.Error())
	}
	return subFS
})

type staticAsset struct {
	data        []byte
	contentType string
	etag        string
}

var (
	assetsMu sync.RWMutex
	assets   = map[string]*staticAsset{}
)

// loadAsset reads and memoises an embedded file along with its content type and ETag
func loadAsset(name string) (*staticAsset, error) {
	assetsMu.RLock()
	a, ok := assets[name]
	assetsMu.RUnlock()
	if ok {
		return a, nil
	}

	data, err := fs.ReadFile(StaticFilesFS(), name)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	ctype := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	if strings.HasPrefix(ctype, "text/") && !strings.Contains(strings.ToLower(ctype), "charset=") {
		ctype += "; charset=utf-8"
	}
	sum := sha256.Sum256(data)
	a = &staticAsset{data: data, contentType: ctype, etag: `"` + hex.EncodeToString(sum[:8]) + `"`}

	assetsMu.Lock()
	assets[name] = a
	assetsMu.Unlock()
	return a, nil
}

// StreamFile writes an embedded asset, answering 304 when the client already holds this version
func StreamFile(w http.ResponseWriter, r *http.Request, fileName string) error {
	a, err := loadAsset(fileName)
	if err != nil {
		return err
	}

	w.Header().Set("ETag", a.etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == a.etag {
		w.WriteHeader(http.StatusNotModified)
		return nil
	}
	w.Header().Set("Content-Type", a.contentType)
	if _, err := w.Write(a.data); err != nil {
		return fmt.Errorf("failed to write %s content: %w", fileName, err)
	}
	return nil
}
