package static

import (
	"errors"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

var errTraversal = errors.New("path escapes the root directory")

// fileKind classifies what the filesystem holds at a resolved path.
type fileKind int

const (
	kindRegular fileKind = iota
	kindDirectory
	kindMissing
	kindUnreadable
)

// target is the outcome of a single filesystem probe.
type target struct {
	kind fileKind
	path string
	err  error
}

// resolve maps a request path to an absolute path below the server
// root. Percent escapes have already been decoded by net/http. Paths
// whose ".." segments climb out of the root fail with errTraversal.
func (s *Server) resolve(urlPath string) (string, error) {
	rel := path.Clean(strings.TrimLeft(urlPath, "/"))
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", errTraversal
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

func (s *Server) inRoot(fsPath string) bool {
	return fsPath == s.root || strings.HasPrefix(fsPath, s.root+string(filepath.Separator))
}

// probe canonicalizes fsPath and classifies it with a single stat. A
// symlink pointing outside the root counts as traversal, even when its
// target does not exist.
func (s *Server) probe(fsPath string) target {
	resolved, err := filepath.EvalSymlinks(fsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if dest, ok := danglingSymlinkTarget(fsPath); ok && !s.inRoot(dest) {
				return target{kind: kindUnreadable, path: fsPath, err: errTraversal}
			}
			return target{kind: kindMissing, path: fsPath}
		}
		return target{kind: kindUnreadable, path: fsPath, err: err}
	}
	if !s.inRoot(resolved) {
		return target{kind: kindUnreadable, path: fsPath, err: errTraversal}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return target{kind: kindUnreadable, path: resolved, err: err}
	}
	if info.IsDir() {
		return target{kind: kindDirectory, path: resolved}
	}
	return target{kind: kindRegular, path: resolved}
}

// danglingSymlinkTarget reports where fsPath would point when it is a
// symlink whose target does not exist.
func danglingSymlinkTarget(fsPath string) (string, bool) {
	info, err := os.Lstat(fsPath)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return "", false
	}
	dest, err := os.Readlink(fsPath)
	if err != nil {
		return "", false
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(fsPath), dest)
	}
	return filepath.Clean(dest), true
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	status := s.serveRequest(w, r)
	s.Logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", status)
}

func (s *Server) serveRequest(w http.ResponseWriter, r *http.Request) int {
	fsPath, err := s.resolve(r.URL.Path)
	if err != nil {
		s.Logger.Warn("path traversal rejected", "path", r.URL.Path)
		return reply(w, http.StatusForbidden)
	}

	tgt := s.probe(fsPath)
	if errors.Is(tgt.err, errTraversal) {
		s.Logger.Warn("path traversal rejected", "path", r.URL.Path)
		return reply(w, http.StatusForbidden)
	}

	switch tgt.kind {
	case kindDirectory:
		index := s.probe(filepath.Join(tgt.path, "index.html"))
		if index.kind != kindRegular {
			// Directory listings are disabled.
			return reply(w, http.StatusForbidden)
		}
		return s.sendFile(w, r, index.path)
	case kindRegular:
		return s.sendFile(w, r, tgt.path)
	case kindMissing:
		return reply(w, http.StatusNotFound)
	default:
		s.Logger.Error("cannot access file", "path", tgt.path, "err", tgt.err)
		return reply(w, http.StatusInternalServerError)
	}
}

func (s *Server) sendFile(w http.ResponseWriter, r *http.Request, fsPath string) int {
	data, err := os.ReadFile(fsPath)
	if err != nil {
		s.Logger.Error("read failed", "path", fsPath, "err", err)
		return reply(w, http.StatusInternalServerError)
	}

	ctype := mime.TypeByExtension(filepath.Ext(fsPath))
	if ctype == "" {
		ctype = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(data)
	}
	return http.StatusOK
}

// reply sends the generic status text; detail stays in the log.
func reply(w http.ResponseWriter, status int) int {
	http.Error(w, http.StatusText(status), status)
	return status
}
