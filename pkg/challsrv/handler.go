// SPDX-License-Identifier: LGPL-3.0-or-later

package challsrv

import (
	"errors"
	"io/fs"
	"net/http"
	"strings"
)

// LastSegment returns everything after the final "/" of p. Anything before it,
// including "..", is discarded.
func LastSegment(p string) string {
	return p[strings.LastIndex(p, "/")+1:]
}

// fileHandler serves LastSegment of the request path out of dir.
type fileHandler struct {
	dir string
}

func (h fileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := LastSegment(r.URL.Path)
	if name == "" || name == "." || name == ".." {
		http.NotFound(w, r)
		return
	}

	f, err := http.Dir(h.dir).Open("/" + name)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			http.NotFound(w, r)
		case errors.Is(err, fs.ErrPermission):
			http.Error(w, "403 Forbidden", http.StatusForbidden)
		default:
			http.Error(w, "500 Internal Server Error", http.StatusInternalServerError)
		}
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
