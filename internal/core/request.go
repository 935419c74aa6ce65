// AngelaMos | 2026
// request.go

package core

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// PathID parses a positive integer route parameter, writing a 400 when it
// is malformed.
func PathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		BadRequest(w, "invalid "+key)
		return 0, false
	}
	return id, true
}
