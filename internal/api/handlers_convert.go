package api

import (
	"bytes"
	"net/http"

	"github.com/dgallion1/rechord/internal/chordpro"
)

// handleConvertChordPro converts a ChordPro request body into the native
// song dialect.
func (s *Server) handleConvertChordPro(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	doc, err := chordpro.Convert(r.Body)
	if err != nil {
		if isTooLarge(err) {
			jsonError(w, "body exceeds max size", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	doc.WriteTo(&buf)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(buf.Bytes())
}
