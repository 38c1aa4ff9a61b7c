package apiserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"video2midi/encoder"
	"video2midi/keyboard"
	"video2midi/matrix"
	"video2midi/midifile"
)

type EncodeRequest struct {
	FPS   int              `json:"fps"`
	Left  *matrix.Activity `json:"left"`
	Right *matrix.Activity `json:"right"`
}

type CalibrateResponse struct {
	Keys    int              `json:"keys"`
	LastKey int              `json:"lastKey"`
	Entries []keyboard.Entry `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("write response", zap.Error(err))
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, err error) {
	s.log.Info("request failed", zap.Int("status", status), zap.Error(err))
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pickOutput(song encoder.Song, name string) (encoder.Output, error) {
	switch name {
	case "", "combined":
		return song.Combined, nil
	case "right":
		return song.RightOnly, nil
	case "left":
		return song.LeftOnly, nil
	}
	return encoder.Output{}, fmt.Errorf("unknown output %q, want combined, right or left", name)
}

// handleEncode turns two activity matrices into one of the song outputs.
// Query: output=combined|right|left, format=csv|midi|json.
func (s *server) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req EncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	if req.Left == nil || req.Right == nil {
		s.writeError(w, http.StatusBadRequest, errors.New("both left and right matrices are required"))
		return
	}

	song, err := s.conv.Encode(req.Left, req.Right, req.FPS)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	out, err := pickOutput(song, r.URL.Query().Get("output"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv")
		if err := out.WriteCSV(w); err != nil {
			s.log.Warn("write csv", zap.Error(err))
		}
	case "midi":
		var buf bytes.Buffer
		if err := midifile.Write(&buf, out); err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		w.Header().Set("Content-Type", "audio/midi")
		w.Write(buf.Bytes())
	case "json":
		s.writeJSON(w, http.StatusOK, midifile.ToJSON(out))
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown format %q, want csv, midi or json", format))
	}
}

// handleCalibrate reads a clear reference frame (png, jpeg, bmp or webp)
// from the body and returns its key map.
func (s *server) handleCalibrate(w http.ResponseWriter, r *http.Request) {
	img, _, err := image.Decode(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decode image: %w", err))
		return
	}

	km, err := s.conv.Calibrate(img)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.writeJSON(w, http.StatusOK, CalibrateResponse{Keys: km.Len(), LastKey: km.LastKey(), Entries: km.Entries()})
}
