package apiserver

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video2midi/config"
	"video2midi/converter"
	"video2midi/matrix"
	"video2midi/midifile"
	"video2midi/pianoroll"
)

func newTestHandler(t *testing.T) (http.Handler, *pianoroll.Renderer) {
	r, err := pianoroll.NewRenderer(pianoroll.DefaultLayout())
	require.NoError(t, err)
	l := r.Layout()

	cfg := config.Default()
	cfg.Calibration.BlackKeyHeight = l.BlackProbe()
	cfg.Calibration.WhiteKeyHeight = l.WhiteProbe()
	cfg.Calibration.Threshold = 128
	cfg.Calibration.Gap = 4

	conv, err := converter.New(cfg, converter.Options{})
	require.NoError(t, err)

	return New(Options{Converter: conv}), r
}

func encodeBody(t *testing.T, fps int) *bytes.Reader {
	left := matrix.New(5, 3)
	right := matrix.New(5, 3)
	for f := 1; f <= 3; f++ {
		right.Set(f, 1, true)
	}

	data, err := json.Marshal(EncodeRequest{FPS: fps, Left: left, Right: right})
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// wideBody is a request whose matrices have more key columns than a piano.
func wideBody(t *testing.T) *bytes.Reader {
	left := matrix.New(3, 120)
	right := matrix.New(3, 120)
	right.Set(1, 119, true)

	data, err := json.Marshal(EncodeRequest{FPS: 10, Left: left, Right: right})
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestEncodeCSV(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/encode?output=right", encodeBody(t, 10)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Equal(t, "0, 0, Header, 1, 1, 1800", lines[0])
	assert.Contains(t, lines, "1, 300, Note_on_c, 0, 22, 127")
	assert.Contains(t, lines, "1, 1200, Note_off_c, 0, 22, 0")
}

func TestEncodeMIDI(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/encode?format=midi", encodeBody(t, 10)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sum, err := midifile.Read(rec.Body)
	require.NoError(t, err)
	require.Len(t, sum.Tracks, 2)
	assert.Len(t, sum.Tracks[0].Notes, 2)
}

func TestEncodeJSON(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/encode?format=json&output=right", encodeBody(t, 10)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var song midifile.Song
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &song))
	require.Len(t, song.Tracks, 1)
	require.Len(t, song.Tracks[0].Notes, 1)
	assert.Equal(t, 900, song.Tracks[0].Notes[0].DurationTicks)
}

func TestEncodeErrors(t *testing.T) {
	h, _ := newTestHandler(t)

	cases := []struct {
		name   string
		url    string
		body   *bytes.Reader
		status int
	}{
		{"zero fps", "/encode", encodeBody(t, 0), http.StatusUnprocessableEntity},
		{"unknown output", "/encode?output=both", encodeBody(t, 10), http.StatusBadRequest},
		{"unknown format", "/encode?format=mp3", encodeBody(t, 10), http.StatusBadRequest},
		{"not json", "/encode", bytes.NewReader([]byte("{")), http.StatusBadRequest},
		{"missing hand", "/encode", bytes.NewReader([]byte(`{"fps":10,"left":[[0]]}`)), http.StatusBadRequest},
		{"too many keys as csv", "/encode", wideBody(t), http.StatusUnprocessableEntity},
		{"too many keys as midi", "/encode?format=midi", wideBody(t), http.StatusUnprocessableEntity},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tc.url, tc.body))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestCalibrate(t *testing.T) {
	h, r := newTestHandler(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, r.Clear()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calibrate", &buf))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp CalibrateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 88, resp.Keys)
	assert.Equal(t, 87, resp.LastKey)
	assert.Equal(t, 10.0, resp.Entries[0].Column)
}

func TestCalibrateRejectsGarbage(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/calibrate", strings.NewReader("not an image")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownMethod(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/encode", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
