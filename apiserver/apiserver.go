package apiserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"video2midi/converter"
)

const defaultMaxBody = 64 << 20

type Options struct {
	Converter *converter.Converter
	Logger    *zap.Logger
	// AllowedOrigins for CORS. Empty allows any origin.
	AllowedOrigins []string
	// MaxBody caps request bodies in bytes.
	MaxBody int64
}

type server struct {
	conv    *converter.Converter
	log     *zap.Logger
	maxBody int64
}

func New(opts Options) http.Handler {
	var log = opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var s = &server{conv: opts.Converter, log: log.Named("apiserver"), maxBody: opts.MaxBody}
	if s.maxBody <= 0 {
		s.maxBody = defaultMaxBody
	}

	r := mux.NewRouter()
	r.Use(s.requestID, s.limitBody)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/encode", s.handleEncode).Methods(http.MethodPost)
	r.HandleFunc("/calibrate", s.handleCalibrate).Methods(http.MethodPost)

	var origins = opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{requestIDHeader},
	})

	return c.Handler(r)
}

// Run serves handler on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("running server", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
