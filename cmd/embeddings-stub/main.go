package main

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// vector maps text to a deterministic 27-dimension letter histogram so
// that similar passages get similar embeddings without a model.
func vector(s string) []float32 {
	v := make([]float32, 27)
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z':
			v[r-'a']++
		case unicode.IsSpace(r):
			v[26]++
		}
	}
	return v
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Input) == 0 {
			http.Error(w, "expected {\"input\": [...]}", http.StatusBadRequest)
			return
		}
		data := make([]map[string]any, 0, len(req.Input))
		for i, in := range req.Input {
			data = append(data, map[string]any{"object": "embedding", "index": i, "embedding": vector(in)})
		}
		log.Debug().Int("inputs", len(req.Input)).Msg("embeddings served")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "model": model, "data": data})
	})
	return mux
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "text-embedding-3-small"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}
	log.Info().Str("addr", addr).Str("model", model).Msg("embeddings stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}
