package main

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/hyperifyio/originality/internal/semantic"
)

func TestStubServesEmbeddings(t *testing.T) {
	srv := httptest.NewServer(newMux("stub"))
	defer srv.Close()

	s := semantic.NewOpenAI(srv.URL+"/v1", "", "stub", srv.Client())
	same, err := s.Similarity(context.Background(), "steam engines and cotton mills", "steam engines and cotton mills")
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if same < 0.99 {
		t.Fatalf("identical text should be ~1, got %v", same)
	}
	diff, err := s.Similarity(context.Background(), "steam engines and cotton mills", "zzz qqq xxx")
	if err != nil {
		t.Fatalf("similarity: %v", err)
	}
	if diff >= same {
		t.Fatalf("unrelated text scored %v >= %v", diff, same)
	}
}
