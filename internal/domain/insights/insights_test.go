package insights

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maueyecare/clinic/internal/api"
)

func TestSuggestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"suggestions": ["Run a back-to-school frame promotion"]}`))
	}))
	defer srv.Close()

	c, err := api.NewClient(srv.URL, 5*time.Second, api.StaticToken("tok"), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	ideas, err := NewService(c).Suggestions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ideas) != 1 || ideas[0] != "Run a back-to-school frame promotion" {
		t.Errorf("unexpected ideas %v", ideas)
	}
}
