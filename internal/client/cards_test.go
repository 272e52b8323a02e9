package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_SearchCards_QueryEncoding(t *testing.T) {
	var got map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/cards/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{
			"q": q.Get("q"), "set": q.Get("set"), "colors": q.Get("colors"),
			"page": q.Get("page"), "per_page": q.Get("per_page"),
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}, "meta": map[string]any{"total": 0}})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, _ := newTestClient(t, ts, newSignedInSession(t, "acc", ""))

	res, err := c.SearchCards(context.Background(), CardSearchParams{
		Query: "lightning bolt", Set: "lea", Colors: "R", Page: 2, PerPage: 25,
	})
	require.NoError(t, err)
	require.NotNil(t, res)

	want := map[string]string{
		"q": "lightning bolt", "set": "lea", "colors": "R", "page": "2", "per_page": "25",
	}
	require.Equal(t, want, got)
}

func Test_SearchCards_ZeroParamsOmitted(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/cards/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			t.Errorf("zero params produced query %q", r.URL.RawQuery)
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	c, _ := newTestClient(t, ts, newSignedInSession(t, "acc", ""))
	_, err := c.SearchCards(context.Background(), CardSearchParams{})
	require.NoError(t, err)
}
