package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/basalamahsyarief/pykeen/internal/model"
	"github.com/basalamahsyarief/pykeen/internal/tensor"
	"github.com/basalamahsyarief/pykeen/internal/triples"
)

// testServer wires a one-dimensional model whose score is the product of
// the embedding values: alice=1, bob=2, carol=3, knows=2.
func testServer(t *testing.T, withFilter bool) *echo.Echo {
	t.Helper()
	f := triples.FromLabeled([][3]string{
		{"alice", "knows", "bob"},
		{"bob", "knows", "carol"},
	})
	emb, err := model.NewEmbeddingsFromTables(
		tensor.NewMatFromData(3, 1, []float64{1, 2, 3}),
		tensor.NewMatFromData(1, 1, []float64{2}),
	)
	if err != nil {
		t.Fatalf("building tables: %v", err)
	}
	m, err := model.New("distmult", model.Config{Pretrained: emb})
	if err != nil {
		t.Fatalf("building model: %v", err)
	}
	var known func(triples.Triple) bool
	if withFilter {
		known = f.Contains
	}
	server := NewServer(m, f, known, "toy")
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthzAndInfo(t *testing.T) {
	t.Parallel()

	e := testServer(t, true)
	rec := doJSON(t, e, http.MethodGet, "/v1/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected healthz body: %s", rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodGet, "/v1/info", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("info status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var info InfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if info.Model != "distmult" || info.Dim != 1 || info.NumEntities != 3 || info.NumRelations != 1 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Dataset != "toy" {
		t.Fatalf("dataset %q, want toy", info.Dataset)
	}
}

func TestScoreEndpoint(t *testing.T) {
	t.Parallel()

	e := testServer(t, true)
	rec := doJSON(t, e, http.MethodPost, "/v1/score", `{"head":"alice","relation":"knows","tail":"bob"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("score status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp ScoreResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode score response: %v", err)
	}
	if resp.Score != 4 {
		t.Fatalf("score %g, want 4", resp.Score)
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/score", `{"head":"mallory","relation":"knows","tail":"bob"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown entity status: got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/score", `not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPredictTails(t *testing.T) {
	t.Parallel()

	e := testServer(t, true)
	rec := doJSON(t, e, http.MethodPost, "/v1/predict/tails", `{"head":"alice","relation":"knows","k":2}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("predict status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp PredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode predictions: %v", err)
	}
	if len(resp.Predictions) != 2 {
		t.Fatalf("got %d predictions, want 2", len(resp.Predictions))
	}
	if resp.Predictions[0].Entity != "carol" || resp.Predictions[0].Score != 6 {
		t.Fatalf("top prediction %+v, want carol with score 6", resp.Predictions[0])
	}
	if resp.Predictions[1].Entity != "bob" || resp.Predictions[1].Score != 4 {
		t.Fatalf("second prediction %+v, want bob with score 4", resp.Predictions[1])
	}

	// Filtering drops bob because (alice, knows, bob) is a known triple.
	rec = doJSON(t, e, http.MethodPost, "/v1/predict/tails", `{"head":"alice","relation":"knows","filter":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered predict status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode filtered predictions: %v", err)
	}
	if len(resp.Predictions) != 2 {
		t.Fatalf("got %d filtered predictions, want 2", len(resp.Predictions))
	}
	if resp.Predictions[0].Entity != "carol" || resp.Predictions[1].Entity != "alice" {
		t.Fatalf("filtered predictions %+v, want carol then alice", resp.Predictions)
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/predict/tails", `{"relation":"knows"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing head status: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPredictHeads(t *testing.T) {
	t.Parallel()

	e := testServer(t, true)
	rec := doJSON(t, e, http.MethodPost, "/v1/predict/heads", `{"relation":"knows","tail":"carol","k":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("predict status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp PredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode predictions: %v", err)
	}
	if len(resp.Predictions) != 3 {
		t.Fatalf("got %d predictions, want 3", len(resp.Predictions))
	}
	if resp.Predictions[0].Entity != "carol" || resp.Predictions[0].Score != 18 {
		t.Fatalf("top prediction %+v, want carol with score 18", resp.Predictions[0])
	}

	// Filtering drops bob because (bob, knows, carol) is a known triple.
	rec = doJSON(t, e, http.MethodPost, "/v1/predict/heads", `{"relation":"knows","tail":"carol","filter":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("filtered predict status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode filtered predictions: %v", err)
	}
	for _, p := range resp.Predictions {
		if p.Entity == "bob" {
			t.Fatalf("filtered predictions still contain bob: %+v", resp.Predictions)
		}
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/predict/heads", `{"relation":"knows"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing tail status: got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestPredictValidation(t *testing.T) {
	t.Parallel()

	e := testServer(t, true)
	rec := doJSON(t, e, http.MethodPost, "/v1/predict/tails", `{"head":"alice","relation":"knows","k":-1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative k status: got %d body=%s", rec.Code, rec.Body.String())
	}

	noFilter := testServer(t, false)
	rec = doJSON(t, noFilter, http.MethodPost, "/v1/predict/tails", `{"head":"alice","relation":"knows","filter":true}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("filter without dataset status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "not available") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}

	// A k larger than the entity count returns every candidate.
	rec = doJSON(t, e, http.MethodPost, "/v1/predict/tails", `{"head":"alice","relation":"knows","k":100}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("large k status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp PredictResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode predictions: %v", err)
	}
	if len(resp.Predictions) != 3 {
		t.Fatalf("got %d predictions, want all 3", len(resp.Predictions))
	}
}
