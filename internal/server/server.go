// Package server exposes a trained model over REST: single-triple scoring,
// top-k tail and head prediction, and model metadata.  Embedding tables are
// read-only while serving, so every handler may run concurrently.
package server

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v5"

	"github.com/basalamahsyarief/pykeen/internal/model"
	"github.com/basalamahsyarief/pykeen/internal/triples"
)

// DefaultTopK bounds prediction responses when the request leaves k unset.
const DefaultTopK = 10

// Server serves one model using the label maps of labels.  known, when
// non-nil, enables filtered prediction.
type Server struct {
	model   model.Model
	labels  *triples.Factory
	known   func(triples.Triple) bool
	dataset string
}

func NewServer(m model.Model, labels *triples.Factory, known func(triples.Triple) bool, dataset string) *Server {
	return &Server{model: m, labels: labels, known: known, dataset: dataset}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/healthz", s.handleHealthz)
	e.GET("/v1/info", s.handleInfo)
	e.POST("/v1/score", s.handleScore)
	e.POST("/v1/predict/tails", s.handlePredictTails)
	e.POST("/v1/predict/heads", s.handlePredictHeads)
}

func (s *Server) handleHealthz(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(c *echo.Context) error {
	return c.JSON(http.StatusOK, InfoResponse{
		Model:        s.model.Name(),
		Dim:          s.model.Dim(),
		NumEntities:  s.model.NumEntities(),
		NumRelations: s.model.NumRelations(),
		Dataset:      s.dataset,
	})
}

func (s *Server) handleScore(c *echo.Context) error {
	req, err := decodeJSON[ScoreRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	h, err := s.labels.EntityID(req.Head)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	r, err := s.labels.RelationID(req.Relation)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	t, err := s.labels.EntityID(req.Tail)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	scores, err := s.model.ScoreHRT([]int64{h}, []int64{r}, []int64{t})
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	return c.JSON(http.StatusOK, ScoreResponse{
		Head:     req.Head,
		Relation: req.Relation,
		Tail:     req.Tail,
		Score:    scores[0],
	})
}

func (s *Server) handlePredictTails(c *echo.Context) error {
	req, err := decodeJSON[PredictRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Head == "" {
		return writeBadRequest(c, "head label is required for tail prediction")
	}
	h, err := s.labels.EntityID(req.Head)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	r, err := s.labels.RelationID(req.Relation)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	scores, err := s.model.ScoreTails([]int64{h}, []int64{r})
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	return s.writePredictions(c, req, scores.Row(0), func(e int64) triples.Triple {
		return triples.Triple{Head: h, Relation: r, Tail: e}
	})
}

func (s *Server) handlePredictHeads(c *echo.Context) error {
	req, err := decodeJSON[PredictRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Tail == "" {
		return writeBadRequest(c, "tail label is required for head prediction")
	}
	r, err := s.labels.RelationID(req.Relation)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	t, err := s.labels.EntityID(req.Tail)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	scores, err := s.model.ScoreHeads([]int64{r}, []int64{t})
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	return s.writePredictions(c, req, scores.Row(0), func(e int64) triples.Triple {
		return triples.Triple{Head: e, Relation: r, Tail: t}
	})
}

// writePredictions ranks one score row, applies the optional known-triple
// filter, and responds with the top k candidates.
func (s *Server) writePredictions(c *echo.Context, req PredictRequest, row []float64, complete func(int64) triples.Triple) error {
	if req.K < 0 {
		return writeBadRequest(c, "k must not be negative")
	}
	if req.Filter && s.known == nil {
		return writeBadRequest(c, "filtered prediction is not available without a dataset")
	}
	k := req.K
	if k == 0 {
		k = DefaultTopK
	}

	type cand struct {
		id    int64
		score float64
	}
	cands := make([]cand, 0, len(row))
	for i, score := range row {
		id := int64(i)
		if req.Filter && s.known(complete(id)) {
			continue
		}
		cands = append(cands, cand{id: id, score: score})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].id < cands[j].id
	})
	if k > len(cands) {
		k = len(cands)
	}

	preds := make([]Prediction, 0, k)
	for _, cd := range cands[:k] {
		label, err := s.labels.EntityLabel(cd.id)
		if err != nil {
			return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
		}
		preds = append(preds, Prediction{Entity: label, Score: cd.score})
	}
	return c.JSON(http.StatusOK, PredictResponse{Predictions: preds})
}
