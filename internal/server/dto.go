package server

// ScoreRequest names one triple by its labels.
type ScoreRequest struct {
	Head     string `json:"head"`
	Relation string `json:"relation"`
	Tail     string `json:"tail"`
}

// ScoreResponse echoes the triple with its plausibility score.
type ScoreResponse struct {
	Head     string  `json:"head"`
	Relation string  `json:"relation"`
	Tail     string  `json:"tail"`
	Score    float64 `json:"score"`
}

// PredictRequest asks for top-k completions of a partial triple.  Tail
// prediction needs Head and Relation; head prediction needs Relation and
// Tail.  Filter drops candidates that already form a known triple.
type PredictRequest struct {
	Head     string `json:"head,omitempty"`
	Relation string `json:"relation"`
	Tail     string `json:"tail,omitempty"`
	K        int    `json:"k,omitempty"`
	Filter   bool   `json:"filter,omitempty"`
}

// Prediction is one ranked completion.
type Prediction struct {
	Entity string  `json:"entity"`
	Score  float64 `json:"score"`
}

// PredictResponse lists completions in descending score order.
type PredictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// InfoResponse describes the served model.
type InfoResponse struct {
	Model        string `json:"model"`
	Dim          int    `json:"dim"`
	NumEntities  int    `json:"num_entities"`
	NumRelations int    `json:"num_relations"`
	Dataset      string `json:"dataset,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
