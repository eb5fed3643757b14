/*
Package server exposes a suggest.IPredictor over two transports: msgpack
IPC on stdin/stdout for editor plugins, and JSON over HTTP.

# IPC

Clients write msgpack maps to stdin and read one msgpack map per request
from stdout. Once the model is loaded the server announces itself:

	{"status": "ready"}

Prediction requests carry free text; the last two words are the context:

	{"id": "req_001", "c": "i want to"}

The response lists continuations best first, with 1-based rank, corpus
count and lookup time in microseconds:

	{"id": "req_001", "s": [{"w": "go", "r": 1, "n": 412}, {"w": "be", "r": 2, "n": 377}], "c": 2, "t": 3}

An unknown context is not an error; it answers with an empty "s".
A health request reports the loaded index:

	{"id": "h1", "action": "health"}
	{"id": "h1", "status": "ok", "records": 91234, "words": 20511}

Failures come back as {"id", "e", "c"} with an HTTP-style code.

# HTTP

	POST /predict  {"context": "i want to"}  ->  {"suggestions": ["go", "be"]}
	GET  /health                             ->  {"status": "ok", "records": N, "words": M}
*/
package server

const (
	ActionPredict = "predict"
	ActionHealth  = "health"
)

// PredictRequest is an IPC request. Action defaults to predict.
type PredictRequest struct {
	ID      string `msgpack:"id"`
	Context string `msgpack:"c"`
	Limit   int    `msgpack:"l,omitempty"`
	Action  string `msgpack:"action,omitempty"`
}

// PredictSuggestion - minimal suggestion response
type PredictSuggestion struct {
	Word  string `msgpack:"w"`
	Rank  uint16 `msgpack:"r"`
	Count uint32 `msgpack:"n"`
}

// PredictResponse - prediction response
type PredictResponse struct {
	ID          string              `msgpack:"id"`
	Suggestions []PredictSuggestion `msgpack:"s"`
	Count       int                 `msgpack:"c"`
	TimeTaken   int64               `msgpack:"t"`
}

// HealthResponse reports the loaded index on both transports.
type HealthResponse struct {
	ID      string `msgpack:"id,omitempty" json:"-"`
	Status  string `msgpack:"status" json:"status"`
	Records int    `msgpack:"records" json:"records"`
	Words   int    `msgpack:"words" json:"words"`
}

// PredictError holds basic error information for IPC requests
type PredictError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// HTTPPredictRequest is the body of POST /predict.
type HTTPPredictRequest struct {
	Context string `json:"context"`
}

// HTTPPredictResponse is the body returned by POST /predict.
type HTTPPredictResponse struct {
	Suggestions []string `json:"suggestions"`
}
