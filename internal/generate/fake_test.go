package generate

import (
	"context"

	"github.com/hpungsan/kudos/internal/inference"
)

// stubGenerator returns a fixed outcome and records the last request.
type stubGenerator struct {
	out  inference.Outcome
	last inference.Request
	n    int
}

func (s *stubGenerator) Generate(_ context.Context, req inference.Request) inference.Outcome {
	s.last = req
	s.n++
	return s.out
}

// failureModes are every way the remote step can fail without text being accepted.
var failureModes = map[string]inference.Outcome{
	"timeout":   inference.Failed(inference.TransportFailure, "context deadline exceeded"),
	"status500": inference.Failed(inference.MalformedResponse, "status 500"),
	"empty":     inference.Failed(inference.MalformedResponse, "empty result list"),
	"garbled":   inference.Succeeded("#$%^ garbled ~~"),
	"blank":     inference.Succeeded(""),
}
