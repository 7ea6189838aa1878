package main

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestSummariseMetrics(t *testing.T) {
	if got := summariseMetrics(nil); got != "-" {
		t.Fatalf("empty blob summarised as %q, want -", got)
	}
	if got := summariseMetrics(json.RawMessage(`not json`)); got != "-" {
		t.Fatalf("garbage blob summarised as %q, want -", got)
	}

	blob := json.RawMessage(`{"unfiltered":{"both":{"mean_reciprocal_rank":0.25}}}`)
	if got := summariseMetrics(blob); got != "mrr 0.2500" {
		t.Fatalf("unfiltered summary is %q", got)
	}

	blob = json.RawMessage(`{
		"unfiltered":{"both":{"mean_reciprocal_rank":0.25}},
		"filtered":{"both":{"mean_reciprocal_rank":0.5}}
	}`)
	if got := summariseMetrics(blob); got != "filtered mrr 0.5000" {
		t.Fatalf("filtered summary is %q", got)
	}
}
