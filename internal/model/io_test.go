package model

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddingsRoundTrip(t *testing.T) {
	emb, err := NewEmbeddings(5, 2, 7, 13)
	if err != nil {
		t.Fatal(err)
	}
	labels := []string{"a", "b", "c", "d", "e"}
	path := filepath.Join(t.TempDir(), "entities.txt")

	if err := WriteEmbeddingsFile(path, labels, emb.Entities); err != nil {
		t.Fatal(err)
	}
	gotLabels, got, err := ReadEmbeddingsFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got.R != 5 || got.C != 7 {
		t.Fatalf("read table shape %dx%d, want 5x7", got.R, got.C)
	}
	for i, l := range labels {
		if gotLabels[i] != l {
			t.Fatalf("label %d = %q, want %q", i, gotLabels[i], l)
		}
	}
	for i := range emb.Entities.Data {
		if got.Data[i] != emb.Entities.Data[i] {
			t.Fatalf("value %d did not round trip exactly: %g vs %g", i, got.Data[i], emb.Entities.Data[i])
		}
	}
}

func TestWriteEmbeddingsLabelMismatch(t *testing.T) {
	emb, _ := NewEmbeddings(3, 1, 4, 1)
	var b strings.Builder
	if err := WriteEmbeddings(&b, []string{"only", "two"}, emb.Entities); err == nil {
		t.Fatal("expected error for label/row count mismatch")
	}
}

func TestReadEmbeddingsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"bad header":  "x y\n",
		"wrong width": "1 3\na 0.5 0.25\n",
		"truncated":   "2 2\na 1 2\n",
		"bad value":   "1 2\na 1 oops\n",
		"zero rows":   "0 4\n",
		"one column":  "4\n",
	}
	for name, input := range cases {
		if _, _, err := ReadEmbeddings(strings.NewReader(input)); err == nil {
			t.Fatalf("%s: expected parse error", name)
		}
	}
}
