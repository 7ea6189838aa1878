package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/basalamahsyarief/pykeen/internal/tensor"
)

// WriteEmbeddings writes one table in the word2vec-style text format: a
// "<rows> <dim>" header line, then one "<label> v1 ... vd" line per row in
// index order.  Values survive a round trip exactly.
func WriteEmbeddings(w io.Writer, labels []string, m *tensor.Mat) error {
	if len(labels) != m.R {
		return fmt.Errorf("got %d labels for a table with %d rows", len(labels), m.R)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d\n", m.R, m.C)
	for i := 0; i < m.R; i++ {
		bw.WriteString(labels[i])
		for _, v := range m.Row(i) {
			bw.WriteByte(' ')
			bw.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteEmbeddingsFile is WriteEmbeddings to a file path.
func WriteEmbeddingsFile(path string, labels []string, m *tensor.Mat) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create embeddings file: %w", err)
	}
	if err := WriteEmbeddings(f, labels, m); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadEmbeddings parses a table written by WriteEmbeddings, returning the
// labels in file order and the table itself.
func ReadEmbeddings(r io.Reader) ([]string, *tensor.Mat, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, nil, fmt.Errorf("read embeddings header: %w", err)
		}
		return nil, nil, fmt.Errorf("empty embeddings input")
	}
	header := strings.Fields(scanner.Text())
	if len(header) != 2 {
		return nil, nil, fmt.Errorf("malformed embeddings header %q", scanner.Text())
	}
	rows, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, nil, fmt.Errorf("malformed row count %q", header[0])
	}
	dim, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, nil, fmt.Errorf("malformed dimension %q", header[1])
	}
	if rows < 1 || dim < 1 {
		return nil, nil, fmt.Errorf("embeddings header declares %dx%d table", rows, dim)
	}

	labels := make([]string, 0, rows)
	m := tensor.NewMat(rows, dim)
	for i := 0; i < rows; i++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, nil, fmt.Errorf("read embeddings row %d: %w", i, err)
			}
			return nil, nil, fmt.Errorf("embeddings input ends after %d of %d rows", i, rows)
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) != dim+1 {
			return nil, nil, fmt.Errorf("embeddings row %d has %d values, want %d", i, len(fields)-1, dim)
		}
		labels = append(labels, fields[0])
		row := m.Row(i)
		for k, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("embeddings row %d value %d: %w", i, k, err)
			}
			row[k] = v
		}
	}
	return labels, m, nil
}

// ReadEmbeddingsFile is ReadEmbeddings from a file path.
func ReadEmbeddingsFile(path string) ([]string, *tensor.Mat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open embeddings file: %w", err)
	}
	defer f.Close()
	return ReadEmbeddings(f)
}
