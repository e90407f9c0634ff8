package main

import (
	"bufio"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/cognicore/pruner/pkg/pruner/corpus"
)

const maxLineSize = 16 << 20

// readLines returns every line of path, or of stdin for "-". Blank lines are
// kept so sentence indices match input line numbers.
func readLines(path string, stdin io.Reader) ([]string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	return lines, scanner.Err()
}

// writeSentences writes one sentence text per line to path, or to stdout
// for "-".
func writeSentences(path string, stdout io.Writer, sentences iter.Seq[corpus.Sentence]) error {
	if path == "-" {
		return writeTo(stdout, sentences)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeTo(f, sentences); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTo(w io.Writer, sentences iter.Seq[corpus.Sentence]) error {
	bw := bufio.NewWriter(w)
	for s := range sentences {
		if _, err := bw.WriteString(s.Text); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
