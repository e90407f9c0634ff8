package ngram

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"github.com/cognicore/pruner/pkg/pruner/internalerr"
)

func TestCodecRoundTrip(t *testing.T) {
	freqs := map[string]float64{
		Key([]string{"the", "cat"}): 0.5,
		Key([]string{"cat", "sat"}): 1.0 / 3,
		Key([]string{"猫", "が"}):    1.0 / 6,
	}

	var buf bytes.Buffer
	if err := encode(&buf, "eng", 2, freqs); err != nil {
		t.Fatalf("encode: %v", err)
	}

	h, got, err := decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Lang != "eng" || h.N != 2 || h.Count != 3 {
		t.Errorf("Unexpected header %+v", h)
	}
	for k, f := range freqs {
		if math.Float64bits(got[k]) != math.Float64bits(f) {
			t.Errorf("Entry %q: got %v, want %v", k, got[k], f)
		}
	}
}

func TestCodecDeterministic(t *testing.T) {
	freqs := map[string]float64{"a": 0.25, "b": 0.25, "c": 0.5}

	var a, b bytes.Buffer
	if err := encode(&a, "eng", 1, freqs); err != nil {
		t.Fatal(err)
	}
	if err := encode(&b, "eng", 1, freqs); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Bytes(), b.Bytes()) {
		t.Error("Encoding the same model twice should produce identical bytes")
	}
}

func TestCodecEmptyModel(t *testing.T) {
	var buf bytes.Buffer
	if err := encode(&buf, "fra", 3, nil); err != nil {
		t.Fatal(err)
	}
	h, got, err := decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Count != 0 || len(got) != 0 {
		t.Errorf("Expected empty model, got %d entries", len(got))
	}
}

func TestEncodeRejectsWrongArity(t *testing.T) {
	var buf bytes.Buffer
	err := encode(&buf, "eng", 2, map[string]float64{"single": 1})
	if err == nil {
		t.Error("Encoding a unigram key as a bigram model should fail")
	}
}

func TestDecodeRejectsCorruptInput(t *testing.T) {
	var good bytes.Buffer
	if err := encode(&good, "eng", 1, map[string]float64{"a": 1}); err != nil {
		t.Fatal(err)
	}
	valid := good.Bytes()

	badVersion := append([]byte{}, valid...)
	badVersion[4] = 9

	tests := map[string][]byte{
		"empty":       {},
		"bad magic":   []byte("PKL\x00\x01\x00"),
		"bad version": badVersion,
		"truncated":   valid[:len(valid)-3],
	}

	for name, data := range tests {
		_, _, err := decode(bytes.NewReader(data))
		if !errors.Is(err, internalerr.ErrCorruptModel) {
			t.Errorf("%s: expected ErrCorruptModel, got %v", name, err)
		}
	}
}
