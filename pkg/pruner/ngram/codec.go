package ngram

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/cognicore/pruner/pkg/pruner/internalerr"
)

// File layout, all integers little endian or uvarint:
//
//	magic "NGRF" | version uint16
//	language (string) | n (uvarint) | entry count (uvarint)
//	count x { n x token (string) | probability (float64 bits, uint64) }
//
// A string is a uvarint byte length followed by UTF-8 bytes.
const (
	fileMagic     = "NGRF"
	formatVersion = 1
	fileExt       = ".ngf"

	maxStringLen = 1 << 20
)

// header describes a persisted model.
type header struct {
	Lang  string
	N     int
	Count int
}

// encode writes freqs in key order so identical models produce identical
// files.
func encode(w io.Writer, lang string, n int, freqs map[string]float64) error {
	bw := bufio.NewWriter(w)

	keys := make([]string, 0, len(freqs))
	for k := range freqs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf := make([]byte, 0, 64)
	buf = append(buf, fileMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, formatVersion)
	buf = appendString(buf, lang)
	buf = binary.AppendUvarint(buf, uint64(n))
	buf = binary.AppendUvarint(buf, uint64(len(keys)))
	if _, err := bw.Write(buf); err != nil {
		return err
	}

	for _, k := range keys {
		tokens := splitKey(k)
		if len(tokens) != n {
			return fmt.Errorf("encode %q: expected %d tokens, got %d", k, n, len(tokens))
		}
		buf = buf[:0]
		for _, tok := range tokens {
			buf = appendString(buf, tok)
		}
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(freqs[k]))
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// decode reads a model written by encode.
func decode(r io.Reader) (header, map[string]float64, error) {
	br := bufio.NewReader(r)

	var h header
	magic := make([]byte, len(fileMagic))
	if _, err := io.ReadFull(br, magic); err != nil {
		return h, nil, corrupt("read magic", err)
	}
	if string(magic) != fileMagic {
		return h, nil, corrupt("bad magic", fmt.Errorf("%q", magic))
	}

	var version uint16
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return h, nil, corrupt("read version", err)
	}
	if version != formatVersion {
		return h, nil, corrupt("unsupported version", fmt.Errorf("%d", version))
	}

	lang, err := readString(br)
	if err != nil {
		return h, nil, corrupt("read language", err)
	}
	n, err := binary.ReadUvarint(br)
	if err != nil || n == 0 || n > math.MaxInt32 {
		return h, nil, corrupt("read n", err)
	}
	count, err := binary.ReadUvarint(br)
	if err != nil || count > math.MaxInt32 {
		return h, nil, corrupt("read entry count", err)
	}
	h = header{Lang: lang, N: int(n), Count: int(count)}

	freqs := make(map[string]float64, min(h.Count, 1<<16))
	tokens := make([]string, h.N)
	for i := 0; i < h.Count; i++ {
		for j := range tokens {
			tok, err := readString(br)
			if err != nil {
				return h, nil, corrupt(fmt.Sprintf("read entry %d", i), err)
			}
			tokens[j] = tok
		}
		var bits uint64
		if err := binary.Read(br, binary.LittleEndian, &bits); err != nil {
			return h, nil, corrupt(fmt.Sprintf("read entry %d", i), err)
		}
		freqs[Key(tokens)] = math.Float64frombits(bits)
	}

	return h, freqs, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func readString(br *bufio.Reader) (string, error) {
	size, err := binary.ReadUvarint(br)
	if err != nil {
		return "", err
	}
	if size > maxStringLen {
		return "", fmt.Errorf("string length %d exceeds limit", size)
	}
	var sb strings.Builder
	sb.Grow(int(size))
	if _, err := io.CopyN(&sb, br, int64(size)); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func corrupt(what string, err error) error {
	if err == nil {
		err = errors.New("invalid value")
	}
	return fmt.Errorf("%s: %v: %w", what, err, internalerr.ErrCorruptModel)
}
