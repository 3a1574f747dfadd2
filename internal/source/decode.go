package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Decoding errors.
var (
	ErrUnreadable = errors.New("cannot read input file")
	ErrNoEncoding = errors.New("no usable text encoding")
)

// utf8SigName selects UTF-8 with an optional leading byte order mark.
const utf8SigName = "utf-8-sig"

// labelAliases covers code-page names that are not WHATWG labels.
var labelAliases = map[string]string{
	"cp936":    "gbk",
	"ms936":    "gbk",
	"utf8-sig": utf8SigName,
}

// Decoded is file content converted to UTF-8.
type Decoded struct {
	Text     string
	Encoding string
	Lossy    bool
}

// ResolveEncoding maps an encoding label (gbk, gb2312, cp936, gb18030, utf-8, utf-8-sig, ...) to a decoder.
func ResolveEncoding(name string) (encoding.Encoding, error) {
	label := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := labelAliases[label]; ok {
		label = alias
	}

	if label == utf8SigName {
		return unicode.UTF8BOM, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrNoEncoding, name, err)
	}

	return enc, nil
}

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	// replacementChar is U+FFFD as UTF-8 bytes.
	replacementChar = []byte("\uFFFD")
)

// DetectEncoding decodes raw with the first candidate that maps every byte sequence.
// UTF-8 candidates are strict when raw is valid UTF-8; other candidates are strict
// when decoding introduced no U+FFFD of its own. When no candidate decodes cleanly,
// the first resolvable candidate is used with unmappable sequences replaced, and
// Lossy is set.
func DetectEncoding(raw []byte, candidates []string) (Decoded, error) {
	var fallback *Decoded

	for _, name := range candidates {
		enc, err := ResolveEncoding(name)
		if err != nil {
			continue
		}

		out, err := enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}

		if decodedCleanly(enc, raw, out) {
			return Decoded{Text: string(out), Encoding: name}, nil
		}

		if fallback == nil {
			fallback = &Decoded{Text: string(out), Encoding: name, Lossy: true}
		}
	}

	if fallback != nil {
		return *fallback, nil
	}

	return Decoded{}, fmt.Errorf("%w: tried %v", ErrNoEncoding, candidates)
}

func decodedCleanly(enc encoding.Encoding, raw, out []byte) bool {
	if isUTF8(enc) {
		return utf8.Valid(bytes.TrimPrefix(raw, utf8BOM))
	}

	return !bytes.ContainsRune(out, utf8.RuneError) || bytes.Contains(raw, replacementChar)
}

func isUTF8(enc encoding.Encoding) bool {
	if enc == unicode.UTF8BOM {
		return true
	}

	name, err := htmlindex.Name(enc)

	return err == nil && name == "utf-8"
}

// ReadFileDecoded reads path and decodes it with DetectEncoding.
func ReadFileDecoded(path string, candidates []string) (Decoded, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	return DetectEncoding(raw, candidates)
}
