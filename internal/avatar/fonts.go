package avatar

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"ralsponsors/internal/logger"
)

// DefaultFontPaths lists CJK-capable system fonts tried when none are configured.
var DefaultFontPaths = []string{
	"C:/Windows/Fonts/msyh.ttc",
	"C:/Windows/Fonts/simhei.ttf",
	"/System/Library/Fonts/PingFang.ttc",
	"/System/Library/Fonts/STHeiti Medium.ttc",
	"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/noto-cjk/NotoSansCJK-Regular.ttc",
	"/usr/share/fonts/truetype/wqy/wqy-microhei.ttc",
}

// collectionTag opens every TrueType/OpenType collection file.
var collectionTag = []byte("ttcf")

// FontChain picks the first font able to draw a rune.
// Candidates are system font files in order, then the embedded Go Regular face,
// then the 7x13 bitmap face which is always available.
type FontChain struct {
	logger  *logger.Logger
	builtin *opentype.Font
	paths   []string
	fonts   []*opentype.Font
	buf     sfnt.Buffer
	loaded  bool
}

// NewFontChain creates a chain over the given font files. Files are read lazily.
func NewFontChain(paths []string, log *logger.Logger) *FontChain {
	return &FontChain{
		paths:  paths,
		logger: log,
	}
}

func (c *FontChain) load() {
	if c.loaded {
		return
	}

	c.loaded = true

	for _, path := range c.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			c.logger.Debug("Font not available", "path", path, "error", err)
			continue
		}

		fonts, err := parseFontFile(data)
		if err != nil {
			c.logger.Warn("Failed to parse font", "path", path, "error", err)
			continue
		}

		c.fonts = append(c.fonts, fonts...)
	}

	builtin, err := opentype.Parse(goregular.TTF)
	if err != nil {
		c.logger.Warn("Failed to parse embedded font", "error", err)
		return
	}

	c.builtin = builtin
}

func parseFontFile(data []byte) ([]*opentype.Font, error) {
	if !bytes.HasPrefix(data, collectionTag) {
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse font: %w", err)
		}

		return []*opentype.Font{f}, nil
	}

	coll, err := opentype.ParseCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse font collection: %w", err)
	}

	fonts := make([]*opentype.Font, 0, coll.NumFonts())
	for i := range coll.NumFonts() {
		f, err := coll.Font(i)
		if err != nil {
			return nil, fmt.Errorf("font %d in collection: %w", i, err)
		}

		fonts = append(fonts, f)
	}

	return fonts, nil
}

func (c *FontChain) hasGlyph(f *opentype.Font, r rune) bool {
	idx, err := f.GlyphIndex(&c.buf, r)
	return err == nil && idx != 0
}

// Face returns a face that can draw r at px pixels.
// scalable is false for the bitmap fallback, which has a fixed size and must be
// scaled by the caller.
func (c *FontChain) Face(r rune, px float64) (face font.Face, scalable bool) {
	c.load()

	candidates := make([]*opentype.Font, 0, len(c.fonts)+1)
	candidates = append(candidates, c.fonts...)

	if c.builtin != nil {
		candidates = append(candidates, c.builtin)
	}

	for _, f := range candidates {
		if !c.hasGlyph(f, r) {
			continue
		}

		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    px,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			c.logger.Debug("Failed to create font face", "error", err)
			continue
		}

		return face, true
	}

	return basicfont.Face7x13, false
}
