package avatar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"ralsponsors/internal/config"
	"ralsponsors/internal/logger"
	"ralsponsors/internal/models"
	"ralsponsors/pkg/utils"
)

// ErrWriteAvatar is returned when a generated image cannot be stored.
var ErrWriteAvatar = errors.New("failed to write avatar")

const (
	fileExt        = ".png"
	fileToken      = "{file}"
	fallbackGlyph  = "?"
	glyphScale     = 0.5
	defaultIDBytes = 8
)

// unsafeFileChars matches every character not allowed in an avatar file name.
var unsafeFileChars = regexp.MustCompile(`[^0-9A-Za-z_-]`)

type gradient struct {
	top, bottom colorful.Color
}

var palette = []gradient{
	mustGradient("#667eea", "#764ba2"),
	mustGradient("#f093fb", "#f5576c"),
	mustGradient("#4facfe", "#00f2fe"),
	mustGradient("#43e97b", "#38f9d7"),
	mustGradient("#fa709a", "#fee140"),
	mustGradient("#30cfd0", "#330867"),
	mustGradient("#a18cd1", "#fbc2eb"),
	mustGradient("#ff9a9e", "#f6416c"),
	mustGradient("#f6d365", "#fda085"),
	mustGradient("#5ee7df", "#b490ca"),
}

func mustGradient(top, bottom string) gradient {
	t, err := colorful.Hex(top)
	if err != nil {
		panic(err)
	}

	b, err := colorful.Hex(bottom)
	if err != nil {
		panic(err)
	}

	return gradient{top: t, bottom: b}
}

// PaletteIndex maps an identity token to a palette slot.
func PaletteIndex(id string) int {
	h := uint32(0)
	for _, c := range id {
		h = h*31 + uint32(c)
	}

	return int(h % uint32(len(palette)))
}

// Glyph returns the character drawn on a placeholder: the first Han character of
// name, else its first letter upper-cased, else "?".
func Glyph(name string) string {
	for _, r := range name {
		if unicode.Is(unicode.Han, r) {
			return string(r)
		}
	}

	for _, r := range name {
		if unicode.IsLetter(r) {
			return string(unicode.ToUpper(r))
		}
	}

	return fallbackGlyph
}

// Placeholder renders a gradient avatar with the sponsor's initial and returns
// the URL the file will have once hosted.
type Placeholder struct {
	fonts       *FontChain
	logger      *logger.Logger
	files       map[string]string
	dir         string
	urlTemplate string
	size        int
	idLength    int
}

// NewPlaceholder creates a placeholder generator from the avatar settings.
func NewPlaceholder(cfg config.AvatarConfig, log *logger.Logger) *Placeholder {
	fonts := cfg.Fonts
	if len(fonts) == 0 {
		fonts = DefaultFontPaths
	}

	idLength := cfg.FileIDLength
	if idLength < 1 {
		idLength = defaultIDBytes
	}

	return &Placeholder{
		fonts:       NewFontChain(fonts, log),
		logger:      log,
		files:       make(map[string]string),
		dir:         cfg.OutputDir,
		urlTemplate: cfg.HostedURLTemplate,
		size:        cfg.Size,
		idLength:    idLength,
	}
}

// Resolve renders and stores the avatar for agg.
func (p *Placeholder) Resolve(ctx context.Context, agg models.SponsorAggregate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	file := p.fileName(agg.ID)

	if err := p.save(file, p.Render(agg.ID, agg.Name)); err != nil {
		return "", err
	}

	return strings.ReplaceAll(p.urlTemplate, fileToken, file), nil
}

// Generated returns the number of files written so far.
func (p *Placeholder) Generated() int {
	return len(p.files)
}

// fileName derives a file name from id. Characters outside [0-9A-Za-z_-] become
// '_' and the result is truncated to the configured length. A name already taken
// by a different sponsor falls back to the full id, then to a numbered suffix.
func (p *Placeholder) fileName(id string) string {
	safe := unsafeFileChars.ReplaceAllString(id, "_")

	name := utils.NewStringHelper().TruncateRunes(safe, p.idLength) + fileExt
	if owner, taken := p.files[name]; taken && owner != id {
		p.logger.Warn("Avatar file name collision, using full id", "file", name, "id", id)
		name = safe + fileExt
	}

	for n := 2; ; n++ {
		if owner, taken := p.files[name]; !taken || owner == id {
			break
		}

		name = fmt.Sprintf("%s_%d%s", safe, n, fileExt)
	}

	p.files[name] = id

	return name
}

func (p *Placeholder) save(file string, img image.Image) error {
	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteAvatar, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrWriteAvatar, file, err)
	}

	if err := os.WriteFile(filepath.Join(p.dir, file), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteAvatar, err)
	}

	return nil
}

// Render draws the square placeholder image for a sponsor.
func (p *Placeholder) Render(id, name string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.size, p.size))
	fillGradient(img, palette[PaletteIndex(id)])

	glyph := Glyph(name)
	r := []rune(glyph)[0]

	face, scalable := p.fonts.Face(r, float64(p.size)*glyphScale)
	defer face.Close()

	if scalable {
		drawCentered(img, face, glyph)
	} else {
		drawScaled(img, face, glyph)
	}

	return img
}

func fillGradient(img *image.RGBA, g gradient) {
	b := img.Bounds()
	span := float64(max(b.Dy()-1, 1))

	for y := b.Min.Y; y < b.Max.Y; y++ {
		c := g.top.BlendRgb(g.bottom, float64(y-b.Min.Y)/span).Clamped()
		r, gr, bl := c.RGB255()
		row := color.RGBA{R: r, G: gr, B: bl, A: 255}

		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, row)
		}
	}
}

func drawCentered(img *image.RGBA, face font.Face, glyph string) {
	size := fixed.I(img.Bounds().Dx())

	d := &font.Drawer{Dst: img, Src: image.White, Face: face}
	bounds, advance := d.BoundString(glyph)
	height := bounds.Max.Y - bounds.Min.Y

	d.Dot = fixed.Point26_6{
		X: (size - advance) / 2,
		Y: (size-height)/2 - bounds.Min.Y,
	}
	d.DrawString(glyph)
}

// drawScaled renders glyph with a fixed-size bitmap face and enlarges it to the
// glyph area of img.
func drawScaled(img *image.RGBA, face font.Face, glyph string) {
	metrics := face.Metrics()
	w := max(font.MeasureString(face, glyph).Ceil(), 1)
	h := max(metrics.Height.Ceil(), 1)

	small := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  small,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{Y: metrics.Ascent},
	}
	d.DrawString(glyph)

	size := img.Bounds().Dx()
	target := int(float64(size) * glyphScale)
	scaledW := max(target*w/h, 1)

	x0 := (size - scaledW) / 2
	y0 := (size - target) / 2
	draw.NearestNeighbor.Scale(img, image.Rect(x0, y0, x0+scaledW, y0+target), small, small.Bounds(), draw.Over, nil)
}
