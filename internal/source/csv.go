package source

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"ralsponsors/internal/config"
	"ralsponsors/internal/logger"
	"ralsponsors/internal/models"
)

// ErrNoIdentity marks a row whose URL field carries no afdian user id.
var ErrNoIdentity = errors.New("no afdian user id in url field")

var userIDPattern = regexp.MustCompile(`/u/([a-f0-9]+)`)

// RowSkip records a row that did not produce a contribution.
type RowSkip struct {
	Reason error
	Line   int
}

// CSVResult is the outcome of reading one export file.
type CSVResult struct {
	Encoding      string
	Contributions []models.RawContribution
	Skipped       []RowSkip
	Lines         int
	Lossy         bool
}

// CSVReader parses afdian transaction exports.
type CSVReader struct {
	logger    *logger.Logger
	encodings []string
	columns   config.ColumnsConfig
}

// NewCSVReader creates a reader for the configured column layout.
func NewCSVReader(cfg config.CSVConfig, log *logger.Logger) *CSVReader {
	return &CSVReader{
		logger:    log,
		encodings: cfg.Encodings,
		columns:   cfg.Columns,
	}
}

// ReadFile decodes and parses the export at path.
func (r *CSVReader) ReadFile(path string) (*CSVResult, error) {
	decoded, err := ReadFileDecoded(path, r.encodings)
	if err != nil {
		return nil, err
	}

	if decoded.Lossy {
		r.logger.Warn("No encoding decoded cleanly, using lossy fallback", "encoding", decoded.Encoding)
	}

	r.logger.Info("Decoded CSV", "path", path, "encoding", decoded.Encoding)

	result := r.Parse(decoded.Text)
	result.Encoding = decoded.Encoding
	result.Lossy = decoded.Lossy

	return result, nil
}

// Parse splits content into rows, skips the header, and parses every non-empty row.
// Rows that fail are recorded in Skipped and never stop the parse.
func (r *CSVReader) Parse(content string) *CSVResult {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	result := &CSVResult{Lines: len(lines)}

	r.logger.Info("Parsing CSV rows", "lines", len(lines))

	for i, line := range lines[1:] {
		lineNum := i + 2

		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		rec, err := ParseRow(SplitLine(line), r.columns, lineNum)
		if err != nil {
			result.Skipped = append(result.Skipped, RowSkip{Line: lineNum, Reason: err})

			if errors.Is(err, ErrNoIdentity) {
				r.logger.Debug("Row has no user id", "line", lineNum)
			} else {
				r.logger.Warn("Failed to parse row", "line", lineNum, "error", err)
			}

			continue
		}

		result.Contributions = append(result.Contributions, rec)
	}

	return result
}

// ParseRow builds a contribution from the split fields of one row.
func ParseRow(fields []string, cols config.ColumnsConfig, line int) (models.RawContribution, error) {
	url := fieldAt(fields, cols.URL)

	id := ExtractUserID(url)
	if id == "" {
		return models.RawContribution{}, ErrNoIdentity
	}

	amount, err := ParseAmount(fieldAt(fields, cols.Amount))
	if err != nil {
		return models.RawContribution{}, fmt.Errorf("line %d: %w", line, err)
	}

	return models.RawContribution{
		ID:        id,
		Name:      fieldAt(fields, cols.Username),
		Note:      fieldAt(fields, cols.Bio),
		Plan:      fieldAt(fields, cols.TierName),
		Timestamp: fieldAt(fields, cols.Date),
		SourceURL: url,
		Amount:    amount,
		Line:      line,
	}, nil
}

// ExtractUserID returns the hex user id embedded in an afdian profile URL, or "".
func ExtractUserID(url string) string {
	m := userIDPattern.FindStringSubmatch(url)
	if len(m) < 2 {
		return ""
	}

	return m[1]
}
