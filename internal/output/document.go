// Package output builds and writes the sponsors document.
package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"ralsponsors/internal/models"
	"ralsponsors/internal/tier"
)

// Output errors.
var (
	ErrWriteDocument = errors.New("failed to write sponsors document")
	ErrReadDocument  = errors.New("failed to read sponsors document")
)

// TimestampLayout is the UTC format of lastUpdated.
const TimestampLayout = "2006-01-02T15:04:05Z"

const backupSuffix = ".bak"

// Meta carries the document header fields.
type Meta struct {
	Name        string
	Description string
}

// WriteOptions controls serialization.
type WriteOptions struct {
	Pretty bool
	Backup bool
}

// Build assembles the document. Sponsors are ordered by tier rank, then by amount,
// both descending; equal entries keep their input order.
func Build(records []models.SponsorRecord, tiers []models.Tier, meta Meta, now time.Time) *models.Document {
	sponsors := make([]models.SponsorRecord, len(records))
	copy(sponsors, records)

	sort.SliceStable(sponsors, func(i, j int) bool {
		oi, oj := tier.Order(sponsors[i].Tier), tier.Order(sponsors[j].Tier)
		if oi != oj {
			return oi > oj
		}

		return sponsors[i].Amount > sponsors[j].Amount
	})

	catalog := make([]models.Tier, len(tiers))
	copy(catalog, tiers)

	return &models.Document{
		Version:     models.DocumentVersion,
		Name:        meta.Name,
		Description: meta.Description,
		LastUpdated: now.UTC().Format(TimestampLayout),
		Tiers:       catalog,
		Sponsors:    sponsors,
	}
}

// Encode renders doc as JSON without HTML escaping.
func Encode(doc *models.Document, pretty bool) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if pretty {
		enc.SetIndent("", "    ")
	}

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}

	return buf.Bytes(), nil
}

// Write stores doc at path, creating parent directories. With Backup set an
// existing file is first copied to path.bak.
func Write(doc *models.Document, path string, opts WriteOptions) error {
	data, err := Encode(doc, opts.Pretty)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteDocument, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteDocument, err)
		}
	}

	if opts.Backup {
		if err := backup(path); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteDocument, err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteDocument, err)
	}

	return nil
}

func backup(path string) error {
	old, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("read existing document: %w", err)
	}

	if err := os.WriteFile(path+backupSuffix, old, 0644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	return nil
}

// Load reads a document written by Write.
func Load(path string) (*models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadDocument, err)
	}

	var doc models.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadDocument, err)
	}

	return &doc, nil
}
