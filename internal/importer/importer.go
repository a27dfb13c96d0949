// Package importer parses dictionary archives and writes their
// records into the store.
//
// An archive is a zip file containing an index.json with dictionary
// metadata and one or more term_bank_*.json files, each holding an
// array of term rows:
//
//	[expression, reading, definitionTags, rules, score, glossary, sequence, termTags]
//
// Malformed rows are collected as structural errors and do not stop
// the import; malformed archives (bad zip, bad index, duplicate
// title) fail the file as a whole.
package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"

	"github.com/mrlokans/jisho/internal/entities"
)

// ErrInvalidArchive marks archives that cannot be imported at all.
var ErrInvalidArchive = errors.New("invalid dictionary archive")

// Details is the shared configuration for every file of one import
// batch. The capability flag mirrors what the target store supports.
type Details struct {
	PrefixWildcardsSupported bool
	BatchSize                int
}

// ProgressFunc reports fractional progress. Called repeatedly during
// one file's import: (total, 0), (total, 1), ... (total, total).
// Invocations are synchronous; observers must tolerate any frequency.
type ProgressFunc func(total, current int)

// Result is the outcome of importing one archive. Errors holds
// per-row structural failures; the import is still a partial success
// when it is non-empty.
type Result struct {
	Sequenced bool
	Title     string
	TermCount int
	Errors    []error
}

// StoreHandle is the subset of the exclusive store handle the
// importer writes through.
type StoreHandle interface {
	PutDictionary(ctx context.Context, dictionary *entities.Dictionary) error
	PutTerms(ctx context.Context, terms []entities.Term) error
	SetDictionaryTermCount(ctx context.Context, title string, count int) error
}

type index struct {
	Title     string `json:"title"`
	Revision  string `json:"revision"`
	Format    int    `json:"format"`
	Version   int    `json:"version"` // legacy alias for format
	Sequenced bool   `json:"sequenced"`
}

var termBankPattern = regexp.MustCompile(`^term_bank_(\d+)\.json$`)

// Importer parses dictionary archives.
type Importer struct{}

func NewImporter() *Importer {
	return &Importer{}
}

// ImportDictionary imports one archive through the given store
// handle. The handle stays open; closing it is the caller's concern.
func (imp *Importer) ImportDictionary(ctx context.Context, handle StoreHandle, content []byte, details Details, onProgress ProgressFunc) (*Result, error) {
	if onProgress == nil {
		onProgress = func(total, current int) {}
	}

	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	idx, err := readIndex(archive)
	if err != nil {
		return nil, err
	}

	banks, err := termBanks(archive)
	if err != nil {
		return nil, err
	}

	total := len(banks)
	onProgress(total, 0)

	err = handle.PutDictionary(ctx, &entities.Dictionary{
		Title:     idx.Title,
		Revision:  idx.Revision,
		Format:    idx.format(),
		Sequenced: idx.Sequenced,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Sequenced: idx.Sequenced, Title: idx.Title}
	termCount := 0

	for i, bank := range banks {
		terms, structural, err := parseTermBank(bank, idx.Title, details)
		if err != nil {
			return nil, err
		}
		result.Errors = append(result.Errors, structural...)

		if err := handle.PutTerms(ctx, terms); err != nil {
			return nil, fmt.Errorf("failed to store terms from %s: %w", bank.Name, err)
		}
		termCount += len(terms)

		onProgress(total, i+1)
	}

	// Best-effort cached count; the import stands even if this fails.
	_ = handle.SetDictionaryTermCount(ctx, idx.Title, termCount)

	result.TermCount = termCount
	return result, nil
}

func (i *index) format() int {
	if i.Format != 0 {
		return i.Format
	}
	return i.Version
}

func readIndex(archive *zip.Reader) (*index, error) {
	file, err := archive.Open("index.json")
	if err != nil {
		return nil, fmt.Errorf("%w: missing index.json", ErrInvalidArchive)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable index.json: %v", ErrInvalidArchive, err)
	}

	var idx index
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("%w: malformed index.json: %v", ErrInvalidArchive, err)
	}
	if idx.Title == "" {
		return nil, fmt.Errorf("%w: index.json has no title", ErrInvalidArchive)
	}
	switch idx.format() {
	case 1, 3:
	default:
		return nil, fmt.Errorf("%w: unsupported format %d", ErrInvalidArchive, idx.format())
	}
	return &idx, nil
}

// termBanks lists term bank entries in natural numeric order.
func termBanks(archive *zip.Reader) ([]*zip.File, error) {
	type numbered struct {
		n    int
		file *zip.File
	}
	var banks []numbered
	for _, file := range archive.File {
		match := termBankPattern.FindStringSubmatch(file.Name)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("%w: bad term bank name %q", ErrInvalidArchive, file.Name)
		}
		banks = append(banks, numbered{n: n, file: file})
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i].n < banks[j].n })

	files := make([]*zip.File, len(banks))
	for i, bank := range banks {
		files[i] = bank.file
	}
	return files, nil
}

func parseTermBank(bank *zip.File, dictionaryTitle string, details Details) ([]entities.Term, []error, error) {
	reader, err := bank.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unreadable %s: %v", ErrInvalidArchive, bank.Name, err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unreadable %s: %v", ErrInvalidArchive, bank.Name, err)
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, nil, fmt.Errorf("%w: malformed %s: %v", ErrInvalidArchive, bank.Name, err)
	}

	var terms []entities.Term
	var structural []error
	for i, row := range rows {
		term, err := parseTermRow(row, dictionaryTitle, details)
		if err != nil {
			structural = append(structural, fmt.Errorf("%s: row %d: %w", bank.Name, i, err))
			continue
		}
		terms = append(terms, term)
	}
	return terms, structural, nil
}

func parseTermRow(row json.RawMessage, dictionaryTitle string, details Details) (entities.Term, error) {
	var tuple []json.RawMessage
	if err := json.Unmarshal(row, &tuple); err != nil {
		return entities.Term{}, fmt.Errorf("entry is not an array")
	}
	if len(tuple) < 8 {
		return entities.Term{}, fmt.Errorf("entry has %d fields, expected 8", len(tuple))
	}

	term := entities.Term{DictionaryTitle: dictionaryTitle}
	var err error

	if term.Expression, err = stringField(tuple[0], "expression"); err != nil {
		return entities.Term{}, err
	}
	if term.Expression == "" {
		return entities.Term{}, fmt.Errorf("expression is empty")
	}
	if term.Reading, err = stringField(tuple[1], "reading"); err != nil {
		return entities.Term{}, err
	}
	if term.DefinitionTags, err = nullableStringField(tuple[2], "definitionTags"); err != nil {
		return entities.Term{}, err
	}
	if term.Rules, err = stringField(tuple[3], "rules"); err != nil {
		return entities.Term{}, err
	}

	var score float64
	if err := json.Unmarshal(tuple[4], &score); err != nil {
		return entities.Term{}, fmt.Errorf("score is not a number")
	}
	term.Score = int(score)

	var glossary []any
	if err := json.Unmarshal(tuple[5], &glossary); err != nil {
		return entities.Term{}, fmt.Errorf("glossary is not an array")
	}
	glossaryJSON, err := json.Marshal(glossary)
	if err != nil {
		return entities.Term{}, fmt.Errorf("glossary is not serializable")
	}
	term.Glossary = string(glossaryJSON)

	var sequence float64
	if err := json.Unmarshal(tuple[6], &sequence); err != nil {
		return entities.Term{}, fmt.Errorf("sequence is not a number")
	}
	term.Sequence = int64(sequence)

	if term.TermTags, err = stringField(tuple[7], "termTags"); err != nil {
		return entities.Term{}, err
	}

	if details.PrefixWildcardsSupported {
		term.ExpressionReverse = reverseString(term.Expression)
		term.ReadingReverse = reverseString(term.Reading)
	}

	return term, nil
}

func stringField(raw json.RawMessage, name string) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s is not a string", name)
	}
	return s, nil
}

func nullableStringField(raw json.RawMessage, name string) (string, error) {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%s is not a string", name)
	}
	if s == nil {
		return "", nil
	}
	return *s, nil
}

func reverseString(s string) string {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return string(runes)
}
