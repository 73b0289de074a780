// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package vanify

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"os"
	"strings"
	"sync"
)

// Separator ends every record block.
const Separator = "-----------------------------"

const (
	seedLabel   = "Seed phrase: "
	publicLabel = "Public key: "
	secretLabel = "Secret key: "
	arrayLabel  = "SECRET_KEY=\"["
	arrayClose  = "]\""
)

// Record is one persisted candidate.
type Record struct {
	SeedPhrase  string
	PublicKey   string
	SecretHex   string
	SecretArray string
}

// RecordFor builds the record for a candidate.
func RecordFor(c Candidate) Record {
	return Record{
		SeedPhrase:  c.Mnemonic.String(),
		PublicKey:   c.Address,
		SecretHex:   c.Keypair.SecretHex(),
		SecretArray: c.Keypair.SecretArray(),
	}
}

// Format renders the record block. Each block starts with an empty line and
// ends with the separator line, so consecutive blocks can be appended to the
// same file without any framing.
func (r Record) Format() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(seedLabel + r.SeedPhrase + "\n")
	b.WriteString(publicLabel + r.PublicKey + "\n")
	b.WriteString(secretLabel + r.SecretHex + "\n")
	b.WriteString(arrayLabel + r.SecretArray + arrayClose + "\n")
	b.WriteString(Separator + "\n")
	return b.String()
}

// RecordWriter persists match records.
type RecordWriter interface {
	WriteRecord(Record) error
}

// PersistError reports a record that could not be appended to Path.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("could not append record to %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// IsPersistError checks if err is or wraps a PersistError.
func IsPersistError(err error) bool {
	var perr *PersistError
	return errors.As(err, &perr)
}

// FileWriter appends records to a file. The file is opened in append mode for
// every record and synced before it is closed, so records written before a
// failure stay on disk. It never truncates the file.
type FileWriter struct {
	Path string
}

// NewFileWriter returns a writer appending to path.
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{Path: path}
}

// WriteRecord implements RecordWriter.
func (w *FileWriter) WriteRecord(r Record) error {
	// G304: the output path is chosen by the operator
	f, err := os.OpenFile(w.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec
	if err != nil {
		return &PersistError{Path: w.Path, Err: err}
	}
	if _, err := io.WriteString(f, r.Format()); err != nil {
		_ = f.Close()
		return &PersistError{Path: w.Path, Err: err}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return &PersistError{Path: w.Path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &PersistError{Path: w.Path, Err: err}
	}
	return nil
}

// LockedWriter serializes calls to an underlying writer shared by several
// search workers.
type LockedWriter struct {
	mu sync.Mutex
	w  RecordWriter
}

// NewLockedWriter wraps w.
func NewLockedWriter(w RecordWriter) *LockedWriter {
	return &LockedWriter{w: w}
}

// WriteRecord implements RecordWriter.
func (l *LockedWriter) WriteRecord(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.WriteRecord(r)
}

// field marks one labelled line of a record block.
type field uint8

const (
	fieldSeed field = 1 << iota
	fieldPublic
	fieldSecret
	fieldArray

	fieldAll = fieldSeed | fieldPublic | fieldSecret | fieldArray
)

// ParseRecords reads record blocks as written by Record.Format. Blank lines
// between blocks are ignored. A block missing a field or its separator is an
// error.
func ParseRecords(rd io.Reader) ([]Record, error) {
	var (
		records []Record
		cur     Record
		seen    field
		line    int
	)

	set := func(f field, label string) error {
		if seen&f != 0 {
			return fmt.Errorf("line %d: duplicate %q in record", line, strings.TrimSuffix(label, ": "))
		}
		seen |= f
		return nil
	}

	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		var err error
		switch {
		case text == "":
			continue
		case strings.HasPrefix(text, seedLabel):
			if seen != 0 {
				return nil, fmt.Errorf("line %d: seed phrase before separator of previous record", line)
			}
			err = set(fieldSeed, seedLabel)
			cur.SeedPhrase = strings.TrimPrefix(text, seedLabel)
		case strings.HasPrefix(text, publicLabel):
			err = set(fieldPublic, publicLabel)
			cur.PublicKey = strings.TrimPrefix(text, publicLabel)
		case strings.HasPrefix(text, secretLabel):
			err = set(fieldSecret, secretLabel)
			cur.SecretHex = strings.TrimPrefix(text, secretLabel)
		case strings.HasPrefix(text, arrayLabel) && strings.HasSuffix(text, arrayClose):
			err = set(fieldArray, "SECRET_KEY")
			cur.SecretArray = strings.TrimSuffix(strings.TrimPrefix(text, arrayLabel), arrayClose)
		case text == Separator:
			if seen != fieldAll {
				return nil, fmt.Errorf("line %d: incomplete record (%d of 4 fields)", line, bits.OnesCount8(uint8(seen)))
			}
			records = append(records, cur)
			cur = Record{}
			seen = 0
		default:
			return nil, fmt.Errorf("line %d: unexpected content %q", line, text)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read records: %w", err)
	}
	if seen != 0 {
		return nil, fmt.Errorf("line %d: record without separator", line)
	}
	return records, nil
}
