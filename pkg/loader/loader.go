// Package loader reads the comma-separated collection files. The format has a
// header line of field names followed by one record per line; values are split
// on every comma, there is no quoting.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"collection_manager/pkg/models"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrMalformed    = errors.New("malformed collection data")
)

// FileError ties a load failure to the collection file it came from.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

type Collections struct {
	Books  []models.Item
	Movies []models.Item
	// MaxID is the highest ID across both collections, -1 when both are empty.
	MaxID int
}

// LoadCollections loads books and movies together. A failure in either file
// fails the whole load.
func LoadCollections(booksPath, moviesPath string) (*Collections, error) {
	books, maxBookID, err := LoadCollection(booksPath, models.KindBooks)
	if err != nil {
		return nil, err
	}
	movies, maxMovieID, err := LoadCollection(moviesPath, models.KindMovies)
	if err != nil {
		return nil, err
	}
	return &Collections{
		Books:  books,
		Movies: movies,
		MaxID:  max(maxBookID, maxMovieID),
	}, nil
}

func LoadCollection(path string, kind models.Kind) ([]models.Item, int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, -1, &FileError{Path: path, Err: ErrFileNotFound}
		}
		return nil, -1, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	items, maxID, err := Parse(f, kind)
	if err != nil {
		return nil, -1, &FileError{Path: path, Err: err}
	}
	return items, maxID, nil
}

const maxLineSize = 16 << 20

// Parse reads one collection from r, in file order. When an ID repeats, the
// later record replaces the earlier one in place.
func Parse(r io.Reader, kind models.Kind) ([]models.Item, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, -1, err
		}
		return nil, -1, fmt.Errorf("%w: missing header line", ErrMalformed)
	}
	header := strings.TrimRight(scanner.Text(), " \t\r\n")
	if !utf8.ValidString(header) {
		return nil, -1, fmt.Errorf("line 1: %w: header is not valid UTF-8", ErrMalformed)
	}
	columns := strings.Split(header, ",")

	var items []models.Item
	maxID := -1
	index := make(map[int]int)
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), " \t\r\n")
		if line == "" {
			continue
		}
		item, err := parseRecord(columns, strings.Split(line, ","), kind)
		if err != nil {
			return nil, -1, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if i, ok := index[item.ID]; ok {
			items[i] = item
			continue
		}
		index[item.ID] = len(items)
		items = append(items, item)
		maxID = max(maxID, item.ID)
	}
	if err := scanner.Err(); err != nil {
		return nil, -1, err
	}
	return items, maxID, nil
}

func parseRecord(columns, values []string, kind models.Kind) (models.Item, error) {
	if len(values) > len(columns) {
		return models.Item{}, fmt.Errorf("%w: %d values for %d fields", ErrMalformed, len(values), len(columns))
	}

	item := models.Item{
		Kind:    kind,
		Fields:  make(map[string]string),
		Columns: columns[:len(values)],
	}
	hasID := false
	for i, v := range values {
		name := columns[i]
		if !utf8.ValidString(v) {
			return models.Item{}, fmt.Errorf("%w: field %s is not valid UTF-8", ErrMalformed, name)
		}
		if !models.IsIntegerField(name) {
			item.Fields[name] = v
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return models.Item{}, fmt.Errorf("%w: field %s: %q is not an integer", ErrMalformed, name, v)
		}
		switch name {
		case models.FieldID:
			item.ID = n
			hasID = true
		case models.FieldCopies:
			item.Copies = n
		case models.FieldAvailable:
			item.Available = n
		}
	}
	if !hasID {
		return models.Item{}, fmt.Errorf("%w: record has no %s", ErrMalformed, models.FieldID)
	}
	return item, nil
}
