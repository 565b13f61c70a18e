package models

import (
	"strconv"
	"strings"
)

type Kind string

const (
	KindBooks  Kind = "books"
	KindMovies Kind = "movies"
)

// Integer-valued columns. Everything else in a collection file is kept as text.
const (
	FieldID        = "ID"
	FieldCopies    = "Copies"
	FieldAvailable = "Available"
)

// BookColumns is the column order used for books added at runtime.
var BookColumns = []string{"Title", "Author", "Publisher", "Pages", "Year", FieldCopies, FieldAvailable, FieldID}

// MovieColumns is the column order used for movies added at runtime.
var MovieColumns = []string{"Title", "Director", "Length", "Genre", "Year", FieldCopies, FieldAvailable, FieldID}

// SearchFields lists the text fields a query is matched against, per kind.
var SearchFields = map[Kind][]string{
	KindBooks:  {"Title", "Author", "Publisher"},
	KindMovies: {"Title", "Director", "Genre"},
}

func IsIntegerField(name string) bool {
	return name == FieldID || name == FieldCopies || name == FieldAvailable
}

type Item struct {
	ID        int               `gorm:"primaryKey;autoIncrement:false"`
	Kind      Kind              `gorm:"size:10;not null"`
	Copies    int               `gorm:"not null"`
	Available int               `gorm:"not null"`
	Fields    map[string]string `gorm:"type:text;serializer:json"`
	Columns   []string          `gorm:"type:text;serializer:json"`
}

// Value returns a field by name, integer fields rendered in base 10.
func (i Item) Value(name string) (string, bool) {
	switch name {
	case FieldID:
		return strconv.Itoa(i.ID), true
	case FieldCopies:
		return strconv.Itoa(i.Copies), true
	case FieldAvailable:
		return strconv.Itoa(i.Available), true
	}
	v, ok := i.Fields[name]
	return v, ok
}

func (i Item) Title() string {
	return i.Fields["Title"]
}

func (i Item) String() string {
	parts := make([]string, 0, len(i.Columns))
	for _, col := range i.Columns {
		v, _ := i.Value(col)
		parts = append(parts, col+": "+v)
	}
	return strings.Join(parts, " | ")
}
