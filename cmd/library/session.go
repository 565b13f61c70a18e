package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"collection_manager/pkg/catalog"
	"collection_manager/pkg/models"

	"go.uber.org/zap"
)

const (
	msgUnknownCommand = "Unknown command.  Please try again."
	msgIDNotFound     = "Error, ID not found, please retry."
	msgUnavailable    = "Sorry, that item is not available at the moment."
	msgMorePrompt     = "Press enter to show more items, or type 'm' to return to the menu: "
	msgConfirmAdd     = "Press enter to add this item to the collection. Enter 'x' to cancel. "
)

type command struct {
	code        string
	description string
	run         func(s *session) error
}

var commands = []command{
	{"ci", "Check in an item", (*session).checkIn},
	{"co", "Check out an item", (*session).checkOut},
	{"ab", "Add a new book", func(s *session) error { return s.add(models.KindBooks) }},
	{"am", "Add a new movie", func(s *session) error { return s.add(models.KindMovies) }},
	{"db", "Display books", func(s *session) error { return s.display(models.KindBooks) }},
	{"dm", "Display movies", func(s *session) error { return s.display(models.KindMovies) }},
	{"qb", "Query for books", func(s *session) error { return s.query(models.KindBooks) }},
	{"qm", "Query for movies", func(s *session) error { return s.query(models.KindMovies) }},
}

const exitCommand = "x"

// addPrompt is one question asked when adding an item.
type addPrompt struct {
	field string
	label string
}

var addPrompts = map[models.Kind][]addPrompt{
	models.KindBooks: {
		{"Title", "title"},
		{"Author", "author"},
		{"Publisher", "publisher"},
		{"Pages", "number of pages"},
		{"Year", "publication year"},
		{models.FieldCopies, "number of copies"},
		{models.FieldAvailable, "number of available copies"},
	},
	models.KindMovies: {
		{"Title", "title"},
		{"Director", "director"},
		{"Length", "length"},
		{"Genre", "genre"},
		{"Year", "release year"},
		{models.FieldCopies, "number of copies"},
		{models.FieldAvailable, "number of available copies"},
	},
}

var addColumns = map[models.Kind][]string{
	models.KindBooks:  models.BookColumns,
	models.KindMovies: models.MovieColumns,
}

var nouns = map[models.Kind]string{
	models.KindBooks:  "book",
	models.KindMovies: "movie",
}

type session struct {
	catalog  *catalog.Catalog
	in       *bufio.Reader
	out      io.Writer
	pageSize int
	log      *zap.Logger
}

func newSession(c *catalog.Catalog, in io.Reader, out io.Writer, pageSize int, log *zap.Logger) *session {
	return &session{
		catalog:  c,
		in:       bufio.NewReader(in),
		out:      out,
		pageSize: pageSize,
		log:      log,
	}
}

// run shows the menu and dispatches commands until the user exits or input
// runs out.
func (s *session) run() error {
	for {
		s.printMenu()
		line, err := s.prompt("Please enter a command to proceed: ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		code := strings.TrimSpace(line)
		if code == exitCommand {
			return nil
		}

		cmd, ok := lookupCommand(code)
		if !ok {
			s.log.Debug("Unknown command", zap.String("input", code))
			fmt.Fprintln(s.out, msgUnknownCommand)
			continue
		}

		s.log.Debug("Running command", zap.String("command", code))
		if err := cmd.run(s); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.log.Error("Command failed", zap.String("command", code), zap.Error(err))
			return err
		}
	}
}

func lookupCommand(code string) (command, bool) {
	for _, c := range commands {
		if c.code == code {
			return c, true
		}
	}
	return command{}, false
}

func (s *session) printMenu() {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, "********** Welcome to the Collection Manager. **********")
	fmt.Fprintln(s.out, "COMMAND    FUNCTION")
	for _, c := range commands {
		fmt.Fprintf(s.out, "  %-10s %s\n", c.code, c.description)
	}
	fmt.Fprintf(s.out, "  %-10s %s\n", exitCommand, "Exit")
}

// prompt writes msg and reads one line of any length, returning io.EOF once
// input is exhausted. A final line without a newline is still returned.
func (s *session) prompt(msg string) (string, error) {
	fmt.Fprint(s.out, msg)
	line, err := s.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		fmt.Fprintln(s.out)
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptID reads an item ID. ok is false when the input is not a number.
func (s *session) promptID(msg string) (id int, ok bool, err error) {
	line, err := s.prompt(msg)
	if err != nil {
		return 0, false, err
	}
	id, convErr := strconv.Atoi(strings.TrimSpace(line))
	if convErr != nil {
		fmt.Fprintln(s.out, msgIDNotFound)
		return 0, false, nil
	}
	return id, true, nil
}

func (s *session) checkIn() error {
	id, ok, err := s.promptID("Enter the ID for the item you wish to check in: ")
	if err != nil || !ok {
		return err
	}

	item, err := s.catalog.CheckIn(id)
	if errors.Is(err, catalog.ErrNotFound) {
		fmt.Fprintln(s.out, msgIDNotFound)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(s.out, "Your check in has succeeded.")
	fmt.Fprintln(s.out, item)
	return nil
}

func (s *session) checkOut() error {
	id, ok, err := s.promptID("Enter the ID for the item you wish to check out: ")
	if err != nil || !ok {
		return err
	}

	item, err := s.catalog.CheckOut(id)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		fmt.Fprintln(s.out, msgIDNotFound)
		return nil
	case errors.Is(err, catalog.ErrUnavailable):
		fmt.Fprintln(s.out, msgUnavailable)
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintln(s.out, "Your check out has succeeded.")
	fmt.Fprintln(s.out, item)
	return nil
}

func (s *session) add(kind models.Kind) error {
	noun := nouns[kind]
	item := models.Item{
		Kind:    kind,
		Fields:  make(map[string]string),
		Columns: addColumns[kind],
	}

	for _, p := range addPrompts[kind] {
		line, err := s.prompt(fmt.Sprintf("Enter the %s of the new %s: ", p.label, noun))
		if err != nil {
			return err
		}
		if !utf8.ValidString(line) {
			fmt.Fprintf(s.out, "The %s contains invalid characters. The %s was not added.\n", p.label, noun)
			return nil
		}
		if !models.IsIntegerField(p.field) {
			item.Fields[p.field] = line
			continue
		}
		n, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr != nil {
			fmt.Fprintf(s.out, "The %s must be a whole number. The %s was not added.\n", p.label, noun)
			return nil
		}
		switch p.field {
		case models.FieldCopies:
			item.Copies = n
		case models.FieldAvailable:
			item.Available = n
		}
	}

	preview := item
	preview.ID = s.catalog.NextID()
	fmt.Fprintln(s.out, "You have entered the following data: ")
	fmt.Fprintln(s.out, preview)

	answer, err := s.prompt(msgConfirmAdd)
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) == "x" {
		fmt.Fprintf(s.out, "The %s was not added.\n", noun)
		return nil
	}

	added, err := s.catalog.Add(item)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "The %s has been added with ID %d.\n", noun, added.ID)
	return nil
}

func (s *session) display(kind models.Kind) error {
	total, err := s.catalog.Count(kind)
	if err != nil {
		return err
	}
	if total == 0 {
		fmt.Fprintf(s.out, "There are no %s in the collection.\n", kind)
		return nil
	}

	for page := 0; ; page++ {
		items, err := s.catalog.Page(kind, page, s.pageSize)
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Fprintln(s.out, item)
		}
		if int64((page+1)*s.pageSize) >= total {
			return nil
		}

		answer, err := s.prompt(msgMorePrompt)
		if err != nil {
			return err
		}
		if strings.TrimSpace(answer) == "m" {
			return nil
		}
	}
}

func (s *session) query(kind models.Kind) error {
	q, err := s.prompt("Enter a query string to use for the search: ")
	if err != nil {
		return err
	}

	results, err := s.catalog.Query(kind, q)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintf(s.out, "Matches on %s (%d):\n", r.Field, len(r.Items))
		for _, item := range r.Items {
			fmt.Fprintf(s.out, "  %s\n", item)
		}
	}
	return nil
}
