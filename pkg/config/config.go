package config

import (
	"os"
	"strconv"
	"strings"
)

const DefaultPageSize = 10

type Config struct {
	BooksFile  string
	MoviesFile string
	PageSize   int
	Verbose    bool
}

// Load reads the configuration from the environment, falling back to the
// defaults for anything unset or unusable.
func Load() *Config {
	cfg := &Config{
		BooksFile:  getEnv("COLLECTIONS_BOOKS_FILE", "books.csv"),
		MoviesFile: getEnv("COLLECTIONS_MOVIES_FILE", "movies.csv"),
		PageSize:   DefaultPageSize,
	}

	if n, err := strconv.Atoi(getEnv("COLLECTIONS_PAGE_SIZE", "")); err == nil && n > 0 {
		cfg.PageSize = n
	}

	switch strings.ToLower(getEnv("COLLECTIONS_VERBOSE", "")) {
	case "1", "true", "yes":
		cfg.Verbose = true
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
