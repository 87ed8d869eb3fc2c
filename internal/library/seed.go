package library

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yml
var defaultSeed []byte

// ErrInvalidSeed is returned when seed data cannot be used.
var ErrInvalidSeed = errors.New("invalid seed data")

// Seed is the initial content of the store.
type Seed struct {
	Authors []*Author `yaml:"authors"`
	Books   []*Book   `yaml:"books"`
}

// DefaultSeed returns the built-in seed data.
func DefaultSeed() *Seed {
	seed, err := ParseSeed(bytes.NewReader(defaultSeed))
	if err != nil {
		panic(fmt.Sprintf("built-in seed: %v", err))
	}
	return seed
}

// LoadSeedFile reads seed data from a YAML file.
func LoadSeedFile(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	seed, err := ParseSeed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seed, nil
}

// ParseSeed decodes YAML seed data. Records without an ID are assigned one.
// An empty document yields an empty seed.
func ParseSeed(r io.Reader) (*Seed, error) {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}

	for i, a := range seed.Authors {
		if a == nil {
			return nil, fmt.Errorf("%w: author #%d is empty", ErrInvalidSeed, i+1)
		}
		if a.ID == "" {
			a.ID = NewID()
		}
	}
	for i, b := range seed.Books {
		if b == nil {
			return nil, fmt.Errorf("%w: book #%d is empty", ErrInvalidSeed, i+1)
		}
		if b.ID == "" {
			b.ID = NewID()
		}
	}

	return &seed, nil
}
