package people

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/pelletier/go-toml/v2"

	"peoplesearch/internal/domain"
)

// ErrEmptyName is returned for an entry with neither a first nor a last name
var ErrEmptyName = errors.New("person has no name")

// file is the on-disk layout:
//
//	[[people]]
//	first_name = "Mark"
//	last_name = "Ndaru"
type file struct {
	People []domain.Person `toml:"people"`
}

// LoadFile reads a people file. Entries keep their file order.
func LoadFile(path string) ([]domain.Person, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read people file: %w", err)
	}
	return Parse(data)
}

// Parse decodes people from TOML
func Parse(data []byte) ([]domain.Person, error) {
	var f file
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse people file: %w", err)
	}

	result := make([]domain.Person, 0, len(f.People))
	for i, p := range f.People {
		p.FirstName = strings.TrimSpace(p.FirstName)
		p.LastName = strings.TrimSpace(p.LastName)
		if p.FirstName == "" && p.LastName == "" {
			return nil, fmt.Errorf("entry %d: %w", i+1, ErrEmptyName)
		}
		result = append(result, p)
	}
	return result, nil
}

// Encode renders people in the file layout
func Encode(people []domain.Person) ([]byte, error) {
	data, err := toml.Marshal(file{People: people})
	if err != nil {
		return nil, fmt.Errorf("failed to encode people: %w", err)
	}
	return data, nil
}

// WriteFile saves people to path in the file layout, replacing it atomically
func WriteFile(path string, people []domain.Person) error {
	data, err := Encode(people)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create people file directory: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write people file: %w", err)
	}
	return nil
}
