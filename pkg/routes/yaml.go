package routes

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a static route tree. Unknown fields are rejected.
func ParseYAML(data []byte) ([]Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var tree []Node
	if err := dec.Decode(&tree); err != nil {
		if errors.Is(err, io.EOF) {
			return []Node{}, nil
		}
		return nil, errors.Join(ErrParseTree, err)
	}
	return tree, nil
}

// LoadYAML reads and decodes a static route tree file.
func LoadYAML(path string) ([]Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrReadTree, err)
	}
	return ParseYAML(data)
}
