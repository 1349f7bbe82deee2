package asm

import (
	"encoding/json"
	"io"
	"sort"
)

// Symbol is one resolved label.
type Symbol struct {
	Name    string `json:"name"`
	Address uint16 `json:"address"`
}

// WriteSymbols writes a label table as JSON, sorted by address.
func WriteSymbols(w io.Writer, labels map[string]uint16) error {
	symbols := make([]Symbol, 0, len(labels))
	for name, addr := range labels {
		symbols = append(symbols, Symbol{Name: name, Address: addr})
	}
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].Address != symbols[j].Address {
			return symbols[i].Address < symbols[j].Address
		}
		return symbols[i].Name < symbols[j].Name
	})

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(symbols)
}

// ReadSymbols reads a label table previously written by WriteSymbols.
func ReadSymbols(r io.Reader) (map[string]uint16, error) {
	var symbols []Symbol
	if err := json.NewDecoder(r).Decode(&symbols); err != nil {
		return nil, err
	}
	labels := make(map[string]uint16, len(symbols))
	for _, s := range symbols {
		labels[s.Name] = s.Address
	}
	return labels, nil
}
