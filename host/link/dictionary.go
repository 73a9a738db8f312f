package link

import (
	"fmt"
	"strings"
)

// Dictionary is the message list a device reports through identify.
type Dictionary struct {
	Version  string
	Messages map[string]uint16 // name to message ID
	Formats  map[string]string // name to argument format
}

// ParseDictionary parses the identify text: a "version" line followed by
// one "name format" line per message in ID order.
func ParseDictionary(data []byte) (*Dictionary, error) {
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "version ") {
		return nil, fmt.Errorf("dictionary has no version line")
	}

	dict := &Dictionary{
		Version:  strings.TrimPrefix(lines[0], "version "),
		Messages: make(map[string]uint16),
		Formats:  make(map[string]string),
	}
	for i, line := range lines[1:] {
		name, format, _ := strings.Cut(line, " ")
		if name == "" {
			return nil, fmt.Errorf("dictionary line %d is empty", i+2)
		}
		if _, dup := dict.Messages[name]; dup {
			return nil, fmt.Errorf("dictionary lists %s twice", name)
		}
		dict.Messages[name] = uint16(i)
		dict.Formats[name] = format
	}
	return dict, nil
}

// Check verifies that every name in want has the given ID.
func (d *Dictionary) Check(want map[string]uint16) error {
	for name, id := range want {
		got, ok := d.Messages[name]
		if !ok {
			return fmt.Errorf("device does not know %s", name)
		}
		if got != id {
			return fmt.Errorf("device has %s as message %d, expected %d", name, got, id)
		}
	}
	return nil
}
