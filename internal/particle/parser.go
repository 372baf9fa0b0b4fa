package particle

import (
	"encoding/xml"
	"fmt"
	"os"
)

// ParseLibraryXML parses an exported particle library document.
//
// Returns:
//   - *Library: the decoded library with one entry per <Particles> element
//   - error: malformed XML or a document without a library name
func ParseLibraryXML(data []byte) (*Library, error) {
	var lib Library
	if err := xml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse particle library XML: %w", err)
	}
	if lib.Name == "" {
		return nil, fmt.Errorf("particle library has no Name attribute")
	}
	return &lib, nil
}

// ParseLibraryFile reads and parses a library file from disk.
//
// Example usage:
//
//	lib, err := ParseLibraryFile("out/Fire.xml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Loaded %d effects\n", len(lib.Effects))
func ParseLibraryFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read particle library %s: %w", path, err)
	}
	lib, err := ParseLibraryXML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}
