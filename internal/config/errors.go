package config

import "errors"

var (
	// ErrMissingKey is returned when a required INI key is absent.
	ErrMissingKey = errors.New("config: missing required key")
	// ErrInvalidValue is returned when a key is present but fails to parse
	// as its expected type (int, bool).
	ErrInvalidValue = errors.New("config: invalid value")
	// ErrOpenFile is returned when the INI file cannot be read.
	ErrOpenFile = errors.New("config: cannot open file")
	// ErrInvalidLinkExtractor is returned when crawler.link_extractor names
	// an unrecognized strategy.
	ErrInvalidLinkExtractor = errors.New("config: invalid crawler.link_extractor")
)
