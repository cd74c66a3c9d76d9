// Package converters provides implementations of the Converter interface
// for various document formats. Each converter knows how to extract text
// content from a specific set of file extensions.
//
// Converters are registered with the Registry at startup.
package converters
