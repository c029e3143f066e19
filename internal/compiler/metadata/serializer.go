package metadata

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format names an output encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the encoding from a file extension, defaulting to JSON
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(strings.TrimSuffix(path, ".gz"))) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Serialize converts metadata to indented JSON. The output is
// deterministic for a given input.
func Serialize(metadata *Metadata) ([]byte, error) {
	if metadata == nil {
		return nil, fmt.Errorf("metadata cannot be nil")
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}

	return data, nil
}

// SerializeYAML converts metadata to YAML
func SerializeYAML(metadata *Metadata) ([]byte, error) {
	if metadata == nil {
		return nil, fmt.Errorf("metadata cannot be nil")
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(metadata); err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}

	return buf.Bytes(), nil
}

// Encode serializes metadata in the given format
func Encode(metadata *Metadata, format Format) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return Serialize(metadata)
	case FormatYAML:
		return SerializeYAML(metadata)
	}
	return nil, fmt.Errorf("unsupported metadata format %q", format)
}

// Deserialize parses JSON metadata
func Deserialize(data []byte) (*Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to deserialize metadata: %w", err)
	}
	return &meta, nil
}

// DeserializeYAML parses YAML metadata
func DeserializeYAML(data []byte) (*Metadata, error) {
	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to deserialize metadata: %w", err)
	}
	return &meta, nil
}

// Compress compresses data using gzip at the best compression level
func Compress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}

	if len(data) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer

	writer, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close() // Ignore close error when write failed
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress decompresses gzip-compressed data
func Decompress(data []byte) ([]byte, error) {
	if data == nil {
		return nil, fmt.Errorf("data cannot be nil")
	}

	if len(data) == 0 {
		return []byte{}, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer func() {
		_ = reader.Close() // Ignore close error - we already have the data
	}()

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}

	return decompressed, nil
}

// WriteToFile writes uncompressed metadata to a file, as YAML when the
// path ends in .yaml or .yml and as JSON otherwise
func WriteToFile(metadata *Metadata, outputPath string) error {
	if metadata == nil {
		return fmt.Errorf("metadata cannot be nil")
	}

	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	data, err := Encode(metadata, FormatForPath(outputPath))
	if err != nil {
		return err
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write metadata to %s: %w", outputPath, err)
	}

	return nil
}

// WriteCompressedToFile writes gzip-compressed metadata to a file
func WriteCompressedToFile(metadata *Metadata, outputPath string) error {
	if metadata == nil {
		return fmt.Errorf("metadata cannot be nil")
	}

	if outputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	data, err := Encode(metadata, FormatForPath(outputPath))
	if err != nil {
		return err
	}

	compressed, err := Compress(data)
	if err != nil {
		return fmt.Errorf("failed to compress metadata: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(outputPath, compressed, 0o644); err != nil {
		return fmt.Errorf("failed to write compressed metadata to %s: %w", outputPath, err)
	}

	return nil
}
