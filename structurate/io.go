// SPDX-License-Identifier: MIT

package structurate

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultIndent   = 2
	defaultFileMode = 0o644
	defaultDirMode  = 0o750
)

// ReadResult is the outcome of reading a config file.
type ReadResult struct {
	Node   *Node
	Header []string // leading comment lines, trimmed
	Digest string   // hex SHA-256 of the file bytes; empty when the file is missing
}

// FileIO reads and writes YAML config files with a preserved comment header.
type FileIO struct {
	indent int
	perm   fs.FileMode
}

// NewFileIO returns a FileIO writing block-style YAML indented by two spaces.
func NewFileIO() *FileIO {
	return &FileIO{indent: defaultIndent, perm: defaultFileMode}
}

// ReadWithHeader loads path. A missing file yields an empty node.
func (f *FileIO) ReadWithHeader(path string) (ReadResult, error) {
	// #nosec G304 -- config paths are chosen by the caller
	data, err := os.ReadFile(filepath.Clean(path))
	if errors.Is(err, fs.ErrNotExist) {
		return ReadResult{Node: NewNode()}, nil
	}
	if err != nil {
		return ReadResult{}, fmt.Errorf("read file: %w", err)
	}
	res, err := f.Decode(data)
	if err != nil {
		return ReadResult{}, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Decode splits data into its comment header and YAML body.
func (f *FileIO) Decode(data []byte) (ReadResult, error) {
	header, body := splitHeader(data)
	res := ReadResult{Node: NewNode(), Header: header, Digest: digest(data)}

	dec := yaml.NewDecoder(bytes.NewReader(body))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		return ReadResult{}, fmt.Errorf("parse YAML: %w", err)
	}
	if err := dec.Decode(&yaml.Node{}); !errors.Is(err, io.EOF) {
		return ReadResult{}, ErrMultipleDocuments
	}

	n, err := nodeFromYAML(&doc)
	if err != nil {
		return ReadResult{}, fmt.Errorf("convert YAML: %w", err)
	}
	res.Node = n
	return res, nil
}

// Encode renders header lines followed by node as YAML.
func (f *FileIO) Encode(node *Node, header []string) ([]byte, error) {
	if node == nil {
		node = NewNode()
	}
	yn, err := valueToYAML(node)
	if err != nil {
		return nil, fmt.Errorf("build YAML: %w", err)
	}

	var buf bytes.Buffer
	for _, h := range header {
		buf.WriteString(h)
		buf.WriteByte('\n')
	}
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(f.indent)
	if err := enc.Encode(yn); err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteWithHeader atomically replaces path with header and node. Parent
// directories are created when missing. It returns the digest of the bytes written.
func (f *FileIO) WriteWithHeader(path string, node *Node, header []string) (string, error) {
	data, err := f.Encode(node, header)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), defaultDirMode); err != nil {
		return "", fmt.Errorf("mkdir config dir: %w", err)
	}
	if err := writeFileAtomic(path, data, f.perm); err != nil {
		return "", err
	}
	return digest(data), nil
}

// ReadNode returns only the node of path.
func (f *FileIO) ReadNode(path string) (*Node, error) {
	res, err := f.ReadWithHeader(path)
	if err != nil {
		return nil, err
	}
	return res.Node, nil
}

// ReadHeader returns only the comment header of path.
func (f *FileIO) ReadHeader(path string) ([]string, error) {
	res, err := f.ReadWithHeader(path)
	if err != nil {
		return nil, err
	}
	return res.Header, nil
}

// splitHeader returns the leading comment lines and the remaining body. The
// first line that is not a comment, blank lines included, ends the header.
func splitHeader(data []byte) ([]string, []byte) {
	var header []string
	rest := data
	for len(rest) > 0 {
		line := rest
		next := []byte(nil)
		if i := bytes.IndexByte(rest, '\n'); i >= 0 {
			line, next = rest[:i], rest[i+1:]
		}
		trimmed := strings.TrimSpace(string(line))
		if !strings.HasPrefix(trimmed, "#") {
			break
		}
		header = append(header, trimmed)
		rest = next
	}
	return header, rest
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
