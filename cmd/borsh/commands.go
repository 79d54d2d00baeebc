package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/borsh/alloc"
	"github.com/wippyai/borsh/codec"
	"github.com/wippyai/borsh/schema"
)

func loadRegistry(opts *options) (*schema.Registry, error) {
	if opts.schema == "" {
		return schema.NewRegistry(), nil
	}
	return schema.Load(opts.schema)
}

func loadCodec(opts *options) (codec.Codec[any], error) {
	reg, err := loadRegistry(opts)
	if err != nil {
		return nil, err
	}
	return reg.Codec(opts.typ)
}

func readInput(e *env, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(e.stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func readValue(e *env, args []string) (any, error) {
	data, err := readInput(e, args)
	if err != nil {
		return nil, err
	}
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("parse value: %w", err)
	}
	return v, nil
}

func readBytes(e *env, opts *options, args []string) ([]byte, error) {
	data, err := readInput(e, args)
	if err != nil {
		return nil, err
	}
	if !opts.hex {
		return data, nil
	}
	text := strings.Join(strings.Fields(string(data)), "")
	text = strings.TrimPrefix(text, "0x")
	out, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("parse hex input: %w", err)
	}
	return out, nil
}

func writeDigest(e *env, opts *options, data []byte) {
	if !opts.digest {
		return
	}
	sum := blake3.Sum256(data)
	fmt.Fprintf(e.stderr, "%s %s\n", e.style.label.Render("blake3"), hex.EncodeToString(sum[:]))
}

func runEncode(e *env, opts *options, args []string) error {
	c, err := loadCodec(opts)
	if err != nil {
		return err
	}
	v, err := readValue(e, args)
	if err != nil {
		return err
	}
	data, err := codec.Marshal(c, v)
	if err != nil {
		return err
	}
	if opts.hex {
		_, err = fmt.Fprintln(e.stdout, hex.EncodeToString(data))
	} else {
		_, err = e.stdout.Write(data)
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	writeDigest(e, opts, data)
	return nil
}

func runSize(e *env, opts *options, args []string) error {
	c, err := loadCodec(opts)
	if err != nil {
		return err
	}
	v, err := readValue(e, args)
	if err != nil {
		return err
	}
	// SizeOf does not report encode failures, so validate first.
	if _, err := codec.Marshal(c, v); err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, codec.SizeOf(c, v))
	return nil
}

// decodeValue decodes data with an accounting heap and returns a copy of
// the value that is safe to keep after the heap is released.
func decodeValue(c codec.Codec[any], data []byte) (any, error) {
	heap := alloc.NewHeap()
	owned, err := codec.Unmarshal(heap, data, c)
	if err != nil {
		return nil, err
	}
	defer owned.Free(heap)
	return plain(owned.Value), nil
}

func runDecode(e *env, opts *options, args []string) error {
	c, err := loadCodec(opts)
	if err != nil {
		return err
	}
	data, err := readBytes(e, opts, args)
	if err != nil {
		return err
	}
	v, err := decodeValue(c, data)
	if err != nil {
		return err
	}
	out, err := renderYAML(v)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(e.stdout, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	writeDigest(e, opts, data)
	return nil
}

// plain rewrites decoded byte strings as lists of numbers so the YAML
// output can be fed back to encode.
func plain(v any) any {
	switch v := v.(type) {
	case []byte:
		out := make([]any, len(v))
		for i, b := range v {
			out[i] = int(b)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = plain(x)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, x := range v {
			out[k] = plain(x)
		}
		return out
	}
	return v
}

func renderYAML(v any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("render value: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render value: %w", err)
	}
	return buf.String(), nil
}
