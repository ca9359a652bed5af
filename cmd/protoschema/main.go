package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"skirmish/server/internal/net/proto"
)

// protoschema emits a JSON schema for the websocket wire protocol so
// client authors can validate payloads without reading the Go types.
func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := writeSchema(outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}

	client := reflector.Reflect(new(proto.ClientMessage))
	client.Title = "Skirmish Client Message"
	client.Description = "Envelope for every inbound websocket payload; the type field selects the schema."

	state := reflector.Reflect(new(proto.StateMessage))
	state.Title = "Skirmish State Snapshot"
	state.Description = "Full authoritative snapshot broadcast each tick."

	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Skirmish Wire Protocol",
		Description: "Inbound envelope and the state broadcast of the room/match engine.",
		OneOf: []*jsonschema.Schema{
			client,
			state,
		},
	}
	return root
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create schema directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp schema: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace schema: %w", err)
	}

	return nil
}
