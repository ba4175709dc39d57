package cli

import (
	"encoding/json"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"hermannm.dev/wrap"
)

// readInput reads a file, or stdin when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, wrap.Error(err, "failed to read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap.Errorf(err, "failed to read '%s'", path)
	}
	return data, nil
}

// decodeDocument decodes YAML or JSON into v. The document goes through JSON so the json tags
// and custom decoders of v apply to both formats.
func decodeDocument(data []byte, v any) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return wrap.Error(err, "failed to parse document")
	}
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return wrap.Error(err, "failed to convert document to JSON")
	}
	if err := json.Unmarshal(asJSON, v); err != nil {
		return wrap.Error(err, "failed to decode document")
	}
	return nil
}
