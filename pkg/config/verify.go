package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema struct {
		Ref         string                     `json:"$ref"`
		Definitions map[string]json.RawMessage `json:"$defs"`
	}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to a generic map to look up required fields by their json names
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validateRequiredFields(configMap, schema.Definitions); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// validateRequiredFields checks that every section's required fields are set
func validateRequiredFields(configMap map[string]any, defs map[string]json.RawMessage) error {
	sections := map[string]string{"site": "SiteConfig", "feeds": "FeedsConfig"}
	for section, defName := range sections {
		raw, ok := defs[defName]
		if !ok {
			continue
		}
		var def struct {
			Required []string `json:"required"`
		}
		if err := json.Unmarshal(raw, &def); err != nil {
			return fmt.Errorf("parse schema definition %s: %w", defName, err)
		}
		values, _ := configMap[section].(map[string]any)
		for _, field := range def.Required {
			if isEmptyValue(values[field]) {
				return fmt.Errorf("%s.%s is required", section, field)
			}
		}
	}
	return nil
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	}
	return false
}

// GenerateSchema generates a JSON schema for the Config struct,
// only fields tagged with jsonschema "required" are marked as required
func GenerateSchema() *jsonschema.Schema {
	r := &jsonschema.Reflector{RequiredFromJSONSchemaTags: true}
	return r.Reflect(&Config{})
}
