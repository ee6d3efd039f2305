package plugins

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// ManifestSchema returns the JSON schema of the plugin manifest.
func ManifestSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&PluginManifest{})
	schema.Title = "Claude plugin manifest"
	return schema
}

// ManifestSchemaJSON returns the indented manifest schema document.
func ManifestSchemaJSON() ([]byte, error) {
	data, err := json.MarshalIndent(ManifestSchema(), "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal manifest schema")
	}
	return data, nil
}
