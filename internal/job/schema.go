package job

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema returns the JSON Schema of the job manifest, indented.
func Schema() ([]byte, error) {
	// Inline properties (no $ref) keep the schema readable in editors.
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	s := r.Reflect(&Job{})
	s.Title = "sheetsearch job"
	return json.MarshalIndent(s, "", "  ")
}
