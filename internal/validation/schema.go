package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentsleague/prepeval/schemas"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

var (
	// DatasetCase validates one decoded dataset record.
	DatasetCase = mustCompileSchema(schemas.DatasetCaseSchemaJSON, "dataset_case.schema.json")
	// JudgeVerdict validates the JSON answer of a metric judge.
	JudgeVerdict = mustCompileSchema(schemas.JudgeVerdictSchemaJSON, "judge_verdict.schema.json")
	// CustomPrepEval validates the whole-workflow judge answer.
	CustomPrepEval = mustCompileSchema(schemas.CustomPrepEvalSchemaJSON, "custom_prep_eval.schema.json")
	// ScoringProfiles validates scoring override files.
	ScoringProfiles = mustCompileSchema(schemas.ScoringProfilesSchemaJSON, "scoring_profiles.schema.json")
)

// Schema is a compiled JSON Schema together with its raw document, which is
// also sent to models as a structured-output format.
type Schema struct {
	name     string
	doc      map[string]any
	compiled *jsonschema.Schema
}

func mustCompileSchema(raw string, name string) *Schema {
	s, err := CompileJSON(raw, name)
	if err != nil {
		panic(err.Error())
	}
	return s
}

// CompileJSON compiles a schema from its JSON text.
func CompileJSON(raw string, name string) (*Schema, error) {
	var schemaDoc map[string]any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		return nil, fmt.Errorf("failed to add %s resource: %w", name, err)
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to compile %s: %w", name, err)
	}
	return &Schema{name: name, doc: schemaDoc, compiled: sch}, nil
}

// Name returns the resource name the schema was compiled under.
func (s *Schema) Name() string { return s.name }

// Document returns a copy of the schema without the "$schema" and "title"
// annotations, suitable for a structured-output request.
func (s *Schema) Document() map[string]any {
	out := make(map[string]any, len(s.doc))
	for k, v := range s.doc {
		if k == "$schema" || k == "title" {
			continue
		}
		out[k] = v
	}
	return out
}

// Validate checks an instance decoded into generic JSON values and returns
// one message per violated leaf constraint.
func (s *Schema) Validate(instance any) []string {
	return validateAgainstSchema(s.compiled, instance)
}

// ValidateJSON decodes data and validates it. The decoded value is returned so
// callers can reuse it.
func (s *Schema) ValidateJSON(data []byte) (any, []string) {
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, []string{fmt.Sprintf("JSON parse error: %v", err)}
	}
	return instance, s.Validate(instance)
}

// ValidateYAML decodes a YAML document and validates it.
func (s *Schema) ValidateYAML(data []byte) []string {
	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}
	return s.Validate(yamlDoc)
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(convertToJSONCompatible(instance))
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// convertToJSONCompatible copies decoded containers into the plain map and
// slice types the validator walks. Scalars pass through unchanged.
func convertToJSONCompatible(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, v2 := range val {
			result[k] = convertToJSONCompatible(v2)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, v2 := range val {
			result[i] = convertToJSONCompatible(v2)
		}
		return result
	default:
		return val
	}
}
