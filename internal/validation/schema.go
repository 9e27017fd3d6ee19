package validation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/schemas"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// resultSchema is the compiled JSON Schema for flat result records.
var resultSchema *jsonschema.Schema

// configSchema is the compiled JSON Schema for .leaderboard.yaml.
var configSchema *jsonschema.Schema

func init() {
	resultSchema = mustCompileSchema(schemas.ResultSchemaJSON, "result.schema.json")
	configSchema = mustCompileSchema(schemas.ConfigSchemaJSON, "config.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// RecordError reports the schema violations of one flat result record. It
// unwraps to models.ErrInvalidResult.
type RecordError struct {
	Index      int
	ID         string
	Violations []string
}

func (e *RecordError) Error() string {
	id := ""
	if e.ID != "" {
		id = fmt.Sprintf(" (id %q)", e.ID)
	}
	return fmt.Sprintf("record %d%s: %s", e.Index, id, strings.Join(e.Violations, "; "))
}

func (e *RecordError) Unwrap() error {
	return models.ErrInvalidResult
}

// ValidateRecord checks one JSON-compatible record against the result schema.
func ValidateRecord(record any) []string {
	return validateAgainstSchema(resultSchema, record)
}

// ValidateRecords checks every record and returns a *RecordError for the
// first one that breaks the contract. A fetch with any bad record is unusable.
func ValidateRecords(records []map[string]any) error {
	for i, rec := range records {
		if errs := ValidateRecord(rec); len(errs) > 0 {
			id, _ := rec["id"].(string)
			return &RecordError{Index: i, ID: id, Violations: errs}
		}
	}
	return nil
}

// ValidateResultsBytes validates a JSON array of result records.
func ValidateResultsBytes(data []byte) []string {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []string{fmt.Sprintf("JSON parse error: %v", err)}
	}
	items, ok := doc.([]any)
	if !ok {
		return []string{"/: expected an array of result records"}
	}
	var errs []string
	for i, item := range items {
		for _, e := range ValidateRecord(item) {
			errs = append(errs, fmt.Sprintf("[%d]%s", i, e))
		}
	}
	return errs
}

// ValidateConfigBytes validates raw .leaderboard.yaml bytes.
func ValidateConfigBytes(data []byte) []string {
	return validateYAMLBytes(configSchema, data)
}

func validateYAMLBytes(schema *jsonschema.Schema, data []byte) []string {
	var yamlDoc any
	if err := yaml.Unmarshal(data, &yamlDoc); err != nil {
		return []string{fmt.Sprintf("YAML parse error: %v", err)}
	}
	if yamlDoc == nil {
		return nil
	}
	return validateAgainstSchema(schema, yamlDoc)
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
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
