package recovery

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// exerciseSchemaJSON describes the object the generator is asked to return.
const exerciseSchemaJSON = `{
  "type": "object",
  "required": ["sentence_with_gap", "pinyin", "translation", "options", "answer"],
  "properties": {
    "sentence_with_gap": {"type": "string", "pattern": "____"},
    "pinyin": {"type": "string"},
    "translation": {"type": "string"},
    "options": {
      "type": "array",
      "items": {"type": "string", "minLength": 1},
      "minItems": 4,
      "maxItems": 4
    },
    "answer": {"type": "string", "minLength": 1}
  }
}`

var exerciseSchema = mustCompileSchema(exerciseSchemaJSON)

func mustCompileSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("recovery: invalid exercise schema: %v", err))
	}
	return s
}

// Diagnose lists the ways a decoded generator object departs from the
// expected shape. It returns nil for a conforming object.
func Diagnose(obj map[string]any) []string {
	if obj == nil {
		return nil
	}
	res, err := exerciseSchema.Validate(gojsonschema.NewGoLoader(obj))
	if err != nil {
		return []string{fmt.Sprintf("schema validation error: %v", err)}
	}
	if res.Valid() {
		return nil
	}
	out := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		out = append(out, e.String())
	}
	return out
}
