package surveyapi

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// questionsSchema validates the question-fetch payload before it is decoded.
// A malformed backend response fails loudly here instead of producing a
// half-populated question plan.
const questionsSchema = `{
	"type": "object",
	"required": ["SurveyId", "Questions"],
	"properties": {
		"SurveyId": {"type": "string", "minLength": 1},
		"TemplateName": {"type": "string"},
		"Questions": {
			"type": "array",
			"items": {"$ref": "#/definitions/question"}
		}
	},
	"definitions": {
		"question": {
			"type": "object",
			"required": ["id", "text"],
			"properties": {
				"id": {"type": "string", "minLength": 1},
				"text": {"type": "string", "minLength": 1},
				"order": {"type": "integer"},
				"criteria": {"type": "string"},
				"scales": {"type": "integer", "minimum": 0},
				"categories": {"type": "array", "items": {"type": "string"}},
				"parent_id": {"type": "string"},
				"parent_category_texts": {"type": "array", "items": {"type": "string"}},
				"autofill": {"type": "string", "enum": ["", "Yes", "No"]},
				"answer": {"type": "string"},
				"child_questions": {
					"type": "object",
					"additionalProperties": {
						"type": "array",
						"items": {"$ref": "#/definitions/question"}
					}
				}
			}
		}
	}
}`

var questionsSchemaLoader = gojsonschema.NewStringLoader(questionsSchema)

// ValidateQuestionsPayload checks a raw question-fetch response against the
// payload schema.
func ValidateQuestionsPayload(payload []byte) error {
	result, err := gojsonschema.Validate(questionsSchemaLoader, gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
}
