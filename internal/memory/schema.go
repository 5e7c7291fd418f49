package memory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument is returned when a persisted memory document does not
// match the expected layout.
var ErrInvalidDocument = errors.New("invalid memory document")

const documentSchema = `{
  "type": "object",
  "properties": {
    "topics_covered": {
      "type": "object",
      "additionalProperties": {"type": "integer", "minimum": 0}
    },
    "sources_used": {
      "type": "object",
      "additionalProperties": {"type": "integer", "minimum": 0}
    },
    "successful_patterns": {"type": "array"},
    "last_generation": {"type": ["string", "null"]},
    "total_generations": {"type": "integer", "minimum": 0},
    "article_history": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["url"],
        "properties": {
          "url": {"type": "string"},
          "title": {"type": "string"},
          "source": {"type": "string"},
          "processed_at": {"type": "string"}
        }
      }
    }
  }
}`

var documentSchemaLoader = gojsonschema.NewStringLoader(documentSchema)

// validateDocument checks raw JSON against the memory document schema.
func validateDocument(data []byte) error {
	result, err := gojsonschema.Validate(documentSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
}
