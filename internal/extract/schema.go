package extract

import (
	"embed"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/brightpath-mortgage/intake-api/internal/model"
)

//go:embed schemas/*.yaml
var schemaFS embed.FS

// SchemaField is one field the extractor should pull from a document.
type SchemaField struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}

// Schema describes the structured output expected for a document type.
type Schema struct {
	DocumentType string        `yaml:"document_type"`
	Description  string        `yaml:"description"`
	Fields       []SchemaField `yaml:"fields"`
}

// LoadSchemas parses all embedded document schemas, keyed by document type.
func LoadSchemas() (map[model.DocumentType]*Schema, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, eris.Wrap(err, "extract: read schema dir")
	}

	schemas := make(map[model.DocumentType]*Schema, len(entries))
	for _, entry := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, eris.Wrapf(err, "extract: read schema %s", entry.Name())
		}

		var s Schema
		if err := yaml.Unmarshal(raw, &s); err != nil {
			return nil, eris.Wrapf(err, "extract: parse schema %s", entry.Name())
		}

		docType, ok := model.ParseDocumentType(s.DocumentType)
		if !ok {
			return nil, eris.Errorf("extract: schema %s has unknown document type %q", entry.Name(), s.DocumentType)
		}
		schemas[docType] = &s
	}

	return schemas, nil
}

// FieldList renders the schema's fields for inclusion in a prompt.
func (s *Schema) FieldList() string {
	var sb strings.Builder
	for _, f := range s.Fields {
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", f.Name, f.Type, f.Description))
	}
	return sb.String()
}
