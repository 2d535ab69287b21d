package deploy

import (
	"fmt"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"
)

// ItemType is the workspace item type of user data functions.
const ItemType = "UserDataFunction"

// Payload describes a function by its script, as kept next to the function sources.
type Payload struct {
	DisplayName   string `json:"displayName"`
	Description   string `json:"description"`
	ScriptContent string `json:"scriptContent"`
	Language      string `json:"language"`
	FunctionType  string `json:"functionType"`
}

// BuildPayload builds the payload of a Python function.
func BuildPayload(displayName, description, source string) Payload {
	return Payload{
		DisplayName:   displayName,
		Description:   description,
		ScriptContent: source,
		Language:      "python",
		FunctionType:  ItemType,
	}
}

// File is one source file of a definition.
type File struct {
	Content  string `json:"content"`
	Path     string `json:"path"`
	MimeType string `json:"mimeType"`
}

// DefinitionProperties lists the files of a definition and its entry point.
type DefinitionProperties struct {
	Language string `json:"language"`
	MainFile string `json:"mainFile"`
	Files    []File `json:"files"`
}

// Definition is the document uploaded as the item definition.
type Definition struct {
	Properties DefinitionProperties `json:"properties"`
	Type       string               `json:"type"`
}

// BuildDefinition wraps a single Python source file into a definition.
func BuildDefinition(mainFile, source string) Definition {
	return Definition{
		Properties: DefinitionProperties{
			Language: "Python",
			MainFile: mainFile,
			Files: []File{
				{Content: source, Path: mainFile, MimeType: "text/x-python"},
			},
		},
		Type: ItemType,
	}
}

// LoadDefinition reads a source file and builds its definition.
func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read source file: %w", err)
	}
	return BuildDefinition(filepath.Base(path), string(data)), nil
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(path string, v any) error {
	data, err := jsoniter.ConfigFastest.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
