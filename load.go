package autoflow

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseWorkflow parses a YAML workflow definition and validates it.
func ParseWorkflow(data []byte) (*WorkflowDefinition, error) {
	var def WorkflowDefinition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse workflow: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// ReadWorkflow parses a workflow definition from a reader.
func ReadWorkflow(r io.Reader) (*WorkflowDefinition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workflow: %w", err)
	}
	return ParseWorkflow(data)
}

// LoadWorkflow reads and parses a workflow definition file.
func LoadWorkflow(path string) (*WorkflowDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load workflow %s: %w", path, err)
	}
	def, err := ParseWorkflow(data)
	if err != nil {
		return nil, fmt.Errorf("workflow %s: %w", path, err)
	}
	return def, nil
}
