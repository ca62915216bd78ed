// Package ingest turns external documents into validated influence networks.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/TFMV/kolgraph/models"
)

// ErrUnsupportedFormat is returned for unknown formats and file extensions
var ErrUnsupportedFormat = errors.New("unsupported format")

var validate = validator.New()

// DataProcessor defines the interface that all data processors must implement
type DataProcessor interface {
	// ProcessData takes raw document bytes and returns a validated network
	ProcessData(data []byte) (*models.Network, error)

	// GetName returns the name of the processor
	GetName() string
}

// FieldError describes one rejected field
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that failed validation
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "invalid network: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, format string, args ...any) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// JSONProcessor handles JSON network documents
type JSONProcessor struct{}

// NewJSONProcessor creates a new JSON processor
func NewJSONProcessor() *JSONProcessor {
	return &JSONProcessor{}
}

// GetName returns the name of the processor
func (p *JSONProcessor) GetName() string {
	return "JSON Processor"
}

// ProcessData processes JSON data
func (p *JSONProcessor) ProcessData(data []byte) (*models.Network, error) {
	var network models.Network
	if err := json.Unmarshal(data, &network); err != nil {
		return nil, fmt.Errorf("error parsing JSON: %w", err)
	}
	return finish(&network, "JSON Import")
}

// YAMLProcessor handles YAML network documents
type YAMLProcessor struct{}

// NewYAMLProcessor creates a new YAML processor
func NewYAMLProcessor() *YAMLProcessor {
	return &YAMLProcessor{}
}

// GetName returns the name of the processor
func (p *YAMLProcessor) GetName() string {
	return "YAML Processor"
}

// ProcessData processes YAML data
func (p *YAMLProcessor) ProcessData(data []byte) (*models.Network, error) {
	var network models.Network
	if err := yaml.Unmarshal(data, &network); err != nil {
		return nil, fmt.Errorf("error parsing YAML: %w", err)
	}
	return finish(&network, "YAML Import")
}

// finish validates the decoded network and fills in identity fields
func finish(network *models.Network, fallbackName string) (*models.Network, error) {
	if err := Validate(network); err != nil {
		return nil, err
	}

	if network.Name == "" {
		network.Name = fallbackName
	}
	if network.ID == "" {
		network.ID = uuid.New().String()
	}
	if network.CreatedAt.IsZero() {
		network.CreatedAt = time.Now()
	}
	for i := range network.Edges {
		if network.Edges[i].ID == "" {
			network.Edges[i].ID = uuid.New().String()
		}
	}
	return network, nil
}

// Validate checks struct constraints and node id uniqueness. Edges naming
// unknown nodes are allowed.
func Validate(network *models.Network) error {
	verr := &ValidationError{}

	if err := validate.Struct(network); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validating network: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.add(fe.Namespace(), "%s", describe(fe))
		}
	}

	seen := make(map[string]int, len(network.Nodes))
	for i, node := range network.Nodes {
		if node.ID == "" {
			continue
		}
		if first, dup := seen[node.ID]; dup {
			verr.add(fmt.Sprintf("Network.Nodes[%d].ID", i), "duplicate id %q (first at index %d)", node.ID, first)
			continue
		}
		seen[node.ID] = i
	}

	if len(verr.Errors) > 0 {
		return verr
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must not exceed " + fe.Param()
	default:
		return fmt.Sprintf("validation failed (%s)", fe.Tag())
	}
}

// GetProcessor returns the appropriate processor for the given format
func GetProcessor(format string) (DataProcessor, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONProcessor(), nil
	case "yaml", "yml":
		return NewYAMLProcessor(), nil
	case "csv":
		return NewCSVProcessor(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ProcessFile reads path and picks the processor from its extension
func ProcessFile(path string) (*models.Network, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	processor, err := GetProcessor(ext)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	network, err := processor.ProcessData(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return network, nil
}
