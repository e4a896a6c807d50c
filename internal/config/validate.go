package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// yamlPosition matches the position prefix of yaml.v3 syntax errors,
// e.g. "yaml: line 3: did not find expected key".
var yamlPosition = regexp.MustCompile(`^yaml: line (\d+):(?: column (\d+):)? (.*)$`)

var validate = validator.New()

// ValidationError is a configuration problem located in a file, either at a
// line and column (syntax) or at a dotted key (value).
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Field    string
	Message  string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: %s %s", e.FilePath, e.Field, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	}
}

// ValidateYAMLSyntax parses the file at path as YAML so syntax mistakes are
// reported with their position before koanf sees them. A missing or blank
// file is valid.
func ValidateYAMLSyntax(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return &ValidationError{FilePath: path, Message: err.Error()}
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return yamlError(path, err)
	}
	return nil
}

func yamlError(path string, err error) *ValidationError {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{FilePath: path, Message: strings.Join(typeErr.Errors, "; ")}
	}

	m := yamlPosition.FindStringSubmatch(err.Error())
	if m == nil {
		return &ValidationError{FilePath: path, Message: strings.TrimPrefix(err.Error(), "yaml: ")}
	}
	line, _ := strconv.Atoi(m[1])
	column := 1
	if m[2] != "" {
		column, _ = strconv.Atoi(m[2])
	}
	return &ValidationError{FilePath: path, Line: line, Column: column, Message: m[3]}
}

// ValidateConfigValues checks cfg against its validate struct tags and
// reports the first failing key.
func ValidateConfigValues(cfg *Configuration, source string) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{FilePath: source, Message: err.Error()}
	}
	first := fieldErrs[0]
	return &ValidationError{FilePath: source, Field: fieldPath(first), Message: describe(first)}
}

func describe(fieldErr validator.FieldError) string {
	param := fieldErr.Param()
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required when " + strings.Replace(param, " ", " is ", 1)
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	}
	return "failed the " + fieldErr.Tag() + " check"
}

// fieldPath returns the dotted config key of a failed field, e.g.
// "watch.max_backlog" for Configuration.Watch.MaxBacklog.
func fieldPath(fieldErr validator.FieldError) string {
	parts := strings.Split(fieldErr.StructNamespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, part := range parts {
		parts[i] = toSnakeCase(part)
	}
	return strings.Join(parts, ".")
}

// toSnakeCase converts a CamelCase field name to snake_case, keeping
// acronyms together ("LogJSON" becomes "log_json").
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
