// Command check_openapi verifies that api/openapi.yaml still describes the
// assist service: the mode enum matches the server's modes and the request,
// response and error bodies have the expected fields.
package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"studymate/pkg/domain"
)

type openAPIDoc struct {
	Paths      map[string]map[string]any `yaml:"paths"`
	Components struct {
		Schemas map[string]schema `yaml:"schemas"`
	} `yaml:"components"`
}

type schema struct {
	Type       string            `yaml:"type"`
	Ref        string            `yaml:"$ref"`
	Enum       []string          `yaml:"enum"`
	Properties map[string]schema `yaml:"properties"`
	Required   []string          `yaml:"required"`
	Items      *schema           `yaml:"items"`
}

func main() {
	path := "api/openapi.yaml"
	switch len(os.Args) {
	case 1:
	case 2:
		path = os.Args[1]
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [openapi.yaml]\n", os.Args[0])
		os.Exit(2)
	}
	doc, err := loadDoc(path)
	if err != nil {
		exitErr(err)
	}
	if err := check(doc); err != nil {
		exitErr(err)
	}
	fmt.Println("OpenAPI consistency check passed.")
}

func loadDoc(path string) (openAPIDoc, error) {
	var doc openAPIDoc
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func check(doc openAPIDoc) error {
	for _, route := range domain.Routes() {
		ops, ok := doc.Paths[route.Path]
		if !ok {
			return fmt.Errorf("path %s missing", route.Path)
		}
		if _, ok := ops[strings.ToLower(route.Method)]; !ok {
			return fmt.Errorf("path %s missing %s operation", route.Path, route.Method)
		}
	}

	mode, err := getSchema(doc, "Mode")
	if err != nil {
		return err
	}
	want := make([]string, 0, len(domain.Modes()))
	for _, m := range domain.Modes() {
		want = append(want, string(m))
	}
	if !slices.Equal(mode.Enum, want) {
		return fmt.Errorf("Mode enum %v does not match server modes %v", mode.Enum, want)
	}

	req, err := getSchema(doc, "GenerateRequest")
	if err != nil {
		return err
	}
	if err := requireFields("GenerateRequest", req, "prompt", "mode"); err != nil {
		return err
	}
	if req.Properties["mode"].Ref != "#/components/schemas/Mode" {
		return errors.New("GenerateRequest.mode must reference Mode")
	}

	for name, field := range map[string]string{"GenerateResponse": "result", "ErrorResponse": "error"} {
		s, err := getSchema(doc, name)
		if err != nil {
			return err
		}
		if err := requireFields(name, s, field); err != nil {
			return err
		}
	}
	return nil
}

func getSchema(doc openAPIDoc, name string) (schema, error) {
	if doc.Components.Schemas == nil {
		return schema{}, errors.New("components.schemas missing")
	}
	s, ok := doc.Components.Schemas[name]
	if !ok {
		return schema{}, fmt.Errorf("schema %q missing", name)
	}
	return s, nil
}

// requireFields checks that s is an object whose listed string-or-ref
// properties exist and are required.
func requireFields(name string, s schema, fields ...string) error {
	if s.Type != "object" {
		return fmt.Errorf("%s must be object", name)
	}
	for _, field := range fields {
		if !slices.Contains(s.Required, field) {
			return fmt.Errorf("%s.required must include %q", name, field)
		}
		prop, ok := s.Properties[field]
		if !ok {
			return fmt.Errorf("%s.%s missing", name, field)
		}
		if prop.Type != "string" && prop.Ref == "" {
			return fmt.Errorf("%s.%s must be string", name, field)
		}
	}
	return nil
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "OpenAPI consistency check failed: %v\n", err)
	os.Exit(1)
}
