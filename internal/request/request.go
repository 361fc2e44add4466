// Package request parses and validates deployment requests before they
// reach the launcher. Everything here fails fast: a request that validates
// is treated as opaque, trusted input downstream.
package request

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MainResourceKind discriminates the closed set of main resource variants.
type MainResourceKind string

const (
	// MainResourceArchive is a packaged application archive.
	MainResourceArchive MainResourceKind = "archive"
	// MainResourceScript is a single script file.
	MainResourceScript MainResourceKind = "script"
)

// MainResource locates the code the runner executes.
type MainResource struct {
	Kind MainResourceKind `yaml:"kind"`
	Path string           `yaml:"path"`
}

// Request is a parsed deployment request.
type Request struct {
	// Name is the human-facing display name of the workload.
	Name string `yaml:"name"`

	// Main optionally locates the main resource; some runtimes resolve the
	// entry point without one.
	Main *MainResource `yaml:"main,omitempty"`

	// EntryPoint names the class or function the runner starts.
	EntryPoint string `yaml:"entryPoint"`

	// Args are passed through to the entry point.
	Args []string `yaml:"args,omitempty"`

	// AuxFilesRef optionally names a bundle of auxiliary files the runtime
	// stages next to the workload.
	AuxFilesRef string `yaml:"auxFilesRef,omitempty"`

	// Properties are the system properties merged into the resolved spec.
	Properties map[string]string `yaml:"properties,omitempty"`
}

// InvalidRequestError reports a malformed deployment request.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return "invalid deployment request: " + e.Reason
}

// Load reads and validates a request manifest.
func Load(path string) (*Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request manifest: %w", err)
	}

	var req Request
	if err := yaml.Unmarshal(raw, &req); err != nil {
		return nil, &InvalidRequestError{Reason: fmt.Sprintf("parsing manifest %s: %v", path, err)}
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return &req, nil
}

// Validate checks the request for the errors the launcher must never see.
func (r *Request) Validate() error {
	if r.Name == "" {
		return &InvalidRequestError{Reason: "missing workload name"}
	}
	if r.EntryPoint == "" {
		return &InvalidRequestError{Reason: "missing entry point"}
	}
	if r.Main != nil {
		switch r.Main.Kind {
		case MainResourceArchive, MainResourceScript:
			if r.Main.Path == "" {
				return &InvalidRequestError{Reason: fmt.Sprintf("main resource of kind %q has no path", r.Main.Kind)}
			}
		default:
			return &InvalidRequestError{Reason: fmt.Sprintf("unknown main resource kind %q", r.Main.Kind)}
		}
	}
	return nil
}

// ApplyOverrides folds command-line property overrides of the form
// key=value into the request, rejecting anything else as an unknown
// argument.
func (r *Request) ApplyOverrides(args []string) error {
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return &InvalidRequestError{Reason: fmt.Sprintf("unknown argument %q", arg)}
		}
		if r.Properties == nil {
			r.Properties = map[string]string{}
		}
		r.Properties[key] = value
	}
	return nil
}
