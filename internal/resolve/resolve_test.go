package resolve

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	corev1 "k8s.io/api/core/v1"

	"github.com/jobmesh/jobctl/internal/request"
)

func testResolver() *Resolver {
	return New(Config{
		Image:          "registry.example.com/runner:1.2.0",
		ServiceAccount: "jobctl-runner",
		Labels:         map[string]string{"team": "data"},
	})
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		req      *request.Request
		wantArgs []string
	}{
		{
			name: "archive main resource",
			req: &request.Request{
				Name:       "wordcount",
				EntryPoint: "com.example.WordCount",
				Main:       &request.MainResource{Kind: request.MainResourceArchive, Path: "app.jar"},
				Args:       []string{"--input", "/data"},
			},
			wantArgs: []string{"run", "--archive", "app.jar", "com.example.WordCount", "--input", "/data"},
		},
		{
			name: "script main resource",
			req: &request.Request{
				Name:       "wordcount",
				EntryPoint: "main",
				Main:       &request.MainResource{Kind: request.MainResourceScript, Path: "job.py"},
			},
			wantArgs: []string{"run", "--script", "job.py", "main"},
		},
		{
			name: "no main resource",
			req: &request.Request{
				Name:       "wordcount",
				EntryPoint: "com.example.WordCount",
			},
			wantArgs: []string{"run", "com.example.WordCount"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := testResolver().Resolve(tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.wantArgs, spec.Template.Container.Args); diff != "" {
				t.Errorf("runner args mismatch (-want +got):\n%s", diff)
			}
			if spec.Template.Container.Image != "registry.example.com/runner:1.2.0" {
				t.Errorf("unexpected image %q", spec.Template.Container.Image)
			}
			if spec.Template.Pod.Spec.RestartPolicy != corev1.RestartPolicyNever {
				t.Errorf("runner pods must not restart, got %q", spec.Template.Pod.Spec.RestartPolicy)
			}
			if spec.Template.Pod.Labels["team"] != "data" {
				t.Errorf("ambient labels not merged: %v", spec.Template.Pod.Labels)
			}
		})
	}
}

func TestResolveCarriesProperties(t *testing.T) {
	req := &request.Request{
		Name:        "wordcount",
		EntryPoint:  "com.example.WordCount",
		AuxFilesRef: "s3://bucket/aux",
		Properties:  map[string]string{"runner.memory": "4g"},
	}

	spec, err := testResolver().Resolve(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.SystemProperties["runner.memory"] != "4g" {
		t.Errorf("request properties not carried: %v", spec.SystemProperties)
	}
	if spec.SystemProperties[AuxFilesKey] != "s3://bucket/aux" {
		t.Errorf("aux files reference not folded into properties: %v", spec.SystemProperties)
	}

	// The resolved spec must not alias the request's maps.
	req.Properties["runner.memory"] = "8g"
	if spec.SystemProperties["runner.memory"] != "4g" {
		t.Error("resolved spec aliases the request property map")
	}
}

func TestResolveRejectsInvalidRequest(t *testing.T) {
	_, err := testResolver().Resolve(&request.Request{Name: "wordcount"})

	var invalid *request.InvalidRequestError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidRequestError, got %v", err)
	}
}
