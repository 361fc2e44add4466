// Package properties builds the config artifact mounted into the runner:
// a ConfigMap carrying site configuration files plus a single serialized
// properties blob.
package properties

import (
	"fmt"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// BlobKey is the fixed, well-known ConfigMap key carrying the serialized
// runtime properties.
const BlobKey = "runner.properties"

// IsSiteFileProperty reports whether a property key names a site
// configuration file that is carried verbatim as its own file entry.
// Matching is an exact, case-sensitive substring check for ".xml".
func IsSiteFileProperty(key string) bool {
	return strings.Contains(key, ".xml")
}

// Artifact is the derived config artifact for one submission. Files holds
// site configuration file entries keyed by filename; Blob is the
// newline-delimited key=value serialization of every remaining property.
// The two partitions are disjoint and together cover the full input key set.
type Artifact struct {
	Files map[string]string
	Blob  string
}

// BuildArtifact partitions props into file entries and the serialized blob.
// It is a pure function of its inputs: keys are traversed in sorted order so
// identical inputs produce identical artifacts. An empty map yields an
// artifact with no file entries and an empty blob.
func BuildArtifact(namePrefix string, props map[string]string) Artifact {
	artifact := Artifact{Files: map[string]string{}}

	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var blob strings.Builder
	for _, key := range keys {
		if IsSiteFileProperty(key) {
			artifact.Files[key] = props[key]
			continue
		}
		if blob.Len() == 0 {
			fmt.Fprintf(&blob, "# Runtime properties for %s\n", namePrefix)
		}
		fmt.Fprintf(&blob, "%s=%s\n", key, props[key])
	}
	artifact.Blob = blob.String()

	return artifact
}

// ConfigMap renders the artifact as the ConfigMap to be created alongside
// the runner pod. The blob is stored under BlobKey next to the file entries.
func (a Artifact) ConfigMap(name, namespace string) *corev1.ConfigMap {
	data := make(map[string]string, len(a.Files)+1)
	for file, content := range a.Files {
		data[file] = content
	}
	data[BlobKey] = a.Blob

	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Data: data,
	}
}
