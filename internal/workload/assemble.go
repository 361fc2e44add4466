package workload

import (
	"fmt"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
)

const (
	// ConfDirPath is the in-container directory the config artifact is
	// mounted at; the runtime resolves its configuration from here.
	ConfDirPath = "/opt/runner/conf"

	// ConfDirEnvVar points the runtime's configuration lookup at ConfDirPath.
	ConfDirEnvVar = "RUNNER_CONF_DIR"

	// ServiceIdentityKey is the system property carrying the credential
	// identity the runner authenticates as. It must be present at assembly
	// time.
	ServiceIdentityKey = "runner.auth.serviceIdentity"

	// ServiceIdentityEnvVar carries the ServiceIdentityKey value into the
	// runner environment.
	ServiceIdentityEnvVar = "RUNNER_SERVICE_IDENTITY"

	confVolumeName = "runner-conf"
)

// MissingPropertyError reports a required system property that is absent at
// assembly time. It is raised before any cluster mutation.
type MissingPropertyError struct {
	Key string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("required system property %q is not set", e.Key)
}

// IsTransferProperty reports whether a property configures the file-transfer
// integration and must be exported into the runner environment. Matching is
// an exact, case-sensitive substring check for "sftp".
func IsTransferProperty(key string) bool {
	return strings.Contains(key, "sftp")
}

// Assemble folds the config artifact reference and the property-derived
// environment into a template. The input template is never mutated; a new
// one is returned.
//
// Assemble is not idempotent: applying it to its own output duplicates the
// config volume and mount. Callers must apply it exactly once per template.
func Assemble(tpl Template, props map[string]string, configMapName string) (Template, error) {
	out := tpl.DeepCopy()

	out.Container.Env = append(out.Container.Env, corev1.EnvVar{
		Name:  ConfDirEnvVar,
		Value: ConfDirPath,
	})

	identity, ok := props[ServiceIdentityKey]
	if !ok {
		return Template{}, &MissingPropertyError{Key: ServiceIdentityKey}
	}
	out.Container.Env = append(out.Container.Env, corev1.EnvVar{
		Name:  ServiceIdentityEnvVar,
		Value: identity,
	})

	// Sorted traversal keeps the rendered environment deterministic.
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !IsTransferProperty(key) {
			continue
		}
		out.Container.Env = append(out.Container.Env, corev1.EnvVar{
			Name:  key,
			Value: props[key],
		})
	}

	out.Container.VolumeMounts = append(out.Container.VolumeMounts, corev1.VolumeMount{
		Name:      confVolumeName,
		MountPath: ConfDirPath,
	})
	out.Pod.Spec.Volumes = append(out.Pod.Spec.Volumes, corev1.Volume{
		Name: confVolumeName,
		VolumeSource: corev1.VolumeSource{
			ConfigMap: &corev1.ConfigMapVolumeSource{
				LocalObjectReference: corev1.LocalObjectReference{Name: configMapName},
			},
		},
	})

	return out, nil
}
