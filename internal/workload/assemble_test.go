package workload

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func makeTemplate() Template {
	return Template{
		Pod: &corev1.Pod{
			ObjectMeta: metav1.ObjectMeta{Labels: map[string]string{"app": "runner"}},
			Spec:       corev1.PodSpec{RestartPolicy: corev1.RestartPolicyNever},
		},
		Container: &corev1.Container{
			Name:  "runner",
			Image: "registry.example.com/runner:1.2.0",
		},
	}
}

func validProps() map[string]string {
	return map[string]string{
		ServiceIdentityKey: "svc-a",
		"runner.memory":    "4g",
	}
}

func TestAssembleInjectsFixedEnvironment(t *testing.T) {
	assembled, err := Assemble(makeTemplate(), validProps(), "my-app-123-conf")
	require.NoError(t, err)

	env := envMap(assembled.Container.Env)
	assert.Equal(t, ConfDirPath, env[ConfDirEnvVar])
	assert.Equal(t, "svc-a", env[ServiceIdentityEnvVar])
}

func TestAssembleMissingServiceIdentity(t *testing.T) {
	_, err := Assemble(makeTemplate(), map[string]string{"runner.memory": "4g"}, "my-app-123-conf")
	require.Error(t, err)

	var missing *MissingPropertyError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, ServiceIdentityKey, missing.Key)
}

func TestAssembleTransferProperties(t *testing.T) {
	props := validProps()
	props["my.sftp.password"] = "x"

	assembled, err := Assemble(makeTemplate(), props, "my-app-123-conf")
	require.NoError(t, err)

	var matches int
	for _, env := range assembled.Container.Env {
		if env.Name == "my.sftp.password" {
			matches++
			assert.Equal(t, "x", env.Value)
		}
	}
	assert.Equal(t, 1, matches, "expected exactly one env entry for the transfer property")
}

func TestAssembleNoTransferProperties(t *testing.T) {
	assembled, err := Assemble(makeTemplate(), validProps(), "my-app-123-conf")
	require.NoError(t, err)

	for _, env := range assembled.Container.Env {
		assert.False(t, IsTransferProperty(env.Name),
			"unexpected transfer-derived env entry %q", env.Name)
	}
}

func TestAssembleMountsConfigVolume(t *testing.T) {
	assembled, err := Assemble(makeTemplate(), validProps(), "my-app-123-conf")
	require.NoError(t, err)

	require.Len(t, assembled.Pod.Spec.Volumes, 1)
	vol := assembled.Pod.Spec.Volumes[0]
	require.NotNil(t, vol.ConfigMap)
	assert.Equal(t, "my-app-123-conf", vol.ConfigMap.Name)

	require.Len(t, assembled.Container.VolumeMounts, 1)
	assert.Equal(t, vol.Name, assembled.Container.VolumeMounts[0].Name)
	assert.Equal(t, ConfDirPath, assembled.Container.VolumeMounts[0].MountPath)
}

// Assemble is a pure function: identical inputs yield structurally identical
// outputs and the input template is never touched.
func TestAssembleIsPure(t *testing.T) {
	tpl := makeTemplate()
	before := tpl.DeepCopy()

	first, err := Assemble(tpl, validProps(), "my-app-123-conf")
	require.NoError(t, err)
	second, err := Assemble(tpl, validProps(), "my-app-123-conf")
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("outputs differ across identical calls (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, tpl); diff != "" {
		t.Errorf("input template was mutated (-before +after):\n%s", diff)
	}
}

// Applying Assemble to its own output duplicates the config volume and
// mount. The non-idempotence is contractual; callers apply it once.
func TestAssembleIsNotIdempotent(t *testing.T) {
	once, err := Assemble(makeTemplate(), validProps(), "my-app-123-conf")
	require.NoError(t, err)
	twice, err := Assemble(once, validProps(), "my-app-123-conf")
	require.NoError(t, err)

	assert.Len(t, twice.Pod.Spec.Volumes, 2)
	assert.Len(t, twice.Container.VolumeMounts, 2)
}

func envMap(env []corev1.EnvVar) map[string]string {
	out := make(map[string]string, len(env))
	for _, e := range env {
		out[e.Name] = e.Value
	}
	return out
}
