// Package naming generates application identifiers and cluster resource
// name prefixes. The clock and id source are injected so names are
// deterministic under test.
package naming

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"k8s.io/utils/clock"
)

var (
	separatorRun = regexp.MustCompile(`[\s\p{P}]+`)
	invalidRune  = regexp.MustCompile(`[^a-z0-9-]`)
)

// Namer produces the identifiers for one or more submissions.
type Namer struct {
	clock clock.PassiveClock
	newID func() string
}

// New builds a Namer with explicit clock and id dependencies.
func New(c clock.PassiveClock, newID func() string) *Namer {
	return &Namer{clock: c, newID: newID}
}

// NewDefault builds a Namer on the wall clock and random UUIDs.
func NewDefault() *Namer {
	return New(clock.RealClock{}, func() string {
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	})
}

// ApplicationID returns a unique identifier for one submission.
func (n *Namer) ApplicationID() string {
	return "job-" + n.newID()
}

// ResourcePrefix derives the cluster resource-name prefix for a display
// name: the normalized name joined with the current time in milliseconds,
// so repeated submissions of the same workload do not collide.
func (n *Namer) ResourcePrefix(displayName string) string {
	return fmt.Sprintf("%s-%d", normalize(displayName), n.clock.Now().UnixMilli())
}

// normalize lower-cases a display name, collapses whitespace and
// punctuation runs into single hyphens and strips everything that is not
// alphanumeric or a hyphen.
func normalize(displayName string) string {
	name := strings.ToLower(displayName)
	name = separatorRun.ReplaceAllString(name, "-")
	name = invalidRune.ReplaceAllString(name, "")
	name = strings.Trim(name, "-")
	if name == "" {
		return "workload"
	}
	return name
}
