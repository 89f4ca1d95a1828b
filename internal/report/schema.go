package report

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SchemaVersion is the wire schema this generator emits by default.
const SchemaVersion = "1.1.0"

// supportedSchema constrains which schema versions this generator can emit.
// Minor revisions only add optional elements; a 2.x schema changes the
// numeric format and needs a new generator.
const supportedSchema = ">= 1.0.0, < 2.0.0"

// CheckSchemaVersion reports whether the generator supports emitting the
// given schema version.
func CheckSchemaVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("parse schema version %q: %w", version, err)
	}
	constraint, err := semver.NewConstraint(supportedSchema)
	if err != nil {
		return fmt.Errorf("parse schema constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("schema version %s is outside the supported range %s", version, supportedSchema)
	}
	return nil
}
