package versioning

import (
	mm "github.com/Masterminds/semver/v3"
)

// Status classifies a project's version against the latest published one.
type Status string

const (
	StatusCurrent    Status = "up-to-date"
	StatusBehind     Status = "behind"
	StatusAhead      Status = "ahead"
	StatusEquivalent Status = "equivalent"
	StatusUnreleased Status = "unreleased"
	StatusUnknown    Status = "unknown"
)

func (s Status) String() string {
	return string(s)
}

// Compare classifies current against latest. Only equal strings are
// current, matching Project.UpToDate; differently spelled equal versions
// such as 1.0 and 1.0.0 are equivalent. Otherwise both must parse as
// semantic versions (Maven's "-SNAPSHOT" is a prerelease) or the status is
// unknown.
func Compare(current, latest string) Status {
	if latest == "" {
		return StatusUnreleased
	}
	if current == latest {
		return StatusCurrent
	}

	cv, err := mm.NewVersion(current)
	if err != nil {
		return StatusUnknown
	}
	lv, err := mm.NewVersion(latest)
	if err != nil {
		return StatusUnknown
	}

	switch cv.Compare(lv) {
	case -1:
		return StatusBehind
	case 1:
		return StatusAhead
	default:
		return StatusEquivalent
	}
}
