package buildinfo

import "github.com/Masterminds/semver/v3"

// IsPrerelease reports whether Version() resolves to a tagged prerelease
// (e.g. "v1.2.0-rc1"). Dev and unknown builds are never prereleases.
func IsPrerelease() bool {
	v, err := semver.NewVersion(Version())
	if err != nil {
		return false
	}
	return v.Prerelease() != ""
}

// SatisfiesMinimum reports whether the running build's tagged version
// meets constraint (e.g. ">= 1.2.0"). Dev/unknown builds always satisfy,
// since they're assumed to track the tip of the default branch.
func SatisfiesMinimum(constraint string) (bool, error) {
	v, err := semver.NewVersion(Version())
	if err != nil {
		return true, nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, err
	}
	return c.Check(v), nil
}
