package plan

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pymake-build/pymake/internal/pmerr"
)

// NeedsCompile decides whether source must be recompiled (spec.md §4.2).
// sourcePath and depPath/objectPath are absolute (or at least consistently
// rooted); header paths read from the dependency file are resolved
// relative to projectDir when not already absolute.
func NeedsCompile(projectDir, sourcePath, objectPath, depPath string, clean bool) (bool, error) {
	if clean {
		return true, nil
	}
	objInfo, err := os.Stat(objectPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, pmerr.IO(objectPath, err)
	}
	depData, err := os.ReadFile(depPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, pmerr.IO(depPath, err)
	}

	headers := ParseDepFile(depData)
	maxMtime := time.Time{}

	srcInfo, err := os.Stat(sourcePath)
	if err != nil {
		return false, pmerr.IO(sourcePath, err)
	}
	maxMtime = srcInfo.ModTime()

	for _, h := range headers {
		hp := h
		if !filepath.IsAbs(hp) {
			hp = filepath.Join(projectDir, hp)
		}
		hi, err := os.Stat(hp)
		if err != nil {
			if os.IsNotExist(err) {
				return true, nil
			}
			return false, pmerr.IO(hp, err)
		}
		if hi.ModTime().After(maxMtime) {
			maxMtime = hi.ModTime()
		}
	}

	return maxMtime.After(objInfo.ModTime()), nil
}

// NeedsRelink decides whether the link/archive step must run (spec.md
// §4.2). If any source was actually compiled this run, relink always runs.
// Otherwise it runs unless the artifact exists and postdates every input
// object and every explicitly-listed <objects> entry that exists on disk.
func NeedsRelink(artifactPath string, allSourcesSkipped bool, objectPaths, explicitObjectPaths []string) (bool, error) {
	if !allSourcesSkipped {
		return true, nil
	}

	artInfo, err := os.Stat(artifactPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, pmerr.IO(artifactPath, err)
	}

	maxInput := time.Time{}
	all := append(append([]string{}, objectPaths...), explicitObjectPaths...)
	for _, p := range all {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue // -l… flags and missing explicit objects never force relink
			}
			return false, pmerr.IO(p, err)
		}
		if info.ModTime().After(maxInput) {
			maxInput = info.ModTime()
		}
	}

	return !artInfo.ModTime().After(maxInput), nil
}
