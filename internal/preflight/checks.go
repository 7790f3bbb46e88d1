package preflight

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"
)

// statfsFunc allows tests to stub filesystem stats.
type statfsFunc func(path string) (total uint64, free uint64, err error)

// CheckInputDir verifies the input root exists and can be read and searched.
func CheckInputDir(path string) Result {
	return checkDirectoryAccess("Input directory", path, unix.R_OK|unix.X_OK, "readable")
}

// CheckOutputDir verifies the output root is writable, creating it when
// absent so a first run against a fresh tree passes.
func CheckOutputDir(path string) Result {
	const name = "Output directory"
	if err := os.MkdirAll(path, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return checkDirectoryAccess(name, path, unix.W_OK|unix.X_OK, "writable")
}

// CheckScratchDir verifies the staging area used for atomic publishes.
func CheckScratchDir(path string) Result {
	return checkDirectoryAccess("Scratch directory", path, unix.W_OK|unix.X_OK, "writable")
}

func checkDirectoryAccess(name, path string, mode uint32, verb string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, verb)}
}

// checkFreeSpace enforces the configured free-space floor on the output
// filesystem.
func (c *Checker) checkFreeSpace(outputDir string) Result {
	const name = "Output free space"
	floor := uint64(c.cfg.Convert.MinFreeMiB) * 1024 * 1024
	_, free, err := c.statfs(outputDir)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", outputDir, err)}
	}
	if free < floor {
		return Result{Name: name, Detail: fmt.Sprintf("%s free, need %s", humanize.IBytes(free), humanize.IBytes(floor))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free", humanize.IBytes(free))}
}

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}
