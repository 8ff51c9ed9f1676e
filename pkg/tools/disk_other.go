//go:build !windows

package tools

// diskSpace has no implementation outside Windows; it reports the gap
// instead of failing.
func (t *Toolbox) diskSpace() (string, error) {
	return unsupportedDisk(t.goos), nil
}
