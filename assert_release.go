//go:build !fsync_debug

package fsync

const fsyncDebugBuild = false

// assertUnreachable is a no-op outside of fsync_debug builds; see
// assert_debug.go.
func assertUnreachable(string) {}
