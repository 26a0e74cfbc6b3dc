// Package testing switches the process into test mode when imported, so that
// binaries and config loading skip their runtime side effects.
package testing

import (
	"os"
	"path/filepath"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("ONCO_TEST_MODE", "1")
		if os.Getenv("ONCO_ENV_FILE") == "" {
			// keep a developer .env from leaking into tests
			_ = os.Setenv("ONCO_ENV_FILE", filepath.Join(os.TempDir(), "onco-test-absent.env"))
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain can be assigned by packages that need test mode before flags are parsed.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
