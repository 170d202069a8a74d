package runner

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	if os.Getenv(fakeRunnerEnvVar) == "1" {
		runFakeRunner()
		os.Exit(0)
	}
	os.Exit(m.Run())
}
