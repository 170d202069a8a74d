package agent

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	if os.Getenv(fakeBrokerEnvVar) == "1" {
		runFakeBroker()
		os.Exit(0)
	}
	os.Exit(m.Run())
}
