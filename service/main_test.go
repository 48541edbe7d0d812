package service

import (
	"os"
	"testing"
)

func TestMain(m *testing.M) {
	// Config validation is relaxed in the test environment
	os.Setenv("ENVIRONMENT", "test")
	os.Exit(m.Run())
}
