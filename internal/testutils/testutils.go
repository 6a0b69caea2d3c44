package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/nfrund/batepapo/internal/config"
)

// ProjectRoot walks up from the working directory to the directory holding go.mod.
func ProjectRoot(t *testing.T) string {
	t.Helper()

	path, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path
		}
		if path == filepath.Dir(path) {
			t.Fatalf("could not find project root with go.mod")
		}
		path = filepath.Dir(path)
	}
}

// SurrealConfigForTests returns a config for the surreal backend built from
// .env.test and the process environment. It skips the test in short mode or
// when no database URL is available.
func SurrealConfigForTests(t *testing.T) *config.Config {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	// .env.test is optional; values already in the environment win.
	if env, err := godotenv.Read(filepath.Join(ProjectRoot(t), ".env.test")); err == nil {
		for key, value := range env {
			if _, set := os.LookupEnv(key); !set {
				t.Setenv(key, value)
			}
		}
	}

	if os.Getenv("SURREAL_URL") == "" {
		t.Skip("SURREAL_URL not set, skipping integration test")
	}

	t.Setenv("STORE_BACKEND", config.BackendSurreal)
	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("invalid test configuration: %v", err)
	}
	return cfg
}
