//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "pos-api"
	ConsumerName = "pos-terminal"

	StateEmployeeExists = "employee sam exists"
	StateCatalogSeeded  = "catalog holds a burger"
	StateMirrorsHealthy = "mirrors are in sync"
)

const (
	EmployeeUsername = "sam"
	EmployeePassword = "pact-pass"
	WrongPassword    = "not-the-password"

	ItemID        = "burger"
	ItemName      = "Burger"
	ItemUnitPrice = "8.50"
	ItemCategory  = "main"

	// ExampleToken is replaced by the provider with a real token before each request.
	ExampleToken = "Bearer pact-example-token"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the terminal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleItemPayload is the catalog entry the consumer expects to see.
func ExampleItemPayload() map[string]any {
	return map[string]any{
		"id":        ItemID,
		"name":      ItemName,
		"unitPrice": ItemUnitPrice,
		"category":  ItemCategory,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
