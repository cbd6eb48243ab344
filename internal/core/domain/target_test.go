// internal/core/domain/target_test.go
package domain_test

import (
	"testing"

	"surfacex/internal/core/domain"
	"surfacex/internal/testutil"
)

func TestTarget_Validate(t *testing.T) {
	tests := []struct {
		name        string
		root        string
		maxNodes    int
		shouldError bool
	}{
		{
			name:     "valid domain",
			root:     "example.com",
			maxNodes: 0,
		},
		{
			name:     "valid subdomain root",
			root:     "corp.example.com",
			maxNodes: 30,
		},
		{
			name:     "uppercase gets normalized",
			root:     "Example.COM",
			maxNodes: 0,
		},
		{
			name:        "empty domain",
			root:        "",
			shouldError: true,
		},
		{
			name:        "IP address should fail",
			root:        "192.168.1.1",
			shouldError: true,
		},
		{
			name:        "invalid characters",
			root:        "not a domain",
			shouldError: true,
		},
		{
			name:        "negative budget rejected",
			root:        "example.com",
			maxNodes:    -1,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := domain.NewTarget(tt.root, tt.maxNodes)
			err := target.Validate()
			if tt.shouldError {
				testutil.AssertError(t, err, "validation should fail")
			} else {
				testutil.AssertNoError(t, err, "validation should pass")
			}
		})
	}
}

func TestTarget_Validate_NormalizesRoot(t *testing.T) {
	target := domain.NewTarget("  Example.COM. ", 0)
	testutil.AssertNoError(t, target.Validate(), "validation")
	testutil.AssertEqual(t, target.Root, "example.com", "root normalized in place")
}

func TestTarget_RegisteredRoot(t *testing.T) {
	target := domain.NewTarget("corp.example.co.uk", 0)
	testutil.AssertNoError(t, target.Validate(), "validation")
	testutil.AssertEqual(t, target.RegisteredRoot(), "example.co.uk", "eTLD+1")
}

func TestTarget_Owns(t *testing.T) {
	target := domain.NewTarget("example.com", 0)
	testutil.AssertNoError(t, target.Validate(), "validation")

	testutil.AssertTrue(t, target.Owns("example.com"), "root itself")
	testutil.AssertTrue(t, target.Owns("a.example.com"), "direct subdomain")
	testutil.AssertTrue(t, target.Owns("deep.a.example.com"), "nested subdomain")
	testutil.AssertFalse(t, target.Owns("example.org"), "different domain")
	testutil.AssertFalse(t, target.Owns("notexample.com"), "suffix collision")
}
