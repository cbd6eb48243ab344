// internal/core/domain/decision_test.go
package domain_test

import (
	"testing"

	"surfacex/internal/core/domain"
	"surfacex/internal/testutil"
)

func TestDecision_Constructors(t *testing.T) {
	testutil.AssertEqual(t, domain.Add().Kind, domain.DecisionAdd, "add kind")
	testutil.AssertEqual(t, domain.Skip().Kind, domain.DecisionSkip, "skip kind")

	partly := domain.Partly([]string{"a", "b"})
	testutil.AssertEqual(t, partly.Kind, domain.DecisionPartly, "partly kind")
	testutil.AssertLen(t, partly.Accepted, 2, "partly accepted")
}

func TestDecision_ValidateAgainst(t *testing.T) {
	group := func(count int, items ...string) *domain.DiscoveryGroup {
		return &domain.DiscoveryGroup{
			ID:          "1",
			SearchField: "subdomains",
			Type:        domain.EntityTypeDomain,
			Count:       count,
			Items:       items,
		}
	}

	tests := []struct {
		name        string
		decision    domain.Decision
		group       *domain.DiscoveryGroup
		shouldError bool
	}{
		{
			name:        "add is always valid",
			decision:    domain.Add(),
			group:       group(50000, "a.example.com"),
			shouldError: false,
		},
		{
			name:        "skip is always valid",
			decision:    domain.Skip(),
			group:       group(3, "a.example.com"),
			shouldError: false,
		},
		{
			name:        "partly under the threshold",
			decision:    domain.Partly([]string{"a.example.com"}),
			group:       group(19, "a.example.com", "b.example.com"),
			shouldError: false,
		},
		{
			name:        "partly at the threshold is rejected",
			decision:    domain.Partly([]string{"a.example.com"}),
			group:       group(20, "a.example.com", "b.example.com"),
			shouldError: true,
		},
		{
			name:        "partly above the threshold is rejected",
			decision:    domain.Partly([]string{"a.example.com"}),
			group:       group(12000, "a.example.com"),
			shouldError: true,
		},
		{
			name:        "partly with a foreign value is rejected",
			decision:    domain.Partly([]string{"evil.example.org"}),
			group:       group(19, "a.example.com", "b.example.com"),
			shouldError: true,
		},
		{
			name:        "unresolved partly defers the subset check",
			decision:    domain.Partly(nil),
			group:       group(12, "a.example.com"),
			shouldError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.decision.ValidateAgainst(tt.group)
			if tt.shouldError {
				testutil.AssertError(t, err, "validation should fail")
				testutil.AssertTrue(t, domain.IsContractViolation(err), "should be a contract violation")
			} else {
				testutil.AssertNoError(t, err, "validation should pass")
			}
		})
	}
}

func TestDecision_AcceptedValues_PreservesGroupOrder(t *testing.T) {
	group := &domain.DiscoveryGroup{
		ID:    "1",
		Count: 5,
		Items: []string{"x1", "x2", "x3", "x4", "x5"},
	}

	decision := domain.Partly([]string{"x3", "x1"})
	values := decision.AcceptedValues(group)

	testutil.AssertLen(t, values, 2, "accepted values")
	testutil.AssertEqual(t, values[0], "x1", "first value follows group order")
	testutil.AssertEqual(t, values[1], "x3", "second value follows group order")
}
