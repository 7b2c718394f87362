package service

import (
	"reflect"
	"testing"
)

func TestEvaluateReadiness(t *testing.T) {
	t.Run("healthy organization", func(t *testing.T) {
		snapshot := evaluateReadiness(5, 2)
		if snapshot.Readiness != 100 {
			t.Errorf("expected 100, got %d", snapshot.Readiness)
		}
		want := []string{
			"Incident response plan",
			"Employee security training",
		}
		if !reflect.DeepEqual(snapshot.Requirements, want) {
			t.Errorf("unexpected requirements: %v", snapshot.Requirements)
		}
	})

	t.Run("empty organization takes both deductions", func(t *testing.T) {
		snapshot := evaluateReadiness(0, 0)
		if snapshot.Readiness != 50 {
			t.Errorf("expected 50, got %d", snapshot.Readiness)
		}
		want := []string{
			"Add your first asset",
			"Resolve detected threats",
			"Incident response plan",
			"Employee security training",
		}
		if !reflect.DeepEqual(snapshot.Requirements, want) {
			t.Errorf("unexpected requirements: %v", snapshot.Requirements)
		}
	})

	t.Run("few assets is a smaller deduction", func(t *testing.T) {
		snapshot := evaluateReadiness(2, 1)
		if snapshot.Readiness != 90 {
			t.Errorf("expected 90, got %d", snapshot.Readiness)
		}
		if snapshot.Requirements[0] != "Add more assets to improve coverage" {
			t.Errorf("unexpected first requirement: %q", snapshot.Requirements[0])
		}
	})

	t.Run("asset deductions do not stack", func(t *testing.T) {
		// Zero assets takes only the -30 branch, never -30 and -10.
		snapshot := evaluateReadiness(0, 1)
		if snapshot.Readiness != 70 {
			t.Errorf("expected 70, got %d", snapshot.Readiness)
		}
	})

	t.Run("no resolved threats deduction", func(t *testing.T) {
		snapshot := evaluateReadiness(5, 0)
		if snapshot.Readiness != 80 {
			t.Errorf("expected 80, got %d", snapshot.Readiness)
		}
	})

	t.Run("static requirements always present", func(t *testing.T) {
		for _, snapshot := range []InsuranceSnapshot{
			evaluateReadiness(0, 0),
			evaluateReadiness(1, 0),
			evaluateReadiness(10, 10),
		} {
			n := len(snapshot.Requirements)
			if n < 2 {
				t.Fatalf("expected at least 2 requirements, got %d", n)
			}
			if snapshot.Requirements[n-2] != "Incident response plan" ||
				snapshot.Requirements[n-1] != "Employee security training" {
				t.Errorf("static requirements missing: %v", snapshot.Requirements)
			}
		}
	})
}
