package service

import (
	"reflect"
	"testing"
)

func TestEvaluateCompliance(t *testing.T) {
	t.Run("all rules pass", func(t *testing.T) {
		snapshot := evaluateCompliance(complianceInputs{SecurityTrainings: 2})
		if snapshot.Compliance != 100 {
			t.Errorf("expected 100, got %d", snapshot.Compliance)
		}
		want := []string{
			"All critical assets have antivirus and firewall enabled.",
			"No unresolved critical or high threats.",
			"All assets have a recent security scan.",
			"All assets are categorized.",
			"At least one employee security training completed.",
		}
		if !reflect.DeepEqual(snapshot.Requirements, want) {
			t.Errorf("unexpected requirements: %v", snapshot.Requirements)
		}
	})

	t.Run("all rules fail", func(t *testing.T) {
		snapshot := evaluateCompliance(complianceInputs{
			UnsecuredCriticalAssets: 1,
			UnresolvedSevereThreats: 2,
			AssetsMissingRecentScan: 3,
			UncategorizedAssets:     4,
			SecurityTrainings:       0,
		})
		if snapshot.Compliance != 0 {
			t.Errorf("expected 0, got %d", snapshot.Compliance)
		}
		want := []string{
			"Some critical assets are missing antivirus or firewall.",
			"Resolve all critical or high threats.",
			"Some assets are missing a recent security scan.",
			"Some assets are not categorized.",
			"No employee security training completed.",
		}
		if !reflect.DeepEqual(snapshot.Requirements, want) {
			t.Errorf("unexpected requirements: %v", snapshot.Requirements)
		}
	})

	t.Run("rules are independent", func(t *testing.T) {
		// Only the threats rule fails; the other four still pass.
		snapshot := evaluateCompliance(complianceInputs{
			UnresolvedSevereThreats: 1,
			SecurityTrainings:       1,
		})
		if snapshot.Compliance != 80 {
			t.Errorf("expected 80, got %d", snapshot.Compliance)
		}
		if len(snapshot.Requirements) != 5 {
			t.Fatalf("expected 5 requirements, got %d", len(snapshot.Requirements))
		}
		if snapshot.Requirements[1] != "Resolve all critical or high threats." {
			t.Errorf("unexpected second requirement: %q", snapshot.Requirements[1])
		}
	})

	t.Run("percentage rounds", func(t *testing.T) {
		// 3 of 5 met = 60, 2 of 5 met = 40
		snapshot := evaluateCompliance(complianceInputs{
			UnsecuredCriticalAssets: 1,
			UncategorizedAssets:     1,
			SecurityTrainings:       1,
		})
		if snapshot.Compliance != 60 {
			t.Errorf("expected 60, got %d", snapshot.Compliance)
		}
	})

	t.Run("no critical assets satisfies the controls rule", func(t *testing.T) {
		snapshot := evaluateCompliance(complianceInputs{SecurityTrainings: 1})
		if snapshot.Requirements[0] != "All critical assets have antivirus and firewall enabled." {
			t.Errorf("vacuous pass not honored: %q", snapshot.Requirements[0])
		}
	})
}
