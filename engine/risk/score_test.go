package risk

import (
	"testing"

	"cyberguard/models"
)

func TestScore(t *testing.T) {
	baseFactors := models.RiskFactors{Exposure: 80, Vulnerability: 80, Threat: 80, Impact: 80}

	t.Run("no controls no vulnerabilities", func(t *testing.T) {
		got := Score(baseFactors, models.SecurityPosture{})
		if got != 80 {
			t.Errorf("expected 80, got %d", got)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		posture := models.SecurityPosture{
			EncryptionStatus:   models.EncryptionEncrypted,
			AntivirusInstalled: true,
			Vulnerabilities: []models.AssetVulnerability{
				{Severity: "high", Status: models.VulnStatusOpen},
			},
		}
		first := Score(baseFactors, posture)
		for i := 0; i < 10; i++ {
			if got := Score(baseFactors, posture); got != first {
				t.Fatalf("score changed between runs: %d vs %d", first, got)
			}
		}
	})

	t.Run("encryption discount", func(t *testing.T) {
		posture := models.SecurityPosture{EncryptionStatus: models.EncryptionEncrypted}
		// 80 * 0.90 = 72
		if got := Score(baseFactors, posture); got != 72 {
			t.Errorf("expected 72, got %d", got)
		}
	})

	t.Run("all controls compound", func(t *testing.T) {
		posture := models.SecurityPosture{
			EncryptionStatus:   models.EncryptionEncrypted,
			AntivirusInstalled: true,
			FirewallEnabled:    true,
		}
		// 80 * 0.90 * 0.95 * 0.95 = 64.98 -> 65
		if got := Score(baseFactors, posture); got != 65 {
			t.Errorf("expected 65, got %d", got)
		}
	})

	t.Run("unknown encryption gets no discount", func(t *testing.T) {
		posture := models.SecurityPosture{EncryptionStatus: models.EncryptionUnknown}
		if got := Score(baseFactors, posture); got != 80 {
			t.Errorf("expected 80, got %d", got)
		}
	})

	t.Run("open vulnerability penalties", func(t *testing.T) {
		factors := models.RiskFactors{Exposure: 40, Vulnerability: 40, Threat: 40, Impact: 40}
		posture := models.SecurityPosture{
			Vulnerabilities: []models.AssetVulnerability{
				{Severity: "critical", Status: models.VulnStatusOpen},
				{Severity: "critical", Status: models.VulnStatusInProgress},
				{Severity: "high", Status: models.VulnStatusOpen},
			},
		}
		// 40 + 10 + 10 + 5 = 65
		if got := Score(factors, posture); got != 65 {
			t.Errorf("expected 65, got %d", got)
		}
	})

	t.Run("resolved and false positive vulnerabilities ignored", func(t *testing.T) {
		factors := models.RiskFactors{Exposure: 40, Vulnerability: 40, Threat: 40, Impact: 40}
		posture := models.SecurityPosture{
			Vulnerabilities: []models.AssetVulnerability{
				{Severity: "critical", Status: models.VulnStatusResolved},
				{Severity: "high", Status: models.VulnStatusFalsePositive},
			},
		}
		if got := Score(factors, posture); got != 40 {
			t.Errorf("expected 40, got %d", got)
		}
	})

	t.Run("medium and low vulnerabilities add nothing", func(t *testing.T) {
		factors := models.RiskFactors{Exposure: 40, Vulnerability: 40, Threat: 40, Impact: 40}
		posture := models.SecurityPosture{
			Vulnerabilities: []models.AssetVulnerability{
				{Severity: "medium", Status: models.VulnStatusOpen},
				{Severity: "low", Status: models.VulnStatusOpen},
			},
		}
		if got := Score(factors, posture); got != 40 {
			t.Errorf("expected 40, got %d", got)
		}
	})

	t.Run("clamped to 100", func(t *testing.T) {
		factors := models.RiskFactors{Exposure: 100, Vulnerability: 100, Threat: 100, Impact: 100}
		posture := models.SecurityPosture{
			Vulnerabilities: []models.AssetVulnerability{
				{Severity: "critical", Status: models.VulnStatusOpen},
				{Severity: "critical", Status: models.VulnStatusOpen},
			},
		}
		if got := Score(factors, posture); got != 100 {
			t.Errorf("expected clamp to 100, got %d", got)
		}
	})

	t.Run("zero factors stay zero", func(t *testing.T) {
		if got := Score(models.RiskFactors{}, models.SecurityPosture{}); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})
}

func TestLevel(t *testing.T) {
	cases := []struct {
		score int
		want  string
	}{
		{0, "low"},
		{39, "low"},
		{40, "medium"},
		{59, "medium"},
		{60, "high"},
		{79, "high"},
		{80, "critical"},
		{100, "critical"},
	}

	for _, tc := range cases {
		if got := Level(tc.score); got != tc.want {
			t.Errorf("Level(%d) = %q, want %q", tc.score, got, tc.want)
		}
	}
}
