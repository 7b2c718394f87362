package risk

import (
	"math"

	"cyberguard/models"
)

// Risk level score bands
const (
	levelCriticalMin = 80
	levelHighMin     = 60
	levelMediumMin   = 40
)

// Score computes the overall risk score for an asset from its four risk
// factors, its protective controls and its open vulnerabilities. The result
// is clamped to [0,100]. The function is pure: identical inputs always yield
// the identical score.
//
// base = mean of the four factors; each enabled control compounds a small
// multiplicative discount; each open critical vulnerability adds 10 and each
// open high vulnerability adds 5.
func Score(factors models.RiskFactors, posture models.SecurityPosture) int {
	base := float64(factors.Exposure+factors.Vulnerability+factors.Threat+factors.Impact) / 4

	multiplier := 1.0
	if posture.EncryptionStatus == models.EncryptionEncrypted {
		multiplier *= 0.90
	}
	if posture.AntivirusInstalled {
		multiplier *= 0.95
	}
	if posture.FirewallEnabled {
		multiplier *= 0.95
	}

	criticalOpen, highOpen := 0, 0
	for _, v := range posture.Vulnerabilities {
		if v.Status == models.VulnStatusResolved || v.Status == models.VulnStatusFalsePositive {
			continue
		}
		switch v.Severity {
		case "critical":
			criticalOpen++
		case "high":
			highOpen++
		}
	}
	penalty := float64(criticalOpen*10 + highOpen*5)

	score := base*multiplier + penalty
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return int(math.Round(score))
}

// Level classifies a score into a risk level. Derived on read, never
// persisted.
func Level(score int) string {
	switch {
	case score >= levelCriticalMin:
		return "critical"
	case score >= levelHighMin:
		return "high"
	case score >= levelMediumMin:
		return "medium"
	default:
		return "low"
	}
}
