package service

import (
	"errors"
	"testing"

	"cyberguard/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDerivePriority(t *testing.T) {
	cases := []struct {
		severity models.ThreatSeverity
		want     models.ThreatPriority
	}{
		{models.SeverityCritical, models.PriorityP1},
		{models.SeverityHigh, models.PriorityP2},
		{models.SeverityMedium, models.PriorityP3},
		{models.SeverityLow, models.PriorityP4},
		{models.SeverityInfo, models.PriorityP4},
		{models.ThreatSeverity("bogus"), models.PriorityP4},
	}

	for _, tc := range cases {
		if got := DerivePriority(tc.severity); got != tc.want {
			t.Errorf("DerivePriority(%q) = %q, want %q", tc.severity, got, tc.want)
		}
	}
}

func TestCheckTransition(t *testing.T) {
	t.Run("allowed transitions", func(t *testing.T) {
		cases := []struct{ from, to models.ThreatStatus }{
			{models.StatusDetected, models.StatusInvestigating},
			{models.StatusDetected, models.StatusResolved},
			{models.StatusDetected, models.StatusFalsePositive},
			{models.StatusInvestigating, models.StatusContained},
			{models.StatusContained, models.StatusEscalated},
			{models.StatusEscalated, models.StatusResolved},
		}
		for _, tc := range cases {
			reopen, err := checkTransition(tc.from, tc.to)
			if err != nil {
				t.Errorf("checkTransition(%q, %q) unexpected error: %v", tc.from, tc.to, err)
			}
			if reopen {
				t.Errorf("checkTransition(%q, %q) flagged reopen", tc.from, tc.to)
			}
		}
	})

	t.Run("rejected transitions", func(t *testing.T) {
		cases := []struct{ from, to models.ThreatStatus }{
			{models.StatusContained, models.StatusFalsePositive},
			{models.StatusEscalated, models.StatusFalsePositive},
		}
		for _, tc := range cases {
			if _, err := checkTransition(tc.from, tc.to); err == nil {
				t.Errorf("checkTransition(%q, %q) expected error", tc.from, tc.to)
			}
		}
	})

	t.Run("unknown target status", func(t *testing.T) {
		_, err := checkTransition(models.StatusDetected, models.ThreatStatus("exploded"))
		if !errors.Is(err, ErrValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("leaving terminal status is a reopen", func(t *testing.T) {
		for _, from := range []models.ThreatStatus{models.StatusResolved, models.StatusFalsePositive} {
			reopen, err := checkTransition(from, models.StatusInvestigating)
			if err != nil {
				t.Errorf("checkTransition(%q, investigating) unexpected error: %v", from, err)
			}
			if !reopen {
				t.Errorf("checkTransition(%q, investigating) should flag reopen", from)
			}
		}
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		reopen, err := checkTransition(models.StatusResolved, models.StatusResolved)
		if err != nil || reopen {
			t.Errorf("expected no-op, got reopen=%v err=%v", reopen, err)
		}
	})
}

func TestDedupeKey(t *testing.T) {
	orgA := primitive.NewObjectID()
	orgB := primitive.NewObjectID()

	t.Run("stable for identical inputs", func(t *testing.T) {
		a := DedupeKey(orgA, models.ThreatTypePhishing, "10.0.0.1", "Suspicious login")
		b := DedupeKey(orgA, models.ThreatTypePhishing, "10.0.0.1", "Suspicious login")
		if a != b {
			t.Errorf("keys differ for identical inputs: %s vs %s", a, b)
		}
	})

	t.Run("differs across organizations", func(t *testing.T) {
		a := DedupeKey(orgA, models.ThreatTypePhishing, "10.0.0.1", "Suspicious login")
		b := DedupeKey(orgB, models.ThreatTypePhishing, "10.0.0.1", "Suspicious login")
		if a == b {
			t.Error("keys collide across organizations")
		}
	})

	t.Run("differs across fields", func(t *testing.T) {
		base := DedupeKey(orgA, models.ThreatTypePhishing, "10.0.0.1", "Suspicious login")
		variants := []string{
			DedupeKey(orgA, models.ThreatTypeMalware, "10.0.0.1", "Suspicious login"),
			DedupeKey(orgA, models.ThreatTypePhishing, "10.0.0.2", "Suspicious login"),
			DedupeKey(orgA, models.ThreatTypePhishing, "10.0.0.1", "Another title"),
		}
		for i, v := range variants {
			if v == base {
				t.Errorf("variant %d collides with base key", i)
			}
		}
	})

	t.Run("fixed width hex", func(t *testing.T) {
		key := DedupeKey(orgA, models.ThreatTypeDDoS, "", "")
		if len(key) != 16 {
			t.Errorf("expected 16 hex chars, got %d (%s)", len(key), key)
		}
	})
}
