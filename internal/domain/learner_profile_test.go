package domain

import (
	"testing"
	"time"
)

func TestNewLearnerProfile(t *testing.T) {
	profile, err := NewLearnerProfile("user-1", 3000)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if profile.Rank != 3000 {
		t.Errorf("Expected rank 3000, got %d", profile.Rank)
	}

	if profile.SubscriptionTier != TierFree {
		t.Errorf("Expected tier %q, got %q", TierFree, profile.SubscriptionTier)
	}

	if profile.RetentionTarget != DefaultRetentionTarget {
		t.Errorf("Expected retention target %f, got %f", DefaultRetentionTarget, profile.RetentionTarget)
	}

	// Out-of-bounds starting ranks are clamped, not rejected.
	profile, err = NewLearnerProfile("user-1", -12)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if profile.Rank != MinRank {
		t.Errorf("Expected clamped rank %d, got %d", MinRank, profile.Rank)
	}

	_, err = NewLearnerProfile("", 100)
	if err != ErrEmptyUserID {
		t.Errorf("Expected error %v, got %v", ErrEmptyUserID, err)
	}
}

func TestClampRank(t *testing.T) {
	if got := ClampRank(MaxRank + 500); got != MaxRank {
		t.Errorf("Expected %d, got %d", MaxRank, got)
	}
	if got := ClampRank(0); got != MinRank {
		t.Errorf("Expected %d, got %d", MinRank, got)
	}
	if got := ClampRank(1234); got != 1234 {
		t.Errorf("Expected 1234, got %d", got)
	}
}

func TestSubscriptionTierPriority(t *testing.T) {
	if TierPremium.Priority() <= TierPlus.Priority() {
		t.Error("Expected premium to outrank plus")
	}
	if TierPlus.Priority() <= TierFree.Priority() {
		t.Error("Expected plus to outrank free")
	}
}

func TestIsPremium(t *testing.T) {
	now := time.Now().UTC()
	profile, _ := NewLearnerProfile("user-1", 100)

	if profile.IsPremium(now) {
		t.Error("Free profile should not be premium")
	}

	profile.SubscriptionTier = TierPremium
	if !profile.IsPremium(now) {
		t.Error("Premium profile without expiry should be premium")
	}

	expired := now.Add(-time.Hour)
	profile.SubscriptionExpiresAt = &expired
	if profile.IsPremium(now) {
		t.Error("Expired premium should not be premium")
	}
}

func TestIsIgnored(t *testing.T) {
	profile, _ := NewLearnerProfile("user-1", 100)
	profile.IgnoredWords["serendipity"] = struct{}{}

	if !profile.IsIgnored("Serendipity") {
		t.Error("Expected normalized lookup to find ignored word")
	}

	if profile.IsIgnored("other") {
		t.Error("Expected non-ignored word to report false")
	}
}

func TestLearnerProfileClone(t *testing.T) {
	profile, _ := NewLearnerProfile("user-1", 100)
	profile.InterestWeights["science"] = 0.8
	profile.IgnoredWords["the"] = struct{}{}

	clone := profile.Clone()
	clone.InterestWeights["science"] = 0.1
	delete(clone.IgnoredWords, "the")

	if profile.InterestWeights["science"] != 0.8 {
		t.Error("Clone should not share the interest-weight map")
	}
	if _, ok := profile.IgnoredWords["the"]; !ok {
		t.Error("Clone should not share the ignored-word set")
	}
}
