package review

import (
	"testing"

	"github.com/clinicpulse/clinicpulse_backend/internal/model"
)

func intp(v int) *int { return &v }

func TestReduceStats_SentimentBuckets(t *testing.T) {
	reviews := []model.Review{
		{Status: model.ReviewStatusReceived, Rating: intp(5)},
		{Status: model.ReviewStatusReceived, Rating: intp(4)},
		{Status: model.ReviewStatusReceived, Rating: intp(3)},
		{Status: model.ReviewStatusReceived, Rating: intp(2)},
		{Status: model.ReviewStatusReceived, Rating: intp(1)},
		{Status: model.ReviewStatusPending},
		{Status: model.ReviewStatusSkipped},
	}

	stats := reduceStats(reviews)

	if stats.Total != 7 {
		t.Errorf("Total = %d, want 7", stats.Total)
	}
	if stats.Positive != 2 {
		t.Errorf("Positive = %d, want 2", stats.Positive)
	}
	if stats.Neutral != 1 {
		t.Errorf("Neutral = %d, want 1", stats.Neutral)
	}
	if stats.Negative != 2 {
		t.Errorf("Negative = %d, want 2", stats.Negative)
	}
	if stats.AverageRating != 3.0 {
		t.Errorf("AverageRating = %v, want 3.0", stats.AverageRating)
	}
	if stats.ByStatus[model.ReviewStatusReceived] != 5 {
		t.Errorf("ByStatus[received] = %d, want 5", stats.ByStatus[model.ReviewStatusReceived])
	}
	if stats.ByStatus[model.ReviewStatusPending] != 1 {
		t.Errorf("ByStatus[pending] = %d, want 1", stats.ByStatus[model.ReviewStatusPending])
	}
}

func TestReduceStats_Empty(t *testing.T) {
	stats := reduceStats(nil)
	if stats.Total != 0 || stats.AverageRating != 0 {
		t.Errorf("empty stats = %+v, want zeros", stats)
	}
}
