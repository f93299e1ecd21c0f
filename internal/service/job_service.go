package service

import (
	"fmt"
	"log"
	"time"

	"petroffparking/internal/repository"
)

type JobService struct {
	Repo *repository.JobRepository
}

func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// ExpireSubscriptions cancels active, non-renewing subscriptions whose
// validity window has ended, so the exit gate stops honoring them.
func (s *JobService) ExpireSubscriptions() error {
	log.Println("Cron Job: Checking for subscriptions to expire...")

	subscriptionIDs, err := s.Repo.GetExpiredSubscriptionIDs(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cron job: failed to get expired subscriptions: %w", err)
	}

	if len(subscriptionIDs) == 0 {
		log.Println("Cron Job: No subscriptions past their validity window.")
		return nil
	}

	log.Printf("Cron Job: Found %d subscriptions to cancel. IDs: %v", len(subscriptionIDs), subscriptionIDs)

	if err := s.Repo.CancelSubscriptions(subscriptionIDs); err != nil {
		return fmt.Errorf("cron job: failed to cancel expired subscriptions: %w", err)
	}
	return nil
}

// PurgeStalePendingPayments deletes pending ledger rows whose checkout was
// abandoned before the cutoff.
func (s *JobService) PurgeStalePendingPayments(olderThan time.Duration) error {
	log.Println("Cron Job: Checking for stale pending payments...")

	before := time.Now().UTC().Add(-olderThan)
	paymentIDs, err := s.Repo.GetStalePendingPaymentIDs(before)
	if err != nil {
		return fmt.Errorf("cron job: failed to get stale pending payments: %w", err)
	}

	if len(paymentIDs) == 0 {
		log.Println("Cron Job: No stale pending payments found.")
		return nil
	}

	if err := s.Repo.DeletePayments(paymentIDs); err != nil {
		return fmt.Errorf("cron job: failed to delete stale payments: %w", err)
	}
	return nil
}
