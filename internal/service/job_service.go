package service

import (
	"fmt"
	"log"

	"tavolo/internal/repository"
	"tavolo/internal/utils"
)

type JobService struct {
	Repo *repository.JobRepository
}

func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// SendReservationReminders emails and texts every guest whose reservation
// starts within the next day and has not been reminded yet.
func (s *JobService) SendReservationReminders() error {
	log.Println("Cron Job: Checking for reservations needing a reminder...")

	targets, err := s.Repo.GetReservationsNeedingReminder()
	if err != nil {
		return fmt.Errorf("cron job: failed to get reservations needing reminder: %w", err)
	}

	if len(targets) == 0 {
		log.Println("Cron Job: No reservations need a reminder.")
		return nil
	}

	log.Printf("Cron Job: Sending %d reservation reminders.", len(targets))

	ids := make([]int, 0, len(targets))
	for _, t := range targets {
		s.sendReminder(t)
		ids = append(ids, t.ReservationID)
	}

	// Delivery failures are logged, not retried; a guest is reminded at most
	// once.
	if err := s.Repo.MarkRemindersSent(ids); err != nil {
		return fmt.Errorf("cron job: failed to mark reminders sent: %w", err)
	}

	log.Printf("Cron Job: Finished sending %d reminders.", len(ids))
	return nil
}

func (s *JobService) sendReminder(t repository.ReminderTarget) {
	loc := utils.LoadLocation(t.Timezone)
	when := t.ReservationTime.In(loc).Format("Monday, 02 Jan 2006 at 15:04")

	subject := fmt.Sprintf("Reminder: your table at %s - Code: %s", t.RestaurantName, t.Code)
	body := fmt.Sprintf(
		"Hello %s,\n\nA quick reminder about your upcoming reservation.\n\n"+
			"Restaurant: %s\n"+
			"When: %s\n"+
			"Party of %d\n"+
			"Confirmation code: %s\n\n"+
			"Need to cancel? Do it at least two hours ahead so the table can be rebooked.\n\n"+
			"See you soon,\nTavolo",
		t.GuestName, t.RestaurantName, when, t.PartySize, t.Code,
	)
	if err := SendEmailWithSendGrid(t.Email, t.GuestName, subject, body, ""); err != nil {
		log.Printf("Cron Job: reminder email for reservation %s failed: %v", t.Code, err)
	}

	sms := fmt.Sprintf("Tavolo reminder: table for %d at %s, %s. Code %s.",
		t.PartySize, t.RestaurantName, t.ReservationTime.In(loc).Format("02/01 15:04"), t.Code)
	if err := SendSMS(t.Phone, sms); err != nil {
		log.Printf("Cron Job: reminder SMS for reservation %s failed: %v", t.Code, err)
	}
}

// RefreshRestaurantRatings recomputes every restaurant's cached review
// aggregate.
func (s *JobService) RefreshRestaurantRatings() error {
	log.Println("Cron Job: Refreshing restaurant ratings...")

	if err := s.Repo.RefreshRatings(); err != nil {
		return fmt.Errorf("cron job: failed to refresh ratings: %w", err)
	}

	log.Println("Cron Job: Restaurant ratings refreshed.")
	return nil
}
