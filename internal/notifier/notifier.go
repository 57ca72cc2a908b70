// Package notifier sends due-date reminders for unpaid expenses.
// Reminders fire only when the due date is exactly one day away;
// overdue invoices get no further mail.
package notifier

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/kamdem/boutique-service/internal/repository"
)

// DueStore lists the expenses due on a given day. Implemented by
// *repository.Repository.
type DueStore interface {
	ListExpensesDueOn(ctx context.Context, day time.Time) ([]repository.DueReminder, error)
}

// Mailer delivers a single reminder.
type Mailer interface {
	SendDueReminder(to, motif string, amount float64, dueDate time.Time) error
}

// Notifier runs the daily reminder scan.
type Notifier struct {
	store  DueStore
	mailer Mailer
	log    *logrus.Logger
	cron   *cron.Cron
}

// New creates a notifier delivering through the given mailer.
func New(store DueStore, mailer Mailer, log *logrus.Logger) *Notifier {
	return &Notifier{
		store:  store,
		mailer: mailer,
		log:    log,
	}
}

// Start schedules the scan. Returns an error only when the cron spec
// is invalid.
func (n *Notifier) Start(schedule string) error {
	n.cron = cron.New()
	if _, err := n.cron.AddFunc(schedule, n.Run); err != nil {
		return err
	}
	n.cron.Start()
	n.log.Infof("Due-date reminder scheduler started: %s", schedule)
	return nil
}

// Stop halts the scheduler.
func (n *Notifier) Stop() {
	if n.cron != nil {
		n.cron.Stop()
	}
}

// Run performs one scan for expenses due tomorrow and mails one
// reminder per expense. Best effort: failures are logged, never
// propagated.
func (n *Notifier) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tomorrow := time.Now().AddDate(0, 0, 1)
	reminders, err := n.store.ListExpensesDueOn(ctx, tomorrow)
	if err != nil {
		n.log.Errorf("Reminder scan failed: %v", err)
		return
	}

	for _, rem := range reminders {
		if err := n.mailer.SendDueReminder(rem.Email, rem.Motif, rem.Amount, rem.DueDate); err != nil {
			n.log.Errorf("Failed to send reminder to %s: %v", rem.Email, err)
			continue
		}
	}
	if len(reminders) > 0 {
		n.log.Infof("Sent %d due-date reminder(s)", len(reminders))
	}
}
