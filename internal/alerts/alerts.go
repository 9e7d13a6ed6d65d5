// Package alerts recomputes every user's projection on a schedule and emails
// the ones whose horizon contains danger days.
package alerts

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/cofrinho/cashflow-service/internal/config"
	"github.com/cofrinho/cashflow-service/internal/engine"
	"github.com/cofrinho/cashflow-service/internal/models"
	"github.com/cofrinho/cashflow-service/internal/repository"
	"github.com/cofrinho/cashflow-service/internal/service"
	"github.com/cofrinho/cashflow-service/internal/utils/money"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending alert emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{cfg: cfg, logger: logger}
}

// SendDangerAlert warns a user about upcoming negative-balance days.
func (s *Sender) SendDangerAlert(to, username string, ranges []engine.DangerRange, summary engine.ScenarioSummary) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Upcoming Negative Balance Warning"

	body := fmt.Sprintf("Dear %s,\n\n", username)
	body += "Your cashflow projection shows days where your balance goes negative:\n\n"
	for _, r := range ranges {
		if r.Start.Equal(r.End) {
			body += fmt.Sprintf("  - %s (%s scenario)\n", r.Start, r.Scenario)
		} else {
			body += fmt.Sprintf("  - %s to %s (%s scenario)\n", r.Start, r.End, r.Scenario)
		}
	}
	body += fmt.Sprintf(
		"\nLowest projected balance: %s on %s.\n"+
			"Consider moving an expense or adding funds before then.\n",
		money.Format(summary.MinBalance), summary.MinBalanceDate,
	)
	body += "\nBest regards,\nCofrinho"
	e.Text = []byte(body)

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("failed to send alert to %s: %w", to, err)
	}
	s.logger.Infof("Danger alert sent to %s", to)
	return nil
}

// Notifier drives the scheduled recomputation.
type Notifier struct {
	repo   *repository.Repository
	svc    *service.Service
	sender *Sender
	cfg    *config.Config
	logger *logrus.Logger
}

// NewNotifier creates a new notifier
func NewNotifier(repo *repository.Repository, svc *service.Service, sender *Sender, cfg *config.Config, logger *logrus.Logger) *Notifier {
	return &Notifier{repo: repo, svc: svc, sender: sender, cfg: cfg, logger: logger}
}

// Run recomputes projections for all users and alerts the endangered ones.
// One user's failure never blocks the rest.
func (n *Notifier) Run() {
	started := time.Now()
	users, err := n.repo.ListUsers()
	if err != nil {
		n.logger.Errorf("Alert run aborted: %v", err)
		return
	}

	var alerted int
	for _, u := range users {
		if err := n.notifyUser(u); err != nil {
			n.logger.WithFields(logrus.Fields{"user": u.ID}).Errorf("Alert failed: %v", err)
			continue
		}
		alerted++
	}
	n.logger.WithFields(logrus.Fields{
		"users":    len(users),
		"duration": time.Since(started).String(),
	}).Infof("Alert run finished, %d users processed", alerted)
}

func (n *Notifier) notifyUser(u models.User) error {
	out, err := n.svc.BuildProjectionForUser(u.ID, n.cfg.AlertHorizon, nil)
	if err != nil {
		return err
	}
	if len(out.DangerRanges) == 0 {
		return nil
	}
	return n.sender.SendDangerAlert(u.Email, u.Username, out.DangerRanges, out.PessimisticSummary)
}
