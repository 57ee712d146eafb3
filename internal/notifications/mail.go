package notifications

import (
	"fmt"
	"log"

	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/repository"
	gomail "github.com/wneessen/go-mail"
)

// MailSender delivers events as email to the recipient team member's address.
type MailSender struct {
	client  *gomail.Client
	from    string
	members repository.TeamMemberRepository
}

// NewMailSender builds a sender over an SMTP client. host may be empty only while
// constructing for tests; use NewMailClient for production wiring.
func NewMailSender(client *gomail.Client, from string, members repository.TeamMemberRepository) *MailSender {
	return &MailSender{client: client, from: from, members: members}
}

// NewMailClient creates the SMTP client from configuration.
func NewMailClient(host string, port int, user, password string) (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(user),
		gomail.WithPassword(password),
	}
	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}
	return client, nil
}

func (s *MailSender) Send(event Event) error {
	member, err := s.members.FindByID(event.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient %d: %w", event.RecipientID, err)
	}
	if member.Email == "" {
		return nil
	}

	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(member.Email); err != nil {
		return fmt.Errorf("invalid recipient address %q: %w", member.Email, err)
	}
	msg.Subject(event.Title)
	msg.SetBodyString(gomail.TypeTextPlain, event.Body)

	return s.client.DialAndSend(msg)
}

// LogSender writes events to the process log; the default adapter when no SMTP
// host is configured.
type LogSender struct{}

func (LogSender) Send(event Event) error {
	log.Printf("notify member=%d category=%s title=%q", event.RecipientID, event.Category, event.Title)
	return nil
}

var _ Sender = (*MailSender)(nil)
var _ Sender = LogSender{}

// Titles and bodies for the standard event categories.
func InviteSentEvent(orgID, recipientID, shiftID uint64) Event {
	return Event{
		OrganizationID: orgID,
		RecipientID:    recipientID,
		Category:       models.NotificationInviteSent,
		Title:          "You have been offered a shift",
		Body:           "A shift is available for you to accept. First to accept wins the slot.",
		Data:           models.JSON{"shift_id": shiftID},
	}
}

func InviteAcceptedEvent(orgID, recipientID, shiftID uint64) Event {
	return Event{
		OrganizationID: orgID,
		RecipientID:    recipientID,
		Category:       models.NotificationInviteAccepted,
		Title:          "Shift invite accepted",
		Body:           "The shift slot has been filled.",
		Data:           models.JSON{"shift_id": shiftID},
	}
}

func ShiftAssignedEvent(orgID, recipientID, shiftID uint64) Event {
	return Event{
		OrganizationID: orgID,
		RecipientID:    recipientID,
		Category:       models.NotificationShiftAssigned,
		Title:          "You have been assigned a shift",
		Body:           "A manager has added you to a shift.",
		Data:           models.JSON{"shift_id": shiftID},
	}
}

func HierarchyChangedEvent(orgID, recipientID uint64, newLevel models.HierarchyLevel) Event {
	return Event{
		OrganizationID: orgID,
		RecipientID:    recipientID,
		Category:       models.NotificationHierarchyChanged,
		Title:          "Your role level has changed",
		Body:           fmt.Sprintf("Your hierarchy level is now %s.", newLevel),
		Data:           models.JSON{"level": string(newLevel)},
	}
}

func TimeSubmittedEvent(orgID, recipientID, recordID uint64) Event {
	return Event{
		OrganizationID: orgID,
		RecipientID:    recipientID,
		Category:       models.NotificationTimeSubmitted,
		Title:          "Timekeeping record submitted",
		Body:           "A clock-out was recorded and awaits review.",
		Data:           models.JSON{"record_id": recordID},
	}
}

func TimeReviewedEvent(orgID, recipientID, recordID uint64, status models.TimekeepingStatus) Event {
	return Event{
		OrganizationID: orgID,
		RecipientID:    recipientID,
		Category:       models.NotificationTimeReviewed,
		Title:          "Timekeeping record reviewed",
		Body:           fmt.Sprintf("Your timekeeping record was %s.", status),
		Data:           models.JSON{"record_id": recordID, "status": string(status)},
	}
}
