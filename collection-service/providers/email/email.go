package email

import (
	"context"
	"fmt"

	models "github.com/museum/collection-server/collection-service/models/userdata"
	mail "github.com/xhit/go-simple-mail/v2"
)

type RecipientDirectory interface {
	Email(ctx context.Context, userId int64) (string, error)
}

// Mailer mirrors notifications to the recipient's inbox over SMTP.
type Mailer struct {
	client    *mail.SMTPClient
	from      string
	directory RecipientDirectory
}

func NewMailer(client *mail.SMTPClient, from string, directory RecipientDirectory) *Mailer {
	return &Mailer{client: client, from: from, directory: directory}
}

func (m *Mailer) NotificationEcho(ctx context.Context, userId int64, notification *models.Notification) error {
	to, err := m.directory.Email(ctx, userId)
	if err != nil {
		return fmt.Errorf("resolve recipient email: %w", err)
	}

	body := notification.Message
	if notification.Url != nil {
		body += "\n\n" + *notification.Url
	}

	msg := mail.NewMSG()
	msg.SetFrom(m.from).AddTo(to).SetSubject(notification.Title)
	msg.SetBody(mail.TextPlain, body)

	if msg.Error != nil {
		return msg.Error
	}

	return msg.Send(m.client)
}
