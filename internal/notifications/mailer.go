package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/alugafacil/alugafacil-backend/pkg/config"
	"github.com/alugafacil/alugafacil-backend/pkg/db/models"
	"github.com/alugafacil/alugafacil-backend/pkg/logger"
)

const dateLayout = "02/01/2006"

// UserReader resolves recipient profiles for outgoing mail.
type UserReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// PropertyReader resolves listing details for outgoing mail.
type PropertyReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

type emailSender interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// Mailer sends transactional email through SendGrid. Failures are logged
// and swallowed: mail is a courtesy, never part of a booking's outcome.
type Mailer struct {
	sender     emailSender
	users      UserReader
	properties PropertyReader
	fromEmail  string
	fromName   string
	logger     *logger.Logger
}

// MailerParams groups dependencies for the mailer.
type MailerParams struct {
	Config     config.SendgridConfig
	Users      UserReader
	Properties PropertyReader
	Logger     *logger.Logger
	// Sender overrides the SendGrid client in tests.
	Sender emailSender
}

// NewMailer builds a mailer. With no API key configured it becomes a
// no-op that only logs.
func NewMailer(params MailerParams) *Mailer {
	sender := params.Sender
	if sender == nil && params.Config.APIKey != "" {
		sender = sendgrid.NewSendClient(params.Config.APIKey)
	}
	return &Mailer{
		sender:     sender,
		users:      params.Users,
		properties: params.Properties,
		fromEmail:  params.Config.DefaultFrom,
		fromName:   params.Config.FromName,
		logger:     params.Logger,
	}
}

// BookingConfirmed emails the renter after a payment approval confirmed
// their booking.
func (m *Mailer) BookingConfirmed(ctx context.Context, booking *models.Booking, transaction *models.PaymentTransaction) {
	if m.sender == nil {
		m.logger.Info(ctx, "mail disabled, skipping booking confirmation")
		return
	}

	renter, err := m.users.FindByID(ctx, booking.RenterID)
	if err != nil {
		m.logger.Warn(ctx, "booking confirmation skipped, renter lookup failed")
		return
	}
	property, err := m.properties.FindByID(ctx, booking.PropertyID)
	if err != nil {
		m.logger.Warn(ctx, "booking confirmation skipped, property lookup failed")
		return
	}

	subject := fmt.Sprintf("Reserva confirmada: %s", property.Title)
	plain := fmt.Sprintf(
		"Olá %s,\n\nSua reserva em %s foi confirmada.\n\n"+
			"Endereço: %s\nCheck-in: %s\nCheck-out: %s\nDiárias/unidades: %d\n"+
			"Total pago: R$ %d (%s)\n\nBoa estadia!\nEquipe AlugaFacil",
		renter.Name,
		property.Title,
		property.AddressText,
		booking.CheckInDate.Format(dateLayout),
		booking.CheckOutDate.Format(dateLayout),
		booking.Units,
		booking.TotalPaidByRenter,
		transaction.PaymentMethod,
	)

	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(renter.Name, renter.Email)
	message := mail.NewSingleEmail(from, subject, to, plain, "")

	response, err := m.sender.Send(message)
	if err != nil {
		m.logger.Warn(ctx, "booking confirmation email failed")
		return
	}
	if response.StatusCode >= 400 {
		ctx = m.logger.WithField(ctx, "status_code", response.StatusCode)
		m.logger.Warn(ctx, "sendgrid rejected booking confirmation")
		return
	}
	m.logger.Info(ctx, "booking confirmation email sent")
}
