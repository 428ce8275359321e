package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/config"
	"github.com/mirzet-943/MarketPlatz-Notification-Helper/internal/model"
)

// EmailChannel sends the full new-listing set as an HTML email. Unlike the
// Telegram channel it has no message-length concern and renders every
// listing.
type EmailChannel struct {
	host     string
	port     int
	user     string
	password string
	from     string
	fromName string
	log      zerolog.Logger
}

// NewEmailChannel constructs the channel from SMTP config. An unconfigured
// SMTP host is allowed; Send then becomes a warn-and-skip no-op.
func NewEmailChannel(cfg *config.Config, log zerolog.Logger) *EmailChannel {
	return &EmailChannel{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.EmailFrom,
		fromName: cfg.EmailFromName,
		log:      log.With().Str("component", "email").Logger(),
	}
}

func (e *EmailChannel) Name() string { return "email" }

// Send delivers the notification to the job's email destination. Skips
// silently (info/warn log only) when the destination or SMTP host is blank.
func (e *EmailChannel) Send(ctx context.Context, job *model.MonitorJob, listings []model.Listing) error {
	if job.EmailTo == "" {
		e.log.Info().Int64("job_id", job.ID).Msg("no email destination configured, skipping")
		return nil
	}
	if e.host == "" {
		e.log.Warn().Str("to", job.EmailTo).Msg("SMTP not configured, email skipped")
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.FromFormat(e.fromName, e.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(job.EmailTo); err != nil {
		return fmt.Errorf("set to address %q: %w", job.EmailTo, err)
	}
	msg.Subject(fmt.Sprintf("New Listings Alert - %s", job.Name))
	msg.SetBodyString(mail.TypeTextHTML, buildEmailBody(job, listings))

	opts := []mail.Option{
		mail.WithPort(e.port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if e.user != "" && e.password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(e.user),
			mail.WithPassword(e.password),
		)
	}

	client, err := mail.NewClient(e.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email to %q: %w", job.EmailTo, err)
	}

	e.log.Info().Str("to", job.EmailTo).Str("job", job.Name).Msg("email notification sent")
	return nil
}
