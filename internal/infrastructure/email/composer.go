package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

type ComposerConfig struct {
	// SupportAddress receives what demandeurs do. Empty disables those emails.
	SupportAddress string
	// BaseURL prefixes links back to the web front end.
	BaseURL string
}

// Composer turns lifecycle notifications into emails. Agent actions are sent
// to the owning demandeur; demandeur actions go to the support mailbox.
type Composer struct {
	cfg        ComposerConfig
	principals ports.PrincipalRepository
	mailer     ports.Mailer
	renderer   *Renderer
	log        zerolog.Logger
}

func NewComposer(cfg ComposerConfig, principals ports.PrincipalRepository, mailer ports.Mailer, renderer *Renderer, log zerolog.Logger) *Composer {
	return &Composer{
		cfg:        cfg,
		principals: principals,
		mailer:     mailer,
		renderer:   renderer,
		log:        log,
	}
}

func (c *Composer) Deliver(ctx context.Context, n domain.Notification) (bool, error) {
	to, err := c.recipients(ctx, n)
	if err != nil {
		return false, err
	}
	if len(to) == 0 {
		c.log.Debug().Str("kind", string(n.Kind)).Str("entity_id", n.EntityID).Msg("notification has no recipient")
		return false, nil
	}

	msg, err := c.compose(n)
	if err != nil {
		return false, err
	}
	msg.To = to
	if err := c.mailer.Send(ctx, msg); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Composer) recipients(ctx context.Context, n domain.Notification) ([]string, error) {
	if n.ActorRole == domain.RoleDemandeur {
		if c.cfg.SupportAddress == "" {
			return nil, nil
		}
		return []string{c.cfg.SupportAddress}, nil
	}

	if n.DemandeurID == "" || n.DemandeurID == n.ActorID {
		return nil, nil
	}
	p, err := c.principals.FindByID(ctx, n.DemandeurID)
	if err != nil {
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}
	return []string{p.Email}, nil
}

func subject(n domain.Notification) string {
	switch n.Kind {
	case domain.EventTicketCreated:
		return fmt.Sprintf("Nouveau ticket : %s", n.Reference)
	case domain.EventTicketStatusChanged:
		return fmt.Sprintf("Ticket « %s » : statut %s", n.Reference, n.Status)
	case domain.EventTicketCommentAdded:
		return fmt.Sprintf("Nouveau message sur le ticket « %s »", n.Reference)
	case domain.EventPortabiliteCreated:
		return fmt.Sprintf("Nouvelle portabilité n°%s", n.Reference)
	case domain.EventPortabiliteStatusChanged:
		return fmt.Sprintf("Portabilité n°%s : statut %s", n.Reference, n.Status)
	case domain.EventPortabiliteCommentAdded:
		return fmt.Sprintf("Nouveau message sur la portabilité n°%s", n.Reference)
	}
	return string(n.Kind)
}

func (c *Composer) link(n domain.Notification) string {
	if c.cfg.BaseURL == "" {
		return ""
	}
	path := "tickets"
	if strings.HasPrefix(string(n.Kind), "portabilite_") {
		path = "portabilites"
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.cfg.BaseURL, "/"), path, n.EntityID)
}

func (c *Composer) compose(n domain.Notification) (ports.MailMessage, error) {
	subj := subject(n)
	link := c.link(n)

	var text strings.Builder
	text.WriteString(subj + "\n\n")
	if n.Status != "" {
		fmt.Fprintf(&text, "Statut : %s\n", n.Status)
	}
	if n.Message != "" {
		text.WriteString("\n" + n.Message + "\n")
	}
	if link != "" {
		fmt.Fprintf(&text, "\n%s\n", link)
	}

	var body strings.Builder
	fmt.Fprintf(&body, "<html>\n<body>\n<h2>%s</h2>\n", html.EscapeString(subj))
	if n.Status != "" {
		fmt.Fprintf(&body, "<p>Statut : <strong>%s</strong></p>\n", html.EscapeString(n.Status))
	}
	if n.Message != "" {
		rendered, err := c.renderer.ToHTML(n.Message)
		if err != nil {
			return ports.MailMessage{}, err
		}
		body.WriteString("<blockquote>" + rendered + "</blockquote>\n")
	}
	if link != "" {
		escaped := html.EscapeString(link)
		fmt.Fprintf(&body, "<p><a href=\"%s\">%s</a></p>\n", escaped, escaped)
	}
	body.WriteString("</body>\n</html>\n")

	return ports.MailMessage{Subject: subj, Text: text.String(), HTML: body.String()}, nil
}
