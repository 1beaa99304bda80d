package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/go-faster/errors"

	"github.com/beemanhoney/shop/internal/domain/order"
)

// EmailConfig holds the SMTP delivery settings.
type EmailConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// Configured reports whether the settings are complete enough to send mail.
func (c EmailConfig) Configured() bool {
	return c.Host != "" && c.Username != "" && c.Password != "" && c.FromEmail != ""
}

// EmailDispatcher sends transactional emails for order lifecycle events.
// Only pending, shipped and delivered have a customer-facing template; other
// statuses are dropped silently.
type EmailDispatcher struct {
	cfg EmailConfig

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailDispatcher(cfg EmailConfig) *EmailDispatcher {
	return &EmailDispatcher{cfg: cfg, send: smtp.SendMail}
}

func (d *EmailDispatcher) Dispatch(_ context.Context, ev order.LifecycleEvent) error {
	if !d.cfg.Configured() {
		return errors.New("email dispatcher not configured")
	}
	if ev.UserEmail == "" {
		return errors.New("event has no recipient email")
	}

	subject, body, ok := renderTemplate(ev)
	if !ok {
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", d.cfg.FromName, d.cfg.FromEmail)
	fmt.Fprintf(&msg, "To: %s\r\n", ev.UserEmail)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", d.cfg.Host, d.cfg.Port)
	auth := smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	if err := d.send(addr, auth, d.cfg.FromEmail, []string{ev.UserEmail}, []byte(msg.String())); err != nil {
		return errors.Wrapf(err, "send %s email for order %s", ev.Status, ev.OrderID)
	}
	return nil
}

func renderTemplate(ev order.LifecycleEvent) (subject, body string, ok bool) {
	name := ev.UserName
	if name == "" {
		name = "Valued Customer"
	}

	switch ev.Status {
	case order.StatusPending:
		subject = "Order Confirmation - BeeManHoney"
		body = fmt.Sprintf(`Dear %s,

Thank you for your order! We're delighted to confirm your order has been received.

Order Details:
- Order ID: %s
- Total Amount: $%s
- Items: %d

Your order is now being processed. We'll send you another email once it ships.

Thank you for choosing BeeManHoney!

Best regards,
The BeeManHoney Team
`, name, ev.OrderID, ev.Total.StringFixed(2), ev.ItemCount)
	case order.StatusShipped:
		subject = "Your Order Has Shipped! - BeeManHoney"
		body = fmt.Sprintf(`Dear %s,

Great news! Your order has shipped.

Order Details:
- Order ID: %s

You'll receive your package soon.

Thank you for your purchase!

Best regards,
The BeeManHoney Team
`, name, ev.OrderID)
	case order.StatusDelivered:
		subject = "Your Order Has Been Delivered - BeeManHoney"
		body = fmt.Sprintf(`Dear %s,

Your order has been delivered!

Order Details:
- Order ID: %s

We hope you enjoy your purchase. If you have any questions or concerns, please don't hesitate to reach out.

Thank you for choosing BeeManHoney!

Best regards,
The BeeManHoney Team
`, name, ev.OrderID)
	default:
		return "", "", false
	}
	return subject, body, true
}
