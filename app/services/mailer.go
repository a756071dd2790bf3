package services

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/smtp"
	"strings"

	"github.com/Rakhulsr/storefront/app/models"
	"github.com/Rakhulsr/storefront/app/repositories"
	"github.com/Rakhulsr/storefront/app/utils/format"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type Mailer struct {
	config Config
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg Config) *Mailer {
	return &Mailer{
		config: cfg,
		send:   smtp.SendMail,
	}
}

func (m *Mailer) SendHTMLEmail(to, subject, htmlBody string) error {
	headers := [][2]string{
		{"From", m.config.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=\"UTF-8\""},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n" + htmlBody)

	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	addr := fmt.Sprintf("%s:%s", m.config.Host, m.config.Port)

	if err := m.send(addr, auth, m.config.From, []string{to}, []byte(msg.String())); err != nil {
		log.Printf("Mailer: failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// MailNotifier emails the customer and the store admin. Sending happens on a
// separate goroutine.
type MailNotifier struct {
	mailer     *Mailer
	userRepo   repositories.UserRepository
	adminEmail string
	async      bool
}

func NewMailNotifier(mailer *Mailer, userRepo repositories.UserRepository, adminEmail string) *MailNotifier {
	return &MailNotifier{mailer: mailer, userRepo: userRepo, adminEmail: adminEmail, async: true}
}

func (n *MailNotifier) Notify(ctx context.Context, event OrderEvent, order *models.Order) {
	var to, subject, body string

	user, err := n.userRepo.FindByID(ctx, order.UserID)
	if err != nil || user == nil {
		log.Printf("WARNING: MailNotifier: no user %s for order %d: %v", order.UserID, order.ID, err)
	}

	switch event {
	case EventOrderCreated:
		if n.adminEmail == "" {
			return
		}
		to = n.adminEmail
		subject = fmt.Sprintf("New order #%d", order.ID)
		body = BuildAdminOrderEmailBody(order)
	case EventOrderPaid:
		if user == nil {
			return
		}
		to = user.Email
		subject = fmt.Sprintf("Order #%d confirmed", order.ID)
		body = BuildOrderConfirmationEmailBody(user.FullName, order)
	case EventOrderShipped:
		if user == nil {
			return
		}
		to = user.Email
		subject = fmt.Sprintf("Order #%d is on its way", order.ID)
		body = BuildShippingEmailBody(user.FullName, order)
	default:
		return
	}

	send := func() {
		if err := n.mailer.SendHTMLEmail(to, subject, body); err != nil {
			log.Printf("ERROR: MailNotifier: %s email for order %d: %v", event, order.ID, err)
		}
	}
	if n.async {
		go send()
		return
	}
	send()
}

func itemRows(order *models.Order) string {
	var rows strings.Builder
	for _, item := range order.OrderItems {
		rows.WriteString(fmt.Sprintf(
			"<tr><td>%s</td><td>%d</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(item.ProductName), item.Quantity,
			format.Money(item.UnitPrice), format.Money(item.Subtotal),
		))
	}
	return rows.String()
}

func BuildOrderConfirmationEmailBody(name string, order *models.Order) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Thank you for your order, %s!</h2>
  <p>Your payment for order <strong>#%d</strong> was received.</p>
  <table cellpadding="6" border="1" style="border-collapse: collapse;">
    <tr><th>Product</th><th>Qty</th><th>Price</th><th>Subtotal</th></tr>
    %s
  </table>
  <p>Discount: %s<br>Shipping: %s<br><strong>Total: %s</strong></p>
</body>
</html>`,
		html.EscapeString(name), order.ID, itemRows(order),
		format.Money(order.DiscountTotal), format.Money(order.ShippingCost), format.Money(order.Total))
}

func BuildAdminOrderEmailBody(order *models.Order) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>New order #%d</h2>
  <p>Customer: %s<br>Payment method: %s<br>Items: %d<br>Total: %s</p>
  <table cellpadding="6" border="1" style="border-collapse: collapse;">
    <tr><th>Product</th><th>Qty</th><th>Price</th><th>Subtotal</th></tr>
    %s
  </table>
</body>
</html>`,
		order.ID, html.EscapeString(order.UserID), html.EscapeString(order.PaymentMethod),
		order.ItemCount(), format.Money(order.Total), itemRows(order))
}

func BuildShippingEmailBody(name string, order *models.Order) string {
	tracking := "not available yet"
	if order.TrackingNumber != "" {
		tracking = html.EscapeString(order.TrackingNumber)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Good news, %s!</h2>
  <p>Order <strong>#%d</strong> has shipped.</p>
  <p>Tracking number: %s</p>
</body>
</html>`, html.EscapeString(name), order.ID, tracking)
}
