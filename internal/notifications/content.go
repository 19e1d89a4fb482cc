package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"hallbook/internal/invoices"
)

// contentRenderer turns booking facts into the subject and both bodies of an
// email. Rendering happens on the producer side so a consumer never needs the
// domain packages.
type contentRenderer struct {
	hallName  string
	templates map[NotificationType]*template.Template
}

func newContentRenderer(hallName string) *contentRenderer {
	r := &contentRenderer{
		hallName:  hallName,
		templates: make(map[NotificationType]*template.Template),
	}
	r.templates[NotificationTypeBookingReceived] = template.Must(template.New("booking_received").Parse(bookingReceivedHTML))
	r.templates[NotificationTypeBookingApproved] = template.Must(template.New("booking_approved").Parse(bookingApprovedHTML))
	r.templates[NotificationTypeDocumentsRequested] = template.Must(template.New("documents_requested").Parse(documentsRequestedHTML))
	r.templates[NotificationTypeInvoiceSent] = template.Must(template.New("invoice_sent").Parse(invoiceSentHTML))
	return r
}

const bookingReceivedHTML = `
<h2>Thanks for your booking request</h2>
<p>Hi,</p>
<p>We have received your request to book {{.HallName}} for <strong>{{.EventName}}</strong>.</p>
<p>{{.Start}} until {{.End}}</p>
<p>Estimated cost: <strong>&pound;{{.Total}}</strong> (includes the &pound;{{.Deposit}} refundable cleaning and damage deposit).</p>
<p>Your booking is provisional until the committee has reviewed it. We will be in touch shortly.</p>
<p>Best regards,<br>{{.HallName}}</p>
`

const bookingApprovedHTML = `
<h2>Your booking is confirmed</h2>
<p>Hi,</p>
<p>Good news: your booking of {{.HallName}} for <strong>{{.EventName}}</strong> on {{.Date}} has been approved.</p>
<p>A calendar entry is attached so you can add it to your diary.</p>
<p>Best regards,<br>{{.HallName}}</p>
`

const documentsRequestedHTML = `
<h2>We need a few documents from you</h2>
<p>Hi,</p>
<p>Before we can confirm your booking of {{.HallName}} for <strong>{{.EventName}}</strong>, we need copies of your public liability insurance and, if you are serving alcohol, your licence.</p>
<p>Please reply to this email with the documents attached.</p>
<p>Best regards,<br>{{.HallName}}</p>
`

const invoiceSentHTML = `
<h2>Invoice {{.Reference}}</h2>
<p>Hi,</p>
<p>Please find below your invoice from {{.HallName}}.</p>
<table border="0" cellpadding="4">
{{range .Items}}<tr><td>{{.Description}}</td><td align="right">&pound;{{.Cost}}</td></tr>
{{end}}<tr><td><strong>Total</strong></td><td align="right"><strong>&pound;{{.Total}}</strong></td></tr>
</table>
<p>Payment details are on our website. Please quote reference <strong>{{.Reference}}</strong> with your payment.</p>
<p>Best regards,<br>{{.HallName}}</p>
`

func (r *contentRenderer) bookingReceived(eventName string, start, end time.Time, total, deposit float64) (string, string, string, error) {
	data := map[string]interface{}{
		"HallName":  r.hallName,
		"EventName": eventName,
		"Start":     start.Format("Monday 2 January 2006, 15:04"),
		"End":       end.Format("15:04"),
		"Total":     fmt.Sprintf("%.2f", total),
		"Deposit":   fmt.Sprintf("%.2f", deposit),
	}

	html, err := r.execute(NotificationTypeBookingReceived, data)
	if err != nil {
		return "", "", "", err
	}

	subject := fmt.Sprintf("Booking request received - %s", eventName)
	text := fmt.Sprintf(
		"Hi,\n\nWe have received your request to book %s for %s.\n%s until %s\nEstimated cost: £%.2f (includes the £%.2f refundable cleaning and damage deposit).\n\nYour booking is provisional until the committee has reviewed it. We will be in touch shortly.\n\nBest regards,\n%s",
		r.hallName, eventName,
		data["Start"], data["End"],
		total, deposit,
		r.hallName,
	)
	return subject, html, text, nil
}

func (r *contentRenderer) bookingApproved(eventName string, start time.Time) (string, string, string, error) {
	data := map[string]interface{}{
		"HallName":  r.hallName,
		"EventName": eventName,
		"Date":      start.Format("Monday 2 January 2006"),
	}

	html, err := r.execute(NotificationTypeBookingApproved, data)
	if err != nil {
		return "", "", "", err
	}

	subject := fmt.Sprintf("Booking confirmed - %s", eventName)
	text := fmt.Sprintf(
		"Hi,\n\nGood news: your booking of %s for %s on %s has been approved.\nA calendar entry is attached so you can add it to your diary.\n\nBest regards,\n%s",
		r.hallName, eventName, data["Date"], r.hallName,
	)
	return subject, html, text, nil
}

func (r *contentRenderer) documentsRequested(eventName string) (string, string, string, error) {
	data := map[string]interface{}{
		"HallName":  r.hallName,
		"EventName": eventName,
	}

	html, err := r.execute(NotificationTypeDocumentsRequested, data)
	if err != nil {
		return "", "", "", err
	}

	subject := fmt.Sprintf("Documents needed for your booking - %s", eventName)
	text := fmt.Sprintf(
		"Hi,\n\nBefore we can confirm your booking of %s for %s, we need copies of your public liability insurance and, if you are serving alcohol, your licence.\nPlease reply to this email with the documents attached.\n\nBest regards,\n%s",
		r.hallName, eventName, r.hallName,
	)
	return subject, html, text, nil
}

func (r *contentRenderer) invoiceSent(reference string, total float64, items []invoices.LineItem) (string, string, string, error) {
	type row struct {
		Description string
		Cost        string
	}
	rows := make([]row, 0, len(items))
	for _, item := range items {
		rows = append(rows, row{Description: item.Description, Cost: fmt.Sprintf("%.2f", item.Cost)})
	}

	data := map[string]interface{}{
		"HallName":  r.hallName,
		"Reference": reference,
		"Items":     rows,
		"Total":     fmt.Sprintf("%.2f", total),
	}

	html, err := r.execute(NotificationTypeInvoiceSent, data)
	if err != nil {
		return "", "", "", err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Hi,\n\nPlease find below your invoice from %s.\n\n", r.hallName)
	for _, item := range items {
		fmt.Fprintf(&text, "  %s: £%.2f\n", item.Description, item.Cost)
	}
	fmt.Fprintf(&text, "  Total: £%.2f\n\nPayment details are on our website. Please quote reference %s with your payment.\n\nBest regards,\n%s",
		total, reference, r.hallName)

	subject := fmt.Sprintf("Invoice %s from %s", reference, r.hallName)
	return subject, html, text.String(), nil
}

func (r *contentRenderer) execute(notificationType NotificationType, data interface{}) (string, error) {
	tmpl, ok := r.templates[notificationType]
	if !ok {
		return "", fmt.Errorf("no template for notification type %s", notificationType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s template: %w", notificationType, err)
	}
	return buf.String(), nil
}
