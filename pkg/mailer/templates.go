package mailer

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// BookingData feeds the chat booking and session emails.
type BookingData struct {
	Service      string
	OrderID      string
	Day          string
	Start        string
	End          string
	CalendarLink string
	Continued    bool
}

// RequestData feeds the service request confirmation.
type RequestData struct {
	Service string
	OrderID string
	Amount  int64
}

type template struct {
	subject string
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

func newTemplate(subject, text, html string) template {
	return template{
		subject: subject,
		text:    texttemplate.Must(texttemplate.New(subject).Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New(subject).Parse(html)),
	}
}

func (t template) render(to string, data any) (Email, error) {
	var tb, hb bytes.Buffer
	if err := t.text.Execute(&tb, data); err != nil {
		return Email{}, err
	}
	if err := t.html.Execute(&hb, data); err != nil {
		return Email{}, err
	}
	return Email{To: to, Subject: t.subject, Text: tb.String(), HTML: hb.String()}, nil
}

var (
	bookingConfirmed = newTemplate(
		"Your chat session is booked",
		`Your {{.Service}} session ({{.OrderID}}) is {{if .Continued}}extended{{else}}confirmed{{end}}.
{{.Day}}, {{.Start}} - {{.End}}
Add to calendar: {{.CalendarLink}}
`,
		`<p>Your <b>{{.Service}}</b> session ({{.OrderID}}) is {{if .Continued}}extended{{else}}confirmed{{end}}.</p>
<p>{{.Day}}, {{.Start}} - {{.End}}</p>
<p><a href="{{.CalendarLink}}">Add to calendar</a></p>`,
	)

	requestConfirmed = newTemplate(
		"We received your payment",
		`Payment of {{.Amount}} for {{.Service}} ({{.OrderID}}) was received. A consultant will reach out shortly.
`,
		`<p>Payment of <b>{{.Amount}}</b> for {{.Service}} ({{.OrderID}}) was received.</p>
<p>A consultant will reach out shortly.</p>`,
	)

	sessionClosed = newTemplate(
		"Your chat session has ended",
		`Your {{.Service}} session ({{.OrderID}}) ended at {{.End}}. You can book a continuation from your dashboard.
`,
		`<p>Your {{.Service}} session ({{.OrderID}}) ended at {{.End}}.</p>
<p>You can book a continuation from your dashboard.</p>`,
	)

	adminNewOrder = newTemplate(
		"New paid order",
		`Order {{.OrderID}} for {{.Service}} has been paid.
`,
		`<p>Order <b>{{.OrderID}}</b> for {{.Service}} has been paid.</p>`,
	)
)

func BookingConfirmation(to string, d BookingData) (Email, error) {
	return bookingConfirmed.render(to, d)
}

func RequestConfirmation(to string, d RequestData) (Email, error) {
	return requestConfirmed.render(to, d)
}

func SessionClosed(to string, d BookingData) (Email, error) {
	return sessionClosed.render(to, d)
}

func AdminNewOrder(to string, d RequestData) (Email, error) {
	return adminNewOrder.render(to, d)
}
