package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// OrderLine is one purchased line as shown in confirmation email.
type OrderLine struct {
	Name     string
	Quantity uint
	Price    float64
}

func (l OrderLine) Subtotal() float64 { return l.Price * float64(l.Quantity) }

// OrderSummary carries everything the order emails need.
type OrderSummary struct {
	OrderID    uint
	Total      float64
	Items      []OrderLine
	BuyerEmail string
	BuyerPhone string
}

var orderTableTmpl = template.Must(template.New("order_table").Parse(`
<table cellspacing="0" cellpadding="0" style="border-collapse:collapse;width:100%;max-width:620px;background:#fafafa">
  <thead>
    <tr style="background:#efefef">
      <th style="text-align:left;padding:8px">Product</th>
      <th style="text-align:center;padding:8px">Qty</th>
      <th style="text-align:right;padding:8px">Price</th>
      <th style="text-align:right;padding:8px">Subtotal</th>
    </tr>
  </thead>
  <tbody>
  {{- range .Items }}
    <tr>
      <td style="padding:6px 8px;border-bottom:1px solid #eee">{{ .Name }}</td>
      <td style="text-align:center;padding:6px 8px;border-bottom:1px solid #eee">{{ .Quantity }}</td>
      <td style="text-align:right;padding:6px 8px;border-bottom:1px solid #eee">$ {{ printf "%.2f" .Price }}</td>
      <td style="text-align:right;padding:6px 8px;border-bottom:1px solid #eee"><b>$ {{ printf "%.2f" .Subtotal }}</b></td>
    </tr>
  {{- end }}
  </tbody>
</table>
<p style="margin-top:12px;font-size:16px">Total: <b>$ {{ printf "%.2f" .Total }}</b></p>`))

func renderOrderTable(sum OrderSummary) string {
	var buf bytes.Buffer
	if err := orderTableTmpl.Execute(&buf, sum); err != nil {
		return fmt.Sprintf("<!-- render error: %v -->", err)
	}
	return buf.String()
}

// WelcomeEmail builds the registration greeting.
func WelcomeEmail(to string) (subject, html, text string) {
	subject = "Welcome to Tienda F1!"
	html = fmt.Sprintf(`<div style="font-family:Arial,sans-serif"><h2>Welcome to Tienda F1!</h2><p>Your account was created with <b>%s</b>.</p></div>`, template.HTMLEscapeString(to))
	text = fmt.Sprintf("Welcome to Tienda F1. Account: %s", to)
	return
}

// OrderCustomerEmail builds the buyer confirmation.
func OrderCustomerEmail(sum OrderSummary) (subject, html, text string) {
	subject = fmt.Sprintf("Your purchase - Order #%d", sum.OrderID)
	html = fmt.Sprintf(`<div style="font-family:Arial,sans-serif"><h2>Thanks for your purchase</h2><p>Order <b>#%d</b> confirmed.</p>%s</div>`,
		sum.OrderID, renderOrderTable(sum))
	text = fmt.Sprintf("Order #%d confirmed. Total $%.2f.", sum.OrderID, sum.Total)
	return
}

// OrderAdminEmail builds the store-owner alert with buyer contact details.
func OrderAdminEmail(sum OrderSummary) (subject, html, text string) {
	subject = fmt.Sprintf("New purchase - Order #%d", sum.OrderID)
	contact := template.HTMLEscapeString(sum.BuyerEmail)
	if sum.BuyerPhone != "" {
		contact += " - Tel: " + template.HTMLEscapeString(sum.BuyerPhone)
	}
	html = fmt.Sprintf(`<div style="font-family:Arial,sans-serif;line-height:1.5"><h2>New purchase</h2><p>Order <b>#%d</b></p><p>Customer: <b>%s</b></p>%s</div>`,
		sum.OrderID, contact, renderOrderTable(sum))
	text = fmt.Sprintf("New purchase - Order #%d - Customer: %s - Total $%.2f", sum.OrderID, sum.BuyerEmail, sum.Total)
	return
}
