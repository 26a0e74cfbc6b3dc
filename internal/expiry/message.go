package expiry

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/onco-erp/onco/internal/inventory"
	"github.com/onco-erp/onco/internal/notifications"
)

const (
	documentTypeItem = "Item"
	expiryDateLayout = "02-01-2006"
)

var messageTemplate = template.Must(template.New("expiry_alert").Parse(`
<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #fff3cd; border-left: 4px solid #ffc107;">
	<h3 style="color: #856404; margin-top: 0;">&#9888;&#65039; Pharmaceutical Item Expiry Alert</h3>
	<p><strong>Item Code:</strong> {{.Code}}</p>
	<p><strong>Item Name:</strong> {{.Name}}</p>
	<p><strong>Expiry Date:</strong> {{.ExpiryDate}}</p>
	<p><strong>Days Until Expiry:</strong> {{.DaysUntilExpiry}} days</p>
	<p><strong>Reminder Period:</strong> {{.ReminderPeriod}}</p>
	<hr style="border: none; border-top: 1px solid #ffc107;">
	<p style="color: #856404; font-size: 12px;">
		This is an automated reminder based on the expiry date and reminder settings configured for this pharmaceutical item.
		Please take necessary action to manage inventory before expiration.
	</p>
</div>
`))

type messageData struct {
	Code            string
	Name            string
	ExpiryDate      string
	DaysUntilExpiry int
	ReminderPeriod  string
}

// Subject returns the notification subject for an item.
func Subject(item inventory.Item) string {
	return fmt.Sprintf("Pharmaceutical Item Expiry Alert: %s", item.ItemName)
}

// Message renders the HTML body of an expiry alert. expiry and today are
// calendar days.
func Message(item inventory.Item, expiry, today time.Time) (string, error) {
	var buf bytes.Buffer
	err := messageTemplate.Execute(&buf, messageData{
		Code:            item.Code,
		Name:            item.ItemName,
		ExpiryDate:      expiry.Format(expiryDateLayout),
		DaysUntilExpiry: daysBetween(today, expiry),
		ReminderPeriod:  string(item.Reminder),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// buildTemplate prepares the notification shared by every recipient of an item.
func buildTemplate(item inventory.Item, expiry, today time.Time) (notifications.Log, error) {
	body, err := Message(item, expiry, today)
	if err != nil {
		return notifications.Log{}, fmt.Errorf("render message: %w", err)
	}
	return notifications.Log{
		Subject:      Subject(item),
		EmailContent: body,
		Type:         notifications.TypeAlert,
		DocumentType: documentTypeItem,
		DocumentName: item.Code,
	}, nil
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

// civilDate truncates t to its calendar day in loc, returned at UTC midnight so
// that day arithmetic is unaffected by daylight saving changes.
func civilDate(t time.Time, loc *time.Location) time.Time {
	if loc != nil {
		t = t.In(loc)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
