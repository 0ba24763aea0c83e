// internal/domain/settings/entity.go
package settings

import (
	"database/sql"
	"time"
)

// Kind names one settings panel.
type Kind string

const (
	KindInvoice      Kind = "invoice"
	KindLocalization Kind = "localization"
	KindNotification Kind = "notification"
	KindLanguage     Kind = "language"
)

// Record is one stored settings blob. BuildingID is NULL for the global
// record that building-scoped reads fall back to.
type Record struct {
	ID         int64          `json:"id" db:"id"`
	AccountID  int64          `json:"account_id" db:"account_id"`
	BuildingID sql.NullInt64  `json:"building_id,omitempty" db:"building_id"`
	Kind       Kind           `json:"kind" db:"kind"`
	Value      map[string]any `json:"value" db:"value"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// InvoiceSettings are the invoice-generation rules.
type InvoiceSettings struct {
	AutoGenerate  bool    `json:"auto_generate"`
	GenerationDay int     `json:"generation_day"`
	DueDays       int     `json:"due_days"`
	NumberPrefix  string  `json:"number_prefix"`
	TaxPercent    float64 `json:"tax_percent"`
	Notes         string  `json:"notes"`
}

// LocalizationSettings hold timezone and date/time display formats.
type LocalizationSettings struct {
	Timezone   string `json:"timezone"`
	DateFormat string `json:"date_format"`
	TimeFormat string `json:"time_format"`
}

// NotificationSettings are channel and reminder toggles.
type NotificationSettings struct {
	EmailEnabled    bool `json:"email_enabled"`
	SMSEnabled      bool `json:"sms_enabled"`
	PushEnabled     bool `json:"push_enabled"`
	RentReminders   bool `json:"rent_reminders"`
	PaymentReceipts bool `json:"payment_receipts"`
}

// LanguageSettings select the interface language.
type LanguageSettings struct {
	Language string `json:"language"`
}

// Defaults keep the panels usable when nothing is stored or a load fails.
var (
	DefaultInvoice = InvoiceSettings{
		AutoGenerate:  true,
		GenerationDay: 1,
		DueDays:       7,
		NumberPrefix:  "INV-",
	}
	DefaultLocalization = LocalizationSettings{
		Timezone:   "Asia/Kolkata",
		DateFormat: "DD/MM/YYYY",
		TimeFormat: "hh:mm A",
	}
	DefaultNotification = NotificationSettings{
		EmailEnabled:    true,
		RentReminders:   true,
		PaymentReceipts: true,
	}
	DefaultLanguage = LanguageSettings{Language: "en"}
)
