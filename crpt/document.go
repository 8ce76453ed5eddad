/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package crpt

import (
	"bytes"
	"fmt"
	"time"
)

// DateLayout is the wire format of Date.
const DateLayout = "2006-01-02"

// Date is a calendar date without time and location. The zero Date is encoded as JSON null.
type Date struct {
	time.Time
}

// NewDate returns the Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in DateLayout format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// String returns the date in DateLayout format.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	if y := d.Year(); y < 0 || y > 9999 {
		return nil, fmt.Errorf("date year %d is outside of range [0,9999]", y)
	}
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("date should be a string, got %s", data)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Description holds the description of the document.
type Description struct {
	ParticipantInn string `json:"participantInn"`
}

// Product is a single product position of the document.
type Product struct {
	CertificateDocument       string `json:"certificate_document"`
	CertificateDocumentDate   Date   `json:"certificate_document_date"`
	CertificateDocumentNumber string `json:"certificate_document_number"`
	OwnerInn                  string `json:"owner_inn"`
	ProducerInn               string `json:"producer_inn"`
	ProductionDate            Date   `json:"production_date"`
	TnvedCode                 string `json:"tnved_code"`
	UitCode                   string `json:"uit_code"`
	UituCode                  string `json:"uitu_code"`
}

// Document is a document introducing goods into circulation.
// The client does not validate it, the remote side does.
type Document struct {
	Description    *Description `json:"description"`
	DocID          string       `json:"doc_id"`
	DocStatus      string       `json:"doc_status"`
	DocType        string       `json:"doc_type"`
	ImportRequest  bool         `json:"importRequest"`
	OwnerInn       string       `json:"owner_inn"`
	ParticipantInn string       `json:"participant_inn"`
	ProducerInn    string       `json:"producer_inn"`
	ProductionDate Date         `json:"production_date"`
	ProductionType string       `json:"production_type"`
	Products       []Product    `json:"products"`
	RegDate        Date         `json:"reg_date"`
	RegNumber      string       `json:"reg_number"`
}
