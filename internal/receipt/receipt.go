// Package receipt формирует текстовую квитанцию об оплате стоянки.
package receipt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/mmeshcher/parking-system/internal/model"
)

const layout = "2006-01-02 15:04"

var tmpl = template.Must(template.New("receipt").Parse(
	`========= PARKING RECEIPT =========
Receipt No:  {{.RecordID}}
Vehicle No:  {{.VehicleNumber}}
Owner:       {{.OwnerName}}
Class:       {{.Class}}
Entry Time:  {{.Entry}}
Exit Time:   {{.Exit}}
Duration:    {{.DurationHours}} hour(s)
Rate:        Rs.{{.Rate}}/hr
Total Fee:   Rs.{{.Fee}}
===================================
`))

type receiptView struct {
	RecordID      int64
	VehicleNumber string
	OwnerName     string
	Class         model.VehicleClass
	Entry         string
	Exit          string
	DurationHours int
	Rate          string
	Fee           string
}

// Render возвращает квитанцию в виде готового к печати текста.
func Render(r *model.Receipt) (string, error) {
	var b strings.Builder

	err := tmpl.Execute(&b, receiptView{
		RecordID:      r.RecordID,
		VehicleNumber: r.VehicleNumber,
		OwnerName:     r.OwnerName,
		Class:         r.Class,
		Entry:         r.EntryTime.Format(layout),
		Exit:          r.ExitTime.Format(layout),
		DurationHours: r.DurationHours,
		Rate:          formatCents(r.RateCents),
		Fee:           formatCents(r.FeeCents),
	})
	if err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}

	return b.String(), nil
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
