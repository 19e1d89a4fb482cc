package invoices

import (
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

const paymentTermDays = 14

var inkBlue = &props.Color{
	Red:   24,
	Green: 38,
	Blue:  74,
}

// RenderInvoicePDF lays out a raised invoice as a PDF for attaching to the
// invoice email. Amounts are rendered through decimal so pennies survive the
// float line items.
func RenderInvoicePDF(invoice *InvoiceResponse) ([]byte, error) {
	cfg := config.NewBuilder().
		WithLeftMargin(10).
		WithTopMargin(15).
		WithRightMargin(10).
		Build()

	m := maroto.New(cfg)

	err := m.RegisterHeader(row.New(20).Add(text.NewCol(12, "Oakfield Community Hall", props.Text{
		Size:  22,
		Align: align.Center,
		Color: inkBlue,
		Style: fontstyle.Bold,
	})), row.New(14).Add(text.NewCol(12, "Invoice", props.Text{
		Size:  16,
		Align: align.Center,
		Color: inkBlue,
	})))
	if err != nil {
		return nil, err
	}

	err = m.RegisterFooter(row.New(10).Add(text.NewCol(12, "Oakfield Community Hall, Registered Charity", props.Text{
		Size:  10,
		Align: align.Center,
		Color: inkBlue,
	})))
	if err != nil {
		return nil, err
	}

	sentAt := time.Now()
	if invoice.SentAt != nil {
		sentAt = *invoice.SentAt
	}

	addLabelledRow(m, "Invoice Reference:", invoice.Reference)
	addLabelledRow(m, "Invoice Date:", sentAt.Format("2 January 2006"))
	addLabelledRow(m, "Payment Due By:", sentAt.AddDate(0, 0, paymentTermDays).Format("2 January 2006"))

	m.AddRow(8)

	m.AddRow(12, text.NewCol(10, "Description", props.Text{
		Size:  12,
		Color: inkBlue,
		Style: fontstyle.Bold,
		Top:   6,
	}), text.NewCol(2, "Cost", props.Text{
		Size:  12,
		Color: inkBlue,
		Style: fontstyle.Bold,
		Align: align.Right,
		Top:   6,
	})).WithStyle(&props.Cell{BorderType: border.Bottom, BorderColor: inkBlue, BorderThickness: 0.5})

	var total decimal.Decimal
	for _, item := range invoice.Items {
		cost := decimal.NewFromFloat(item.Cost)
		total = total.Add(cost)

		m.AddRow(12, text.NewCol(10, item.Description, props.Text{
			Size:  12,
			Color: inkBlue,
			Top:   3.5,
		}), text.NewCol(2, "£"+cost.StringFixedBank(2), props.Text{
			Size:  12,
			Color: inkBlue,
			Align: align.Right,
			Top:   3.5,
		})).WithStyle(&props.Cell{BorderType: border.Bottom, BorderColor: inkBlue, BorderThickness: 0.1})
	}

	m.AddRow(12, col.New(6), text.NewCol(4, "Total", props.Text{
		Size:  12,
		Color: inkBlue,
		Style: fontstyle.Bold,
		Align: align.Right,
		Top:   3.5,
	}), text.NewCol(2, "£"+total.StringFixedBank(2), props.Text{
		Size:  12,
		Color: inkBlue,
		Style: fontstyle.Bold,
		Align: align.Right,
		Top:   3.5,
	})).WithStyle(&props.Cell{BorderType: border.Top, BorderColor: inkBlue, BorderThickness: 0.4})

	m.AddRow(8)

	m.AddRow(8, text.NewCol(8, "Payment may be made by bank transfer to:", props.Text{
		Size:  12,
		Color: inkBlue,
	}))
	addLabelledRow(m, "Sort Code:", "40-22-17")
	addLabelledRow(m, "Account Number:", "31904576")
	addLabelledRow(m, "Account Name:", "Oakfield Community Hall")
	m.AddRow(8, text.NewCol(12, "Please quote reference "+invoice.Reference+" with your payment.", props.Text{
		Size:  12,
		Color: inkBlue,
	}))

	document, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return document.GetBytes(), nil
}

func addLabelledRow(m core.Maroto, label, value string) {
	m.AddRow(8, text.NewCol(4, label, props.Text{
		Size:  12,
		Color: inkBlue,
		Style: fontstyle.Bold,
	}), text.NewCol(6, value, props.Text{
		Size:  12,
		Color: inkBlue,
	}))
}
