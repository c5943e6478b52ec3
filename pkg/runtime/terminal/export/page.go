package export

import (
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/de-tools/fraud-atlas/pkg/models/api"
)

// PageReporter prints one page of the transaction table.
type PageReporter struct {
	writer io.Writer
}

func NewPageReporter(writer io.Writer) *PageReporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &PageReporter{writer: writer}
}

// Pages are shown 1-based. An empty table still reports page 1 of 0.
const pageTemplate = `{{printf "%-8s %-12s %-14s %-14s %-19s %-10s %s" "ID" "Amount" "Merchant" "Customer" "Timestamp" "Fraudulent" "Score"}}
{{range .Rows}}{{printf "%-8d %-12s %-14s %-14s %-19s %-10s %s" .ID .Amount .MerchantID .CustomerID .Timestamp .Fraudulent .FraudScore}}
{{else}}No transactions.
{{end}}
Page {{inc .Page}} of {{.PageCount}} ({{.TotalCount}} transactions, {{.PageSize}} per page)
`

func (p *PageReporter) Handle(page api.TransactionPage) error {
	funcMap := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}

	t, err := template.New("page").Funcs(funcMap).Parse(pageTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(p.writer, page)
}

// HandleRow prints a single transaction, e.g. one that was just created.
func (p *PageReporter) HandleRow(row api.TransactionRow) error {
	return p.Handle(api.TransactionPage{
		PageSize:   1,
		TotalCount: 1,
		PageCount:  1,
		Rows:       []api.TransactionRow{row},
	})
}
