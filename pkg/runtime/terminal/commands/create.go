package commands

import (
	"errors"

	"github.com/de-tools/fraud-atlas/pkg/adapters"
	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/de-tools/fraud-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/fraud-atlas/pkg/services/workflow"
	"github.com/spf13/cobra"
)

type CreateCmd struct {
	amount     string
	merchantID string
	customerID string
	runtime    *Runtime
	reporter   *export.PageReporter
}

func NewCreateCmd(runtime *Runtime, reporter *export.PageReporter) *cobra.Command {
	cc := &CreateCmd{runtime: runtime, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a transaction",
		Args:  cobra.NoArgs,
		RunE:  cc.run,
	}

	cmd.Flags().StringVar(&cc.amount, "amount", "", "Transaction amount, e.g. 125.50")
	cmd.Flags().StringVar(&cc.merchantID, "merchant", "", "Merchant ID")
	cmd.Flags().StringVar(&cc.customerID, "customer", "", "Customer ID")

	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func (cc *CreateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	svc, _, err := cc.runtime.Connect(ctx)
	if err != nil {
		return err
	}

	creation := workflow.NewCreation(svc, nil)
	defer creation.Close()

	if err := creation.Open(); err != nil {
		return err
	}
	for field, value := range map[domain.DraftField]string{
		domain.DraftFieldAmount:     cc.amount,
		domain.DraftFieldMerchantID: cc.merchantID,
		domain.DraftFieldCustomerID: cc.customerID,
	} {
		if err := creation.Edit(field, value); err != nil {
			return err
		}
	}

	created, err := creation.Submit(ctx)
	if err != nil {
		if msg := creation.Status().Error; msg != "" {
			return errors.New(msg)
		}
		return err
	}

	return cc.reporter.HandleRow(adapters.MapTransactionToRow(created, cc.runtime.Location))
}
