package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"ledgerbot/internal/backend"
	"ledgerbot/internal/core"
	"ledgerbot/internal/export"
	"ledgerbot/internal/report"
)

type ledgerAPI interface {
	Ledger(ctx context.Context, userID int64) ([]core.Transaction, error)
	Clear(ctx context.Context, userID int64) error
}

type opener func(ctx context.Context, backendName string) (ledgerAPI, *time.Location, func() error, error)

type app struct {
	open opener
	now  func() time.Time

	userID      int64
	backendName string

	ledger  ledgerAPI
	loc     *time.Location
	cleanup func() error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect and maintain chat ledgers",
		Long:          `ledgerctl reads and maintains the ledger of one chat user on the configured backend.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.userID == 0 {
				return errors.New("a --user id is required")
			}
			l, loc, cleanup, err := a.open(cmd.Context(), a.backendName)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			if loc == nil {
				loc = time.Local
			}
			a.ledger, a.loc, a.cleanup = l, loc, cleanup
			return nil
		},
	}

	root.PersistentFlags().Int64VarP(&a.userID, "user", "u", 0, "chat user id whose ledger to use")
	root.PersistentFlags().StringVarP(&a.backendName, "backend", "b", "",
		fmt.Sprintf("ledger backend %v (default from DATA_BACKEND)", backend.TypeNames()))

	root.AddCommand(newListCmd(a))
	root.AddCommand(newTodayCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newClearCmd(a))
	return root
}

// close releases the backend opened by the root command, if any.
func (a *app) close() error {
	if a.cleanup == nil {
		return nil
	}
	err := a.cleanup()
	a.cleanup = nil
	return err
}

func newListCmd(a *app) *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the user's transactions",
		Example: `  ledgerctl list -u 12345
  ledgerctl list -u 12345 --account A`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txs, err := a.ledger.Ledger(cmd.Context(), a.userID)
			if err != nil {
				return err
			}
			view := report.AllView(txs, report.WithNet())
			if account != "" {
				view = report.AccountView(txs, account, report.WithNet())
			}
			return printTable(cmd.OutOrStdout(), view, a.loc)
		},
	}
	cmd.Flags().StringVarP(&account, "account", "a", "", "only show entries of this account")
	return cmd
}

func newTodayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's summary as the bot renders it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			txs, err := a.ledger.Ledger(cmd.Context(), a.userID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), report.DayView(txs, a.now().In(a.loc), report.WithNet()).Render())
			return err
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the user's transactions as CSV",
		Example: `  ledgerctl export -u 12345 > transactions.csv
  ledgerctl export -u 12345 -o transactions.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txs, err := a.ledger.Ledger(cmd.Context(), a.userID)
			if err != nil {
				return err
			}
			if len(txs) == 0 {
				pterm.Warning.WithWriter(cmd.ErrOrStderr()).Println("No data to export.")
				return nil
			}
			if output == "" || output == "-" {
				return export.WriteCSV(cmd.OutOrStdout(), txs)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := export.WriteCSV(f, txs); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.ErrOrStderr()).Printf("Exported %d transactions to %s\n", len(txs), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every transaction of the user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to clear without --yes")
			}
			if err := a.ledger.Clear(cmd.Context(), a.userID); err != nil {
				return err
			}
			pterm.Success.WithWriter(cmd.OutOrStdout()).Printf("Cleared ledger of user %d\n", a.userID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func printTable(w io.Writer, s report.Summary, loc *time.Location) error {
	if len(s.Entries) == 0 {
		pterm.Warning.WithWriter(w).Println(s.Empty)
		return nil
	}

	data := pterm.TableData{{"#", "Time", "Type", "Amount", "Mode", "Account", "Note"}}
	for i, tx := range s.Entries {
		amount := tx.Kind.Sign() + export.FormatAmount(tx.Amount)
		kind := tx.Kind.String()
		if tx.Kind == core.Income {
			amount, kind = pterm.Green(amount), pterm.Green(kind)
		} else {
			amount, kind = pterm.Red(amount), pterm.Red(kind)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			tx.CreatedAt.In(loc).Format(core.TimestampLayout),
			kind,
			amount,
			tx.Mode,
			tx.Account,
			tx.Note,
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(w).WithData(data).Render(); err != nil {
		return err
	}

	totals := []string{
		"Total income: " + s.Income.StringFixed(2),
		"Total expense: " + s.Expense.StringFixed(2),
		"Net total: " + s.Net().StringFixed(2),
	}
	_, err := fmt.Fprintln(w, "\n"+strings.Join(totals, "\n"))
	return err
}
