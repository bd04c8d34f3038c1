package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/monedero-app/monedero/internal/activity"
	"github.com/monedero-app/monedero/internal/notice"
	"github.com/monedero-app/monedero/internal/transfer"
)

func newExportCommand() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the transaction list as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return runExport(ctx, a, cmd.OutOrStdout(), format, output)
			})
		},
	}

	formats := strings.Join(transfer.DefaultRegistry().Formats(), ", ")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: "+formats+" (default from --output extension, else csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(ctx context.Context, a *app, stdout io.Writer, format, output string) error {
	if format == "" {
		format = transfer.FormatFromPath(output)
	}
	if format == "" {
		format = "csv"
	}
	codec := transfer.DefaultRegistry().Get(format)
	if codec == nil {
		return a.fail(fmt.Errorf("unknown format %q", format))
	}

	sess, err := a.current()
	if err != nil {
		return err
	}
	txs, err := a.ledger.List(ctx, sess)
	if err != nil {
		return a.failRead(err)
	}

	if output == "" {
		return codec.Encode(stdout, txs)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	if err := codec.Encode(f, txs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", output, err)
	}
	a.out.Notice(notice.Success("Exported %d transactions to %s", len(txs), output))
	return nil
}

func newImportCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Append transactions from a CSV or JSON file",
		Long: `Append transactions from a CSV or JSON file. Every row is validated
before anything is saved; rows whose id already exists are skipped, so
importing the same file twice is harmless.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				return runImport(ctx, a, args[0], format)
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "input format (default from file extension)")

	return cmd
}

func runImport(ctx context.Context, a *app, path, format string) error {
	if format == "" {
		format = transfer.FormatFromPath(path)
	}
	codec := transfer.DefaultRegistry().Get(format)
	if codec == nil {
		return a.fail(fmt.Errorf("unknown format %q for %s", format, path))
	}

	sess, err := a.current()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return a.fail(fmt.Errorf("opening %s: %w", path, err))
	}
	defer f.Close()

	txs, err := codec.Decode(f)
	if err != nil {
		return a.fail(err)
	}

	res, err := a.ledger.Import(ctx, sess, txs)
	if err != nil {
		return a.fail(err)
	}
	if res.Added > 0 {
		a.changed(ctx, sess.UserID(), activity.ActionImport, fmt.Sprintf("%d added, %d skipped from %s", res.Added, res.Skipped, path), "")
	}
	a.out.Notice(notice.Success("Imported %d transactions (%d already present)", res.Added, res.Skipped))
	return nil
}
