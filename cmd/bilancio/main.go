package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"bilancio/internal/cli"
	"bilancio/internal/report"
	"bilancio/internal/services"
)

const dateFlagLayout = "2006-01-02"

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: bilancio <command> [flags]

Commands:
  import -file <csv>         normalize and store a ledger export
  categorize                 fill in missing categories
  train                      fit the category model on categorized rows
  evaluate                   score the model against the stored ledger
  report [-from d] [-to d]   category and monthly summaries
  stats  [-from d] [-to d]   descriptive statistics
  validate                   data quality checks
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx := context.Background()
	svc, cleanup := cli.InitService(ctx, logger, cfg)
	defer cleanup()

	var err error
	switch os.Args[1] {
	case "import":
		err = runImport(ctx, svc, os.Args[2:])
	case "categorize":
		err = runCategorize(ctx, svc)
	case "train":
		err = runTrain(ctx, svc)
	case "evaluate":
		err = runEvaluate(ctx, svc)
	case "report":
		err = runReport(ctx, svc, os.Args[2:])
	case "stats":
		err = runStats(ctx, svc, os.Args[2:])
	case "validate":
		err = runValidate(ctx, svc)
	default:
		usage()
	}

	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseRange(args []string, name string) (from, to time.Time, err error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fromStr := fs.String("from", "", "start date (inclusive), YYYY-MM-DD")
	toStr := fs.String("to", "", "end date (inclusive), YYYY-MM-DD")
	if err = fs.Parse(args); err != nil {
		return
	}
	if *fromStr != "" {
		if from, err = time.Parse(dateFlagLayout, *fromStr); err != nil {
			err = fmt.Errorf("invalid -from date %q: %w", *fromStr, err)
			return
		}
	}
	if *toStr != "" {
		if to, err = time.Parse(dateFlagLayout, *toStr); err != nil {
			err = fmt.Errorf("invalid -to date %q: %w", *toStr, err)
			return
		}
	}
	if fs.NArg() > 0 {
		err = fmt.Errorf("%s takes no positional arguments, got %q", name, fs.Args())
	}
	return
}

func runImport(ctx context.Context, svc *services.LedgerService, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "path to the CSV ledger export")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("import requires -file")
	}

	f, err := os.Open(*file)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := svc.ImportCSV(ctx, f)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Printf("Imported %d transactions", res.Imported)
	if res.Dropped > 0 {
		color.New(color.FgYellow).Printf(" (%d rows dropped)", res.Dropped)
	}
	fmt.Printf("  batch %s\n", res.BatchID)
	return nil
}

func runCategorize(ctx context.Context, svc *services.LedgerService) error {
	res, err := svc.AutoCategorize(ctx)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Printf("Categorized %d transactions\n", res.Total)
	fmt.Printf("  backfilled: %d\n", res.Backfilled)
	if res.Fallback > 0 {
		color.New(color.FgYellow).Printf("  still uncategorized: %d\n", res.Fallback)
	}
	return nil
}

func runTrain(ctx context.Context, svc *services.LedgerService) error {
	n, err := svc.Train(ctx)
	if err != nil {
		return err
	}
	color.New(color.FgGreen).Printf("Trained on %d samples\n", n)
	return nil
}

func runEvaluate(ctx context.Context, svc *services.LedgerService) error {
	eval, err := svc.Evaluate(ctx)
	if err != nil {
		return err
	}
	if eval.Total == 0 {
		color.New(color.FgYellow).Println("No categorized transactions to evaluate")
		return nil
	}
	fmt.Printf("Accuracy: %.2f%% (%d/%d)\n", eval.Accuracy*100, eval.Correct, eval.Total)
	return nil
}

func runReport(ctx context.Context, svc *services.LedgerService, args []string) error {
	from, to, err := parseRange(args, "report")
	if err != nil {
		return err
	}

	rep, err := svc.BuildReport(ctx, from, to)
	if err != nil {
		return err
	}

	color.New(color.Bold).Println("Expenses by category")
	for _, row := range rep.Categories {
		fmt.Printf("  %-20s %12s\n", row.Category, row.Amount.String())
	}

	color.New(color.Bold).Println("Monthly summary")
	for _, row := range rep.Months {
		fmt.Printf("  %s  income %12s  expense %12s  balance %12s\n",
			row.Month, row.Income.String(), row.Expense.String(), row.Balance.String())
	}

	color.New(color.Bold).Println("Totals")
	fmt.Printf("  income  %12s\n", rep.Metrics.TotalIncome.String())
	fmt.Printf("  expense %12s\n", rep.Metrics.TotalExpense.String())
	balance := color.New(color.FgGreen)
	if rep.Metrics.Balance.IsNegative() {
		balance = color.New(color.FgRed)
	}
	balance.Printf("  balance %12s\n", rep.Metrics.Balance.String())
	return nil
}

func runStats(ctx context.Context, svc *services.LedgerService, args []string) error {
	from, to, err := parseRange(args, "stats")
	if err != nil {
		return err
	}

	stats, err := svc.Statistics(ctx, from, to)
	if err != nil {
		return err
	}

	fmt.Printf("Transactions: %d expense, %d income\n", stats.ExpenseCount, stats.IncomeCount)
	fmt.Printf("Monthly averages: expense %s, income %s\n",
		stats.MonthlyAvgExpense.String(), stats.MonthlyAvgIncome.String())
	fmt.Printf("Expense: avg %s, max %s, min %s\n",
		stats.AvgExpense.String(), stats.MaxExpense.String(), stats.MinExpense.String())
	if stats.LargestExpenseDesc != "" {
		fmt.Printf("Largest expense: %s\n", stats.LargestExpenseDesc)
	}
	if stats.TopExpenseCategory != "" {
		fmt.Printf("Top category: %s (of %d)\n", stats.TopExpenseCategory, stats.CategoryCount)
	}
	fmt.Printf("Net: %s  savings rate %.1f%%\n", stats.Net.String(), stats.SavingsRate)
	return nil
}

func runValidate(ctx context.Context, svc *services.LedgerService) error {
	vr, err := svc.Validate(ctx)
	if err != nil {
		return err
	}

	if vr.TotalIssues() == 0 {
		color.New(color.FgGreen).Println("No issues found")
		return nil
	}

	for _, issue := range vr.Warnings {
		c := color.New(color.FgYellow)
		if issue.Severity == report.SeverityCritical {
			c = color.New(color.FgRed)
		}
		c.Printf("[%s] ", issue.Severity)
		fmt.Println(issue.Message)
	}
	for _, issue := range vr.Suggestions {
		fmt.Printf("suggestion: %s\n", issue.Message)
	}
	return nil
}
