package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"libralend/internal/catalog"
	"libralend/internal/circulation"
	"libralend/internal/membership"
	"libralend/pkg/eventlog"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the scripted lending demonstration",
	Long:  `Seed a small catalog, issue and return a loan, and print reports along the way.`,
	RunE:  runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if cfg.Tracing {
		shutdown, err := setupTracing(ctx)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				logger.Error("trace exporter shutdown failed", "error", err)
			}
		}()
	}

	journal := eventlog.New()

	bookRepo := catalog.NewRepository()
	readerRepo := membership.NewRepository()
	loanRepo := circulation.NewRepository()

	catalogSvc := catalog.NewService(bookRepo, journal, logger)
	membershipSvc := membership.NewService(readerRepo, journal, logger, membership.WithLoanGuard(loanRepo))
	circulationSvc := circulation.NewService(loanRepo, catalogSvc, membershipSvc, journal, logger)

	librarian := &circulation.Librarian{Name: "Елена Смирнова", Position: "Главный библиотекарь"}

	books := []struct{ isbn, title, author string }{
		{"978-0140449136", "Одиссея", "Гомер"},
		{"978-0261102217", "Хоббит", "Дж. Р. Р. Толкин"},
		{"978-0131103627", "Язык программирования C", "Керниган и Ричи"},
	}
	for _, b := range books {
		if _, err := catalogSvc.AddBook(ctx, b.isbn, b.title, b.author); err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
	}

	reader, err := membershipSvc.RegisterReader(ctx, "Иван Петров", "ivan.petrov@example.com")
	if err != nil {
		return fmt.Errorf("registering reader: %w", err)
	}

	fmt.Println("=== Initial catalog ===")
	for _, b := range catalogSvc.AvailableBooks(ctx) {
		fmt.Println(" - " + formatBook(b))
	}

	fmt.Println("\nSearching for 'Хоббит':")
	for _, b := range catalogSvc.SearchByTitle(ctx, "Хоббит") {
		fmt.Println(" found: " + formatBook(b))
	}

	const hobbitISBN = "978-0261102217"

	fmt.Println("\nIssuing 'Хоббит' to", reader.Name, "...")
	loanDate := time.Now().UTC()
	dueDate := loanDate.AddDate(0, 0, cfg.LoanPeriodDays)
	loan, err := circulationSvc.IssueLoan(ctx, hobbitISBN, reader.ID, loanDate, dueDate, librarian)
	if err != nil {
		return fmt.Errorf("issuing loan: %w", err)
	}
	fmt.Println(" loan created: " + formatLoan(*loan))

	fmt.Println("\nTrying to issue the same book again:")
	if _, err := circulationSvc.IssueLoan(ctx, hobbitISBN, reader.ID, loanDate, dueDate, librarian); err != nil {
		fmt.Println(" cannot issue:", err)
	} else {
		fmt.Println(" issued again (unexpected)")
	}

	fmt.Println("\n=== Books on loan ===")
	for _, b := range catalogSvc.LoanedBooks(ctx) {
		fmt.Println(" - " + formatBook(b))
	}

	fmt.Println("\n=== All loans ===")
	for _, l := range circulationSvc.AllLoans(ctx) {
		fmt.Println(" - " + formatLoan(l))
	}

	fmt.Println("\nReturning the book...")
	if err := circulationSvc.ReturnBook(ctx, loan.ID); err != nil {
		return fmt.Errorf("returning book: %w", err)
	}
	fmt.Println("Availability after return:")
	for _, b := range catalogSvc.AvailableBooks(ctx) {
		fmt.Println(" - " + formatBook(b))
	}

	fmt.Println("\nRegistering a second reader and removing her:")
	second, err := membershipSvc.RegisterReader(ctx, "Ольга Иванова", "olga@example.com")
	if err != nil {
		return fmt.Errorf("registering reader: %w", err)
	}
	fmt.Println(" readers after registration:", len(membershipSvc.AllReaders(ctx)))
	if err := membershipSvc.RemoveReader(ctx, second.ID); err != nil {
		fmt.Println(" cannot remove:", err)
	} else {
		fmt.Println(" removed; readers now:", len(membershipSvc.AllReaders(ctx)))
	}

	fmt.Println("\nSearching by author 'Гомер':")
	for _, b := range catalogSvc.SearchByAuthor(ctx, "Гомер") {
		fmt.Println(" - " + formatBook(b))
	}

	fmt.Printf("\nDemo complete. %d domain events recorded.\n", journal.Len())
	return nil
}

func formatBook(b catalog.Book) string {
	state := "available"
	if !b.Available {
		state = "on loan"
	}
	return fmt.Sprintf("%s by %s (ISBN: %s) - %s", b.Title, b.Author, b.ISBN, state)
}

func formatLoan(l circulation.Loan) string {
	issuedBy := ""
	if l.IssuedBy != nil {
		issuedBy = " (issued by: " + l.IssuedBy.Name + ")"
	}
	return fmt.Sprintf("%s : %s -> %s, %s to %s [%s]%s",
		l.ID, l.BookISBN, l.ReaderID,
		l.LoanDate.Format("2006-01-02"), l.DueDate.Format("2006-01-02"),
		l.Status, issuedBy)
}
