package command

import (
	"fmt"
	"strconv"

	"booklease/cmd/booklease/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Browse the catalog",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List books with optional filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		var q client.BookQuery
		q.Category, _ = cmd.Flags().GetString("category")
		q.Search, _ = cmd.Flags().GetString("search")
		q.Sort, _ = cmd.Flags().GetString("sort")
		q.Page, _ = cmd.Flags().GetInt("page")
		q.Limit, _ = cmd.Flags().GetInt("limit")

		ctx, cancel := commandContext()
		defer cancel()

		list, err := publicClient().ListBooks(ctx, q)
		if err != nil {
			return err
		}
		printBooks(list.Books)
		fmt.Printf("page %d of %d (%d books)\n", list.Pagination.Page, list.Pagination.TotalPages, list.Pagination.Total)
		return nil
	},
}

var booksPopularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Show the most rented books",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		ctx, cancel := commandContext()
		defer cancel()

		books, err := publicClient().Popular(ctx, limit)
		if err != nil {
			return err
		}
		printBooks(books)
		return nil
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review <book_id> <rating>",
	Short: "Rate a book from 1 to 5",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book id %q", args[0])
		}
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid rating %q", args[1])
		}
		comment, _ := cmd.Flags().GetString("comment")

		c, err := sessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		if err := c.Review(ctx, bookID, rating, comment); err != nil {
			return err
		}
		color.Green("✓ Review saved")
		return nil
	},
}

func printBooks(books []client.Book) {
	for _, b := range books {
		color.Cyan("[%d] %s", b.ID, b.Title)
		fmt.Printf("    %s · %s · ★ %.2f · %d rentals\n", b.Author, b.Category, b.Rating, b.TotalRentals)
		fmt.Printf("    7d %.2f | 14d %.2f | 30d %.2f\n", b.RentalPrice7Days, b.RentalPrice14Days, b.RentalPrice30Days)
	}
}

func init() {
	booksCmd.AddCommand(booksListCmd, booksPopularCmd, reviewCmd)
	rootCmd.AddCommand(booksCmd)

	booksListCmd.Flags().String("category", "", "Only this category")
	booksListCmd.Flags().StringP("search", "s", "", "Match title or author")
	booksListCmd.Flags().String("sort", "popular", "popular|rating|price_low|price_high|newest")
	booksListCmd.Flags().Int("page", 1, "Page number")
	booksListCmd.Flags().Int("limit", 12, "Books per page")

	booksPopularCmd.Flags().Int("limit", 10, "How many books")

	reviewCmd.Flags().StringP("comment", "c", "", "Optional comment")
}
