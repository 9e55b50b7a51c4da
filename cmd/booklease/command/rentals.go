package command

import (
	"fmt"
	"strconv"

	"booklease/cmd/booklease/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rentCmd = &cobra.Command{
	Use:   "rent <book_id>",
	Short: "Rent a book for 7, 14 or 30 days",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book id %q", args[0])
		}
		days, _ := cmd.Flags().GetInt("days")

		c, err := sessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		rental, err := c.Rent(ctx, bookID, days)
		if err != nil {
			return err
		}
		color.Green("✓ Rented %q for %d days", rental.BookTitle, rental.RentalDays)
		fmt.Printf("rental %d · paid %.2f · until %s\n", rental.RentalID, rental.PricePaid, rental.RentalEnd.Format("2006-01-02 15:04"))
		return nil
	},
}

var extendCmd = &cobra.Command{
	Use:   "extend <rental_id>",
	Short: "Extend a rental by another 7, 14 or 30 days",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rentalID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid rental id %q", args[0])
		}
		days, _ := cmd.Flags().GetInt("days")

		c, err := sessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		ext, err := c.Extend(ctx, rentalID, days)
		if err != nil {
			return err
		}
		color.Green("✓ Extended by %d days for %.2f", ext.ExtendDays, ext.ExtendPrice)
		fmt.Printf("new end: %s\n", ext.NewEndDate.Format("2006-01-02 15:04"))
		return nil
	},
}

var rentalsCmd = &cobra.Command{
	Use:   "rentals",
	Short: "Your rentals",
}

var rentalsActiveCmd = &cobra.Command{
	Use:   "active",
	Short: "Rentals you can still read",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := sessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		rentals, err := c.ActiveRentals(ctx)
		if err != nil {
			return err
		}
		if len(rentals) == 0 {
			fmt.Println("no active rentals")
		}
		printRentals(rentals)
		return nil
	},
}

var rentalsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Every rental, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		limit, _ := cmd.Flags().GetInt("limit")

		c, err := sessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		history, err := c.RentalHistory(ctx, page, limit)
		if err != nil {
			return err
		}
		printRentals(history.Rentals)
		fmt.Printf("page %d of %d (%d rentals)\n", history.Pagination.Page, history.Pagination.TotalPages, history.Pagination.Total)
		return nil
	},
}

var rentalsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Totals across your rentals",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := sessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()

		stats, err := c.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("rentals: %d  active: %d  spent: %.2f\n", stats.TotalRentals, stats.ActiveRentals, stats.TotalSpent)
		return nil
	},
}

func printRentals(rentals []client.Rental) {
	for _, r := range rentals {
		line := fmt.Sprintf("[%d] %s · %d days · %.2f · until %s", r.RentalID, r.Title, r.RentalDays, r.PricePaid, r.RentalEnd.Format("2006-01-02"))
		if r.Expired {
			color.HiBlack("%s (expired)", line)
			continue
		}
		color.Cyan("%s", line)
	}
}

func init() {
	rentalsCmd.AddCommand(rentalsActiveCmd, rentalsHistoryCmd, rentalsStatsCmd)
	rootCmd.AddCommand(rentCmd, extendCmd, rentalsCmd)

	rentCmd.Flags().IntP("days", "d", 7, "Rental length: 7, 14 or 30")
	extendCmd.Flags().IntP("days", "d", 7, "Extension length: 7, 14 or 30")

	rentalsHistoryCmd.Flags().Int("page", 1, "Page number")
	rentalsHistoryCmd.Flags().Int("limit", 10, "Rentals per page")
}
