package command

import (
	"context"
	"fmt"
	"log/slog"

	"booklease/database"
	"booklease/internal/config"
	"booklease/internal/logger"
	"booklease/internal/microservices/http-api/models"
	"booklease/internal/microservices/http-api/repository"
	"booklease/internal/microservices/http-api/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// admin.go works on the database directly, using the same .env as the API server.

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Database administration (reads the server's environment)",
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDatabase(func(db *gorm.DB, cfg *config.Config, log *slog.Logger) error {
			if err := database.Migrate(db, log); err != nil {
				return err
			}
			color.Green("✓ Schema is up to date")
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a sample catalog into an empty books table",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		return withDatabase(func(db *gorm.DB, cfg *config.Config, log *slog.Logger) error {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			n, err := seedCatalog(ctx, repository.NewTransactionManager(db), force)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Println("books table is not empty, nothing seeded (use --force to add anyway)")
				return nil
			}
			color.Green("✓ Seeded %d books", n)
			return nil
		})
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		return withDatabase(func(db *gorm.DB, cfg *config.Config, log *slog.Logger) error {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			users := repository.NewUserRepository(db)
			user, err := users.FindByEmail(ctx, email)
			if err != nil {
				if repository.IsNotFound(err) {
					return fmt.Errorf("no user with email %s", email)
				}
				return err
			}
			token, err := service.NewAuthService(users, cfg).IssueToken(user)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		})
	},
}

// withDatabase loads the server config, connects and always closes the pool.
func withDatabase(fn func(db *gorm.DB, cfg *config.Config, log *slog.Logger) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg, log)
	if err != nil {
		return err
	}
	defer database.Close(db)
	return fn(db, cfg, log)
}

// seedCatalog inserts sampleBooks in one transaction. It skips a non-empty
// table unless force is set and reports how many rows it wrote.
func seedCatalog(ctx context.Context, txm repository.TransactionManager, force bool) (int, error) {
	written := 0
	err := txm.Execute(ctx, func(repos repository.RepositoryFactory) error {
		count, err := repos.Books().Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 && !force {
			return nil
		}
		for _, b := range sampleBooks() {
			book := b
			if err := repos.Books().Create(ctx, &book); err != nil {
				return fmt.Errorf("seed %q: %w", b.Title, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

func strPtr(s string) *string { return &s }

func sampleBooks() []models.Book {
	return []models.Book{
		{Title: "The Go Programming Language", Author: "Alan Donovan, Brian Kernighan", Category: "Programming",
			Description: strPtr("A thorough tour of Go from the basics to concurrency."),
			FullPrice:   650, RentalPrice7Days: 60, RentalPrice14Days: 100, RentalPrice30Days: 180},
		{Title: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", Category: "Programming",
			Description: strPtr("Storage, replication and stream processing explained."),
			FullPrice:   890, RentalPrice7Days: 80, RentalPrice14Days: 140, RentalPrice30Days: 240},
		{Title: "Dune", Author: "Frank Herbert", Category: "Fiction",
			FullPrice: 420, RentalPrice7Days: 45, RentalPrice14Days: 80, RentalPrice30Days: 140},
		{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", Category: "Fiction",
			FullPrice: 380, RentalPrice7Days: 40, RentalPrice14Days: 70, RentalPrice30Days: 120},
		{Title: "Sapiens", Author: "Yuval Noah Harari", Category: "History",
			FullPrice: 520, RentalPrice7Days: 50, RentalPrice14Days: 90, RentalPrice30Days: 160},
		{Title: "The Guns of August", Author: "Barbara Tuchman", Category: "History",
			FullPrice: 460, RentalPrice7Days: 45, RentalPrice14Days: 80, RentalPrice30Days: 140},
		{Title: "Thinking, Fast and Slow", Author: "Daniel Kahneman", Category: "Psychology",
			FullPrice: 480, RentalPrice7Days: 50, RentalPrice14Days: 85, RentalPrice30Days: 150},
		{Title: "The Pragmatic Programmer", Author: "David Thomas, Andrew Hunt", Category: "Programming",
			FullPrice: 700, RentalPrice7Days: 70, RentalPrice14Days: 120, RentalPrice30Days: 210},
	}
}

func init() {
	adminCmd.AddCommand(migrateCmd, seedCmd, tokenCmd)
	rootCmd.AddCommand(adminCmd)

	seedCmd.Flags().Bool("force", false, "Seed even when books already exist")
	tokenCmd.Flags().StringP("email", "e", "", "Email of the user")
	tokenCmd.MarkFlagRequired("email")
}
