package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"toil_entries", "leave_requests", "users"} {
				if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		seedUsers := []struct {
			Email     string
			Name      string
			Role      string
			Protected bool
		}{
			{"admin@mail.com", "Arini Admin", "admin", false},
			{"fadhil@mail.com", "Fadhil", "member", false},
			{"sari@mail.com", "Sari Oncall", "member", true},
			{"budi@mail.com", "Budi Oncall", "member", true},
		}

		for _, u := range seedUsers {
			var exists int
			if err := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row().Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", u.Email)
				continue
			}

			err := db.Exec(`INSERT INTO users
				(email, name, role, password_hash, annual_leave_allowance, sick_leave_allowance, toil_balance_hours, protected_coverage, is_active, created_at, updated_at)
				VALUES (?, ?, ?, ?, 25, 10, 0, ?, true, now(), now())`,
				u.Email, u.Name, u.Role, string(hash), u.Protected).Error
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Printf("Seeded user: %s (%s)\n", u.Email, u.Role)
		}

		fmt.Println("Seeding complete. All users share the password:", password)
	},
}
