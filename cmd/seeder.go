package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/room-reservation/internal/core/common/password"
	permissionDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/permission"
	reservationDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/reservation"
	roomDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/room"
	userDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/user"
	permissionPostgres "github.com/frahmantamala/room-reservation/internal/permission/postgres"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample users, permissions and rooms for development and testing purposes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer sqlDB.Close()

		gdb, err := initGorm(sqlDB)
		if err != nil {
			return err
		}

		return seed(cmd.Context(), gdb, cfg.Security.BCryptCost, clearData)
	},
}

type seedUser struct {
	Email    string
	Name     string
	Surname  string
	Verified bool
	Admin    bool
}

var seedUsers = []seedUser{
	{Email: "admin@mail.com", Name: "Padil", Surname: "Admin", Verified: true, Admin: true},
	{Email: "fadhil@mail.com", Name: "Fadhil", Surname: "Rahman", Verified: true},
	{Email: "pending@mail.com", Name: "Pending", Surname: "User", Verified: false},
}

var seedRooms = []roomDatamodel.Room{
	{Name: "Orion", Location: "1F East", Capacity: 4, Description: "Huddle room with a screen"},
	{Name: "Lyra", Location: "2F West", Capacity: 10, Description: "Board room"},
	{Name: "Vega", Location: "3F", Capacity: 20, Description: "Training room with projector"},
}

const seedPassword = "password"

// seed is idempotent: existing users and rooms are kept and only the admin's
// permission row is rewritten.
func seed(ctx context.Context, gdb *gorm.DB, bcryptCost int, clear bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db := gdb.WithContext(ctx)

	if clear {
		for _, model := range []interface{}{
			&reservationDatamodel.Reservation{},
			&roomDatamodel.Room{},
			&permissionDatamodel.UserPermission{},
			&userDatamodel.User{},
		} {
			if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear %T: %w", model, err)
			}
		}
		fmt.Println("Cleared existing data")
	}

	hash, err := password.Hash(seedPassword, bcryptCost)
	if err != nil {
		return err
	}

	permRepo := permissionPostgres.NewPermissionRepository(gdb)
	for _, su := range seedUsers {
		var u userDatamodel.User
		err := db.Where("LOWER(email) = LOWER(?)", su.Email).First(&u).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			u = userDatamodel.User{
				Email:        su.Email,
				Name:         su.Name,
				Surname:      su.Surname,
				PasswordHash: hash,
				IsVerified:   su.Verified,
			}
			if err := db.Create(&u).Error; err != nil {
				return fmt.Errorf("failed to insert user %s: %w", su.Email, err)
			}
			fmt.Println("Seeded user:", su.Email)
		case err != nil:
			return fmt.Errorf("failed to look up user %s: %w", su.Email, err)
		default:
			fmt.Println("user already exists:", su.Email)
		}

		if su.Admin {
			if err := permRepo.SetAll(ctx, u.ID, true, u.ID); err != nil {
				return fmt.Errorf("failed to grant permissions to %s: %w", su.Email, err)
			}
			fmt.Println("Granted all permissions to:", su.Email)
		}
	}

	for _, r := range seedRooms {
		r.IsActive = true
		res := db.Where("name = ?", r.Name).FirstOrCreate(&r)
		if res.Error != nil {
			return fmt.Errorf("failed to seed room %s: %w", r.Name, res.Error)
		}
		if res.RowsAffected > 0 {
			fmt.Println("Seeded room:", r.Name)
		}
	}

	fmt.Println("Seeding complete; every seeded user has password:", seedPassword)
	return nil
}
