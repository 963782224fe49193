package storage

import (
	"gatherings-server/models"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

func PerformMigrations(db *gorm.DB) {
	db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupRole{},
		&models.UserGroupRole{},
		&models.Invitation{},
		&models.Event{},
		&models.Image{},
		&models.AuditLog{},
	)

	SeedGroupRoles(db)
}

// SeedGroupRoles inserts the static role reference data when missing.
func SeedGroupRoles(db *gorm.DB) {
	roles := []models.GroupRole{
		{
			Name:        models.RoleAdmin,
			Description: "Group administrator with full permissions",
			Permissions: datatypes.JSON(`["manage_group","manage_members","manage_roles","delete_group"]`),
		},
		{
			Name:        models.RoleModerator,
			Description: "Group moderator with limited administrative permissions",
			Permissions: datatypes.JSON(`["manage_members","moderate_content"]`),
		},
		{
			Name:        models.RoleMember,
			Description: "Regular group member with basic permissions",
			Permissions: datatypes.JSON(`["view_group","participate"]`),
		},
	}

	for _, role := range roles {
		var existing models.GroupRole
		if err := db.Where("name = ?", role.Name).First(&existing).Error; err != nil {
			db.Create(&role)
		}
	}
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	PerformMigrations(db)
	return db
}
