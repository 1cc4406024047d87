package database

import (
	"fmt"
	"log"

	"real-estate-market/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// ConnectSQLite opens a local SQLite database, used for development nodes
func ConnectSQLite(path string) error {
	var err error

	DB, err = gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}

	// Calls are serialized and SQLite allows a single writer.
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)

	log.Printf("SQLite database opened at %s", path)
	return nil
}

// AutoMigrate runs automatic migrations for all models on DB
func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate creates or updates the tables of every model group on db
func Migrate(db *gorm.DB) error {
	groups := []struct {
		name   string
		models []interface{}
	}{
		{"ledger", []interface{}{
			&models.ChainBlock{},
			&models.CurrencyAccount{},
			&models.FungibleAsset{},
			&models.AssetAccount{},
			&models.NftCollection{},
			&models.NftItem{},
			&models.NftFraction{},
			&models.WhitelistedAccount{},
		}},
		{"marketplace", []interface{}{
			&models.Counter{},
			&models.Region{},
			&models.Location{},
			&models.ObjectListing{},
			&models.ListedToken{},
			&models.TokenOwnerDetails{},
			&models.AssetDetails{},
			&models.NftDetails{},
			&models.PropertyOwnerToken{},
			&models.TokenListing{},
			&models.Offer{},
			&models.RealEstateLawyer{},
			&models.PropertyLawyer{},
		}},
		{"management", []interface{}{
			&models.LettingAgent{},
			&models.LettingAgentLocation{},
			&models.LocationAgentPool{},
			&models.PropertyLettingAgent{},
			&models.PropertyReserve{},
			&models.PropertyDebt{},
			&models.StoredFunds{},
		}},
		{"governance", []interface{}{
			&models.Proposal{},
			&models.Challenge{},
			&models.VoteStats{},
			&models.VoteRecord{},
			&models.VotingRound{},
		}},
		{"events", []interface{}{
			&models.ChainEvent{},
		}},
	}

	for _, group := range groups {
		if err := db.AutoMigrate(group.models...); err != nil {
			return fmt.Errorf("failed to migrate %s models: %w", group.name, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
