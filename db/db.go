package db

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AmmarC10/ContractinGO-BE/config"
	"github.com/AmmarC10/ContractinGO-BE/models"
)

type GormDB struct {
	DB *gorm.DB
}

func GetDB(c *config.Config) *GormDB {
	gormDB := &GormDB{}
	gormDB.Init(c)
	return gormDB
}

func (g *GormDB) Init(c *config.Config) {
	g.DB = getPostgresDB(c)

	if err := migrate(g.DB); err != nil {
		log.Fatalf("unable to run migrations: %v", err)
	}
}

func getPostgresDB(c *config.Config) *gorm.DB {
	postgresDSN := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort)

	gormConfig := &gorm.Config{}
	if c.Env != "prod" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		DSN: postgresDSN,
	}), gormConfig)
	if err != nil {
		log.Fatal(err)
	}

	return gormDB
}

// SeedAdTypes inserts the fixed ad categories if they are missing.
func SeedAdTypes(db *gorm.DB) error {
	adTypes := []models.AdType{
		{Name: "Photography", Icon: "https://cdn.contractingo.com/icons/photography.png"},
		{Name: "Web Development", Icon: "https://cdn.contractingo.com/icons/web.png"},
		{Name: "Graphic Design", Icon: "https://cdn.contractingo.com/icons/design.png"},
		{Name: "Tutoring", Icon: "https://cdn.contractingo.com/icons/tutoring.png"},
		{Name: "Home Repair", Icon: "https://cdn.contractingo.com/icons/repair.png"},
		{Name: "Moving", Icon: "https://cdn.contractingo.com/icons/moving.png"},
		{Name: "Cleaning", Icon: "https://cdn.contractingo.com/icons/cleaning.png"},
		{Name: "Other", Icon: "https://cdn.contractingo.com/icons/other.png"},
	}

	for _, adType := range adTypes {
		if err := db.FirstOrCreate(&adType, models.AdType{Name: adType.Name}).Error; err != nil {
			return err
		}
	}

	return nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.DeviceToken{},
		&models.AdType{},
		&models.Ad{},
		&models.Conversation{},
		&models.Message{},
		&models.MessageAttachment{},
	)
}
