package config

import (
	"errors"

	"github.com/minnehack2026-blugolds/backend/models"
	"github.com/minnehack2026-blugolds/backend/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Minnesota campuses, used when the universities table is empty.
var defaultUniversities = []models.University{
	{Name: "University of Minnesota Twin Cities", Latitude: 44.9740, Longitude: -93.2277},
	{Name: "University of St. Thomas", Latitude: 44.9420, Longitude: -93.1930},
	{Name: "Macalester College", Latitude: 44.9379, Longitude: -93.1691},
	{Name: "Hamline University", Latitude: 44.9655, Longitude: -93.1674},
	{Name: "Augsburg University", Latitude: 44.9664, Longitude: -93.2411},
	{Name: "Metropolitan State University", Latitude: 44.9560, Longitude: -93.0735},
	{Name: "St. Catherine University", Latitude: 44.9277, Longitude: -93.1847},
	{Name: "Minneapolis College", Latitude: 44.9724, Longitude: -93.2853},
	{Name: "Carleton College", Latitude: 44.4621, Longitude: -93.1538},
	{Name: "St. Olaf College", Latitude: 44.4618, Longitude: -93.1836},
	{Name: "Minnesota State University Mankato", Latitude: 44.1453, Longitude: -93.9990},
	{Name: "St. Cloud State University", Latitude: 45.5486, Longitude: -94.1524},
	{Name: "University of Minnesota Duluth", Latitude: 46.8182, Longitude: -92.0848},
	{Name: "University of Minnesota Rochester", Latitude: 44.0227, Longitude: -92.4630},
}

func SeedUniversities(db *gorm.DB, log *zap.Logger) error {
	var count int64
	if err := db.Model(&models.University{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	universities := make([]models.University, len(defaultUniversities))
	copy(universities, defaultUniversities)
	if err := db.Create(&universities).Error; err != nil {
		log.Error("failed to seed universities", zap.Error(err))
		return err
	}

	log.Info("universities seeded", zap.Int("count", len(universities)))
	return nil
}

func SeedUsers(db *gorm.DB, log *zap.Logger) error {
	password, err := utils.HashPassword("password123")
	if err != nil {
		return err
	}

	users := []models.User{
		{Email: "seller@example.edu", Name: "Sam Seller", PasswordHash: password},
		{Email: "buyer@example.edu", Name: "Bea Buyer", PasswordHash: password},
	}

	for _, user := range users {
		var existing models.User
		err := db.Where("email = ?", user.Email).First(&existing).Error
		switch {
		case err == nil:
			log.Debug("user already exists", zap.String("email", user.Email))
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := db.Create(&user).Error; err != nil {
				log.Error("failed to seed user", zap.String("email", user.Email), zap.Error(err))
				return err
			}
			log.Info("user seeded", zap.String("email", user.Email), zap.Uint("id", user.ID))
		default:
			return err
		}
	}

	return nil
}
