package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/nunomansilhas/ProduFlow/config"
	"github.com/nunomansilhas/ProduFlow/model/entity"
)

var seedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Insert baseline stations and categories into an empty database",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			os.Exit(1)
		}
		if err := seed(db); err != nil {
			fmt.Printf("Seed failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Seed data inserted.")
	},
}

func seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entity.Station{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			stations := []entity.Station{
				{Name: "Cutting", DefaultSeq: 1, Color: "#dc3545", Icon: "fa-scissors", Active: true},
				{Name: "Machining", DefaultSeq: 2, Color: "#fd7e14", Icon: "fa-gears", Active: true},
				{Name: "Assembly", DefaultSeq: 3, Color: "#0d6efd", Icon: "fa-screwdriver-wrench", Active: true},
				{Name: "Finishing", DefaultSeq: 4, Color: "#198754", Icon: "fa-brush", Active: true},
				{Name: "Quality Control", DefaultSeq: 5, Color: "#6f42c1", Icon: "fa-magnifying-glass", Active: true},
			}
			if err := tx.Create(&stations).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&entity.Category{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			categories := []entity.Category{
				{Name: "Furniture", Kind: "product"},
				{Name: "Components", Kind: "product"},
				{Name: "Metals", Kind: "material"},
				{Name: "Wood", Kind: "material"},
				{Name: "Fasteners", Kind: "material"},
			}
			if err := tx.Create(&categories).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
