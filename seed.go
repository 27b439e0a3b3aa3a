package main

import (
	"context"
	"fmt"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type seedEntry struct {
	Parent  models.ParentRequest
	Options []models.OptionRequest
}

func phoneOptions(colour, capacity string) []models.OptionRequest {
	return []models.OptionRequest{
		{Name: "Colour", Description: colour},
		{Name: "Capacity", Description: capacity},
	}
}

var inventorySeed = []seedEntry{
	{models.ParentRequest{Name: "iPhone 11", Description: "A very cool phone", Price: 1277, DeliveryPrice: 9}, phoneOptions("Red", "128Gb")},
	{models.ParentRequest{Name: "iPhone 7", Description: "Reliable", Price: 489, DeliveryPrice: 9}, phoneOptions("Black", "32Gb")},
	{models.ParentRequest{Name: "Samsung Galaxy S20+", Description: "Truly Cosmic", Price: 1444, DeliveryPrice: 9}, phoneOptions("Cloud Blue", "128Gb")},
	{models.ParentRequest{Name: "Samsung Galaxy S20 Ultra", Description: "Ultra Cosmic", Price: 1997, DeliveryPrice: 9}, phoneOptions("Cosmic Black", "128Gb")},
	{models.ParentRequest{Name: "Google Pixel 4 XL", Description: "Awesome phone", Price: 1229, DeliveryPrice: 9}, phoneOptions("Clearly White", "128Gb")},
}

// Product names are limited to 17 characters.
var productSeed = []seedEntry{
	{models.ParentRequest{Name: "iPhone 11", Description: "A very cool phone", Price: 1277, DeliveryPrice: 9}, phoneOptions("Red", "128Gb")},
	{models.ParentRequest{Name: "iPhone 7", Description: "Reliable", Price: 489, DeliveryPrice: 9}, phoneOptions("Black", "32Gb")},
	{models.ParentRequest{Name: "Galaxy S20+", Description: "Truly Cosmic", Price: 1444, DeliveryPrice: 9}, phoneOptions("Cloud Blue", "128Gb")},
	{models.ParentRequest{Name: "Galaxy S20 Ultra", Description: "Ultra Cosmic", Price: 1997, DeliveryPrice: 9}, phoneOptions("Cosmic Black", "128Gb")},
	{models.ParentRequest{Name: "Google Pixel 4 XL", Description: "Awesome phone", Price: 1229, DeliveryPrice: 9}, phoneOptions("Clearly White", "128Gb")},
}

// seedCatalog populates an empty catalog. A catalog holding any parent is left untouched.
func seedCatalog[P any, O any, PP models.ParentPtr[P], OP models.OptionPtr[O]](
	ctx context.Context,
	repo repositories.CatalogRepository[P, O],
	entries []seedEntry,
	log logrus.FieldLogger,
) error {
	existing, err := repo.ListParents(ctx)
	if err != nil {
		return fmt.Errorf("failed to check existing %s: %w", PP(new(P)).TableName(), err)
	}
	if len(existing) > 0 {
		log.WithField("count", len(existing)).Debug("Catalog already seeded")
		return nil
	}

	for _, entry := range entries {
		parent := PP(new(P))
		parent.Assign(entry.Parent)
		parent.SetID(uuid.New())
		if err := repo.CreateParent(ctx, (*P)(parent)); err != nil {
			return fmt.Errorf("failed to seed %s: %w", entry.Parent.Name, err)
		}

		for _, req := range entry.Options {
			option := OP(new(O))
			option.Assign(req)
			option.SetID(uuid.New())
			option.SetParentID(parent.GetID())
			if err := repo.CreateOption(ctx, (*O)(option)); err != nil {
				return fmt.Errorf("failed to seed option %s of %s: %w", req.Name, entry.Parent.Name, err)
			}
		}
		log.WithFields(logrus.Fields{"name": entry.Parent.Name, "id": parent.GetID()}).Info("Seeded")
	}
	return nil
}
