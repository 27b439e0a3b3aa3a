package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const topCount = 3

// Resource names one catalog for messages, log fields and event names.
type Resource struct {
	// Singular is used in messages, e.g. "product" or "inventory item".
	Singular string
	// Plural is used in list log lines, e.g. "products".
	Plural string
	// EventPrefix prefixes published event names, e.g. "product".
	EventPrefix string
}

var (
	ProductResource       = Resource{Singular: "product", Plural: "products", EventPrefix: "product"}
	InventoryItemResource = Resource{Singular: "inventory item", Plural: "inventory items", EventPrefix: "inventoryitem"}
)

// CatalogService handles business logic for one parent/option catalog.
// The same implementation serves products and inventory items.
type CatalogService[P any, O any, PP models.ParentPtr[P], OP models.OptionPtr[O]] struct {
	resource Resource
	repo     repositories.CatalogRepository[P, O]
	validate *validator.Validate
	log      logrus.FieldLogger
	events   EventPublisher
}

// NewCatalogService creates a new CatalogService. events may be nil.
func NewCatalogService[P any, O any, PP models.ParentPtr[P], OP models.OptionPtr[O]](
	resource Resource,
	repo repositories.CatalogRepository[P, O],
	log logrus.FieldLogger,
	events EventPublisher,
) *CatalogService[P, O, PP, OP] {
	return &CatalogService[P, O, PP, OP]{
		resource: resource,
		repo:     repo,
		validate: NewValidator(),
		log:      log.WithField("resource", resource.Singular),
		events:   events,
	}
}

// ProductService serves the product catalog.
type ProductService = CatalogService[models.Product, models.ProductOption, *models.Product, *models.ProductOption]

// InventoryItemService serves the inventory catalog.
type InventoryItemService = CatalogService[models.InventoryItem, models.InventoryItemOption, *models.InventoryItem, *models.InventoryItemOption]

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.CatalogRepository[models.Product, models.ProductOption], log logrus.FieldLogger, events EventPublisher) *ProductService {
	return NewCatalogService[models.Product, models.ProductOption, *models.Product, *models.ProductOption](ProductResource, repo, log, events)
}

// NewInventoryItemService creates a new InventoryItemService.
func NewInventoryItemService(repo repositories.CatalogRepository[models.InventoryItem, models.InventoryItemOption], log logrus.FieldLogger, events EventPublisher) *InventoryItemService {
	return NewCatalogService[models.InventoryItem, models.InventoryItemOption, *models.InventoryItem, *models.InventoryItemOption](InventoryItemResource, repo, log, events)
}

// NewValidator returns a validator reporting fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *CatalogService[P, O, PP, OP]) op(name string, fields logrus.Fields) *logrus.Entry {
	return s.log.WithField("op", name).WithFields(fields)
}

func (s *CatalogService[P, O, PP, OP]) check(entity interface{}) error {
	err := s.validate.Struct(entity)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return invalidArgument("Validation failed: %v", err)
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return invalidArgument("Validation failed: %s", strings.Join(messages, "; "))
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, invalidArgument("%s must be a valid UUID.", what)
	}
	return id, nil
}

func (s *CatalogService[P, O, PP, OP]) parentDTOs(parents []P) []models.ParentDTO {
	dtos := make([]models.ParentDTO, 0, len(parents))
	for i := range parents {
		dtos = append(dtos, PP(&parents[i]).ToDTO())
	}
	return dtos
}

// List returns every parent, or those named exactly name when name is not empty.
// Store failures are logged and yield an empty list.
func (s *CatalogService[P, O, PP, OP]) List(ctx context.Context, name string) []models.ParentDTO {
	entry := s.op("List", logrus.Fields{"name": name})

	var (
		parents []P
		err     error
	)
	if name == "" {
		parents, err = s.repo.ListParents(ctx)
	} else {
		parents, err = s.repo.ListParentsByName(ctx, name)
	}
	if err != nil {
		entry.WithError(err).Error("Failed to list")
		return []models.ParentDTO{}
	}

	entry.WithField("count", len(parents)).Infof("Found %d %s", len(parents), s.resource.Plural)
	return s.parentDTOs(parents)
}

// Top3 returns up to three parents ordered by price, highest first.
func (s *CatalogService[P, O, PP, OP]) Top3(ctx context.Context) []models.ParentDTO {
	entry := s.op("Top3", nil)

	parents, err := s.repo.TopParentsByPrice(ctx, topCount)
	if err != nil {
		entry.WithError(err).Error("Failed to get top 3")
		return []models.ParentDTO{}
	}

	entry.WithField("count", len(parents)).Infof("Found top %d %s", len(parents), s.resource.Plural)
	return s.parentDTOs(parents)
}

// ListByOptionName returns parents having an option named name, ignoring case.
func (s *CatalogService[P, O, PP, OP]) ListByOptionName(ctx context.Context, name string) ([]models.ParentDTO, error) {
	entry := s.op("ListByOptionName", logrus.Fields{"option_name": name})

	if name == "" {
		entry.Info("Option name must be provided")
		return nil, invalidArgument("Option name must be provided")
	}

	parents, err := s.repo.ListParentsByOptionName(ctx, name)
	if err != nil {
		entry.WithError(err).Error("Failed to list by option name")
		return []models.ParentDTO{}, nil
	}

	entry.WithField("count", len(parents)).Infof("Found %d %s with option name %s", len(parents), s.resource.Plural, name)
	return s.parentDTOs(parents), nil
}

// Get returns the parent with the given id.
func (s *CatalogService[P, O, PP, OP]) Get(ctx context.Context, rawID string) (models.ParentDTO, error) {
	entry := s.op("Get", logrus.Fields{"id": rawID})

	id, err := parseID(rawID, "id")
	if err != nil {
		entry.WithError(err).Error("Invalid id")
		return models.ParentDTO{}, err
	}

	parent, err := s.repo.GetParent(ctx, id)
	if err != nil {
		entry.WithError(err).Info("Not found")
		return models.ParentDTO{}, notFound("No %s with id %s was found.", s.resource.Singular, id)
	}

	entry.Info("Found")
	return PP(parent).ToDTO(), nil
}

// Create stores a new parent under a freshly generated id and returns it as
// read back from the store.
func (s *CatalogService[P, O, PP, OP]) Create(ctx context.Context, req *models.ParentRequest) (models.ParentDTO, error) {
	entry := s.op("Create", nil)

	if req == nil {
		entry.Error("No request body")
		return models.ParentDTO{}, invalidArgument("A new %s must be provided.", s.resource.Singular)
	}

	parent := new(P)
	PP(parent).Assign(*req)
	if err := s.check(parent); err != nil {
		entry.WithError(err).Error("Invalid request")
		return models.ParentDTO{}, err
	}
	id := uuid.New()
	PP(parent).SetID(id)
	entry = entry.WithField("id", id)

	if err := s.repo.CreateParent(ctx, parent); err != nil {
		entry.WithError(err).Error("Failed to persist")
	}

	stored, err := s.repo.GetParent(ctx, id)
	if err != nil {
		entry.WithError(err).Errorf("Error creating a new %s", s.resource.Singular)
		return models.ParentDTO{}, notFound("Unable to read back the new %s.", s.resource.Singular)
	}

	entry.Info("Created")
	s.publish("created", id, uuid.Nil)
	return PP(stored).ToDTO(), nil
}

// Update replaces the mutable fields of a parent. A store failure after the
// existence check, including a concurrent change, is logged and not reported.
func (s *CatalogService[P, O, PP, OP]) Update(ctx context.Context, rawID string, req *models.ParentRequest) error {
	entry := s.op("Update", logrus.Fields{"id": rawID})

	id, err := parseID(rawID, "id")
	if err != nil {
		entry.WithError(err).Error("Invalid id")
		return err
	}
	if req == nil {
		entry.Error("No request body")
		return invalidArgument("%s must be provided.", s.resource.Singular)
	}
	candidate := new(P)
	PP(candidate).Assign(*req)
	if err := s.check(candidate); err != nil {
		entry.WithError(err).Error("Invalid request")
		return err
	}

	parent, err := s.repo.GetParent(ctx, id)
	if err != nil {
		entry.WithError(err).Error("Not found")
		return notFound("Unable to find %s with id %s.", s.resource.Singular, id)
	}

	PP(parent).Assign(*req)
	if err := s.repo.UpdateParent(ctx, parent); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			entry.WithError(err).Warn("Update conflict ignored")
		} else {
			entry.WithError(err).Error("Failed to persist")
		}
		return nil
	}

	entry.Info("Updated")
	s.publish("updated", id, uuid.Nil)
	return nil
}

// Delete removes a parent and, in the same transaction, all of its options.
func (s *CatalogService[P, O, PP, OP]) Delete(ctx context.Context, rawID string) error {
	entry := s.op("Delete", logrus.Fields{"id": rawID})

	id, err := parseID(rawID, "id")
	if err != nil {
		entry.WithError(err).Error("Invalid id")
		return err
	}

	if _, err := s.repo.GetParent(ctx, id); err != nil {
		entry.WithError(err).Info("Not found")
		return notFound("Unable to find %s with id %s.", s.resource.Singular, id)
	}

	if err := s.repo.DeleteParent(ctx, id); err != nil {
		entry.WithError(err).Error("Failed to delete")
		return nil
	}

	entry.Info("Deleted")
	s.publish("deleted", id, uuid.Nil)
	return nil
}

// ListOptions returns the options of a parent. An unknown parent has no options.
func (s *CatalogService[P, O, PP, OP]) ListOptions(ctx context.Context, rawParentID string) ([]models.OptionDTO, error) {
	entry := s.op("ListOptions", logrus.Fields{"id": rawParentID})

	parentID, err := parseID(rawParentID, s.resource.Singular+" id")
	if err != nil {
		entry.WithError(err).Error("Invalid id")
		return nil, err
	}

	options, err := s.repo.ListOptions(ctx, parentID)
	if err != nil {
		entry.WithError(err).Error("Failed to list options")
		return []models.OptionDTO{}, nil
	}

	dtos := make([]models.OptionDTO, 0, len(options))
	for i := range options {
		dtos = append(dtos, OP(&options[i]).ToDTO())
	}
	entry.WithField("count", len(dtos)).Infof("Found %d options", len(dtos))
	return dtos, nil
}

// findOption loads an option and checks that it belongs to parentID.
func (s *CatalogService[P, O, PP, OP]) findOption(ctx context.Context, entry *logrus.Entry, parentID, optionID uuid.UUID) (*O, error) {
	option, err := s.repo.GetOption(ctx, optionID)
	if err != nil {
		entry.WithError(err).Info("Option not found")
		return nil, notFound("%s option with id %s was not found.", s.resource.Singular, optionID)
	}
	if OP(option).GetParentID() != parentID {
		entry.WithField("owner_id", OP(option).GetParentID()).Error("Option belongs to another parent")
		return nil, invalidArgument("%s id of the option must match the %s this option belongs to.",
			s.resource.Singular, s.resource.Singular)
	}
	return option, nil
}

func (s *CatalogService[P, O, PP, OP]) parseOptionPath(rawParentID, rawOptionID string) (uuid.UUID, uuid.UUID, error) {
	parentID, err := parseID(rawParentID, s.resource.Singular+" id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	optionID, err := parseID(rawOptionID, "option id")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return parentID, optionID, nil
}

// GetOption returns one option of a parent.
func (s *CatalogService[P, O, PP, OP]) GetOption(ctx context.Context, rawParentID, rawOptionID string) (models.OptionDTO, error) {
	entry := s.op("GetOption", logrus.Fields{"id": rawParentID, "option_id": rawOptionID})

	parentID, optionID, err := s.parseOptionPath(rawParentID, rawOptionID)
	if err != nil {
		entry.WithError(err).Error("Invalid id")
		return models.OptionDTO{}, err
	}

	option, err := s.findOption(ctx, entry, parentID, optionID)
	if err != nil {
		return models.OptionDTO{}, err
	}

	entry.Info("Found option")
	return OP(option).ToDTO(), nil
}

// CreateOption adds an option to an existing parent.
func (s *CatalogService[P, O, PP, OP]) CreateOption(ctx context.Context, rawParentID string, req *models.OptionRequest) (models.OptionDTO, error) {
	entry := s.op("CreateOption", logrus.Fields{"id": rawParentID})

	parentID, err := parseID(rawParentID, s.resource.Singular+" id")
	if err != nil {
		entry.WithError(err).Error("Invalid id")
		return models.OptionDTO{}, err
	}
	if req == nil {
		entry.Error("No request body")
		return models.OptionDTO{}, invalidArgument("%s option must be provided.", s.resource.Singular)
	}
	option := new(O)
	OP(option).Assign(*req)
	OP(option).SetParentID(parentID)
	if err := s.check(option); err != nil {
		entry.WithError(err).Error("Invalid request")
		return models.OptionDTO{}, err
	}

	if _, err := s.repo.GetParent(ctx, parentID); err != nil {
		entry.WithError(err).Info("Parent not found")
		return models.OptionDTO{}, notFound("Unable to find %s with id %s.", s.resource.Singular, parentID)
	}

	optionID := uuid.New()
	OP(option).SetID(optionID)
	entry = entry.WithField("option_id", optionID)

	if err := s.repo.CreateOption(ctx, option); err != nil {
		entry.WithError(err).Error("Failed to persist option")
	}

	stored, err := s.repo.GetOption(ctx, optionID)
	if err != nil {
		entry.WithError(err).Errorf("Error creating a new %s option", s.resource.Singular)
		return models.OptionDTO{}, notFound("Unable to read back the new %s option.", s.resource.Singular)
	}

	entry.Info("Created option")
	s.publish("option.created", optionID, parentID)
	return OP(stored).ToDTO(), nil
}

// UpdateOption replaces the name and description of an option.
func (s *CatalogService[P, O, PP, OP]) UpdateOption(ctx context.Context, rawParentID, rawOptionID string, req *models.OptionRequest) error {
	entry := s.op("UpdateOption", logrus.Fields{"id": rawParentID, "option_id": rawOptionID})

	parentID, optionID, err := s.parseOptionPath(rawParentID, rawOptionID)
	if err != nil {
		entry.WithError(err).Error("Invalid id")
		return err
	}
	if req == nil {
		entry.Error("No request body")
		return invalidArgument("%s option must be provided.", s.resource.Singular)
	}
	candidate := new(O)
	OP(candidate).Assign(*req)
	OP(candidate).SetParentID(parentID)
	if err := s.check(candidate); err != nil {
		entry.WithError(err).Error("Invalid request")
		return err
	}

	option, err := s.findOption(ctx, entry, parentID, optionID)
	if err != nil {
		return err
	}

	OP(option).Assign(*req)
	if err := s.repo.UpdateOption(ctx, option); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			entry.WithError(err).Warn("Option update conflict ignored")
		} else {
			entry.WithError(err).Error("Failed to persist option")
		}
		return nil
	}

	entry.Info("Updated option")
	s.publish("option.updated", optionID, parentID)
	return nil
}

// DeleteOption removes one option of a parent.
func (s *CatalogService[P, O, PP, OP]) DeleteOption(ctx context.Context, rawParentID, rawOptionID string) error {
	entry := s.op("DeleteOption", logrus.Fields{"id": rawParentID, "option_id": rawOptionID})

	parentID, optionID, err := s.parseOptionPath(rawParentID, rawOptionID)
	if err != nil {
		entry.WithError(err).Error("Invalid id")
		return err
	}

	if _, err := s.findOption(ctx, entry, parentID, optionID); err != nil {
		return err
	}

	if err := s.repo.DeleteOption(ctx, optionID); err != nil {
		entry.WithError(err).Error("Failed to delete option")
		return nil
	}

	entry.Info("Deleted option")
	s.publish("option.deleted", optionID, parentID)
	return nil
}
