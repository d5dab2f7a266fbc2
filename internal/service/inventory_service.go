package service

import (
	"context"
	"errors"
	"strings"

	"hac-portal/internal/domain"
	"hac-portal/internal/repository"
)

var (
	// ErrNameRequired rejects inventory items without a name.
	ErrNameRequired = errors.New("inventory item name is required")
	// ErrNoSelection is returned when an export selection matches nothing.
	ErrNoSelection = errors.New("no inventory items selected")
)

// InventoryService manages the flat equipment inventory.
type InventoryService interface {
	Seed(ctx context.Context) error
	Create(ctx context.Context, item *domain.InventoryItem) error
	Get(ctx context.Context, id int64) (*domain.InventoryItem, error)
	Update(ctx context.Context, item *domain.InventoryItem) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]domain.InventoryItem, error)
	// Selection resolves an export request: an empty id list means all
	// items; a non-empty list that matches nothing is ErrNoSelection.
	Selection(ctx context.Context, ids []int64) ([]domain.InventoryItem, error)
}

type inventoryService struct {
	items repository.InventoryRepository
}

func NewInventoryService(items repository.InventoryRepository) InventoryService {
	return &inventoryService{items: items}
}

// Seed loads the initial equipment list the first time the portal runs
// against an empty database.
func (s *inventoryService) Seed(ctx context.Context) error {
	n, err := s.items.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, item := range defaultInventory() {
		if _, err := s.items.Create(ctx, &item); err != nil {
			return err
		}
	}
	return nil
}

func (s *inventoryService) Create(ctx context.Context, item *domain.InventoryItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return ErrNameRequired
	}
	_, err := s.items.Create(ctx, item)
	return err
}

func (s *inventoryService) Get(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	return s.items.Get(ctx, id)
}

func (s *inventoryService) Update(ctx context.Context, item *domain.InventoryItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if item.Name == "" {
		return ErrNameRequired
	}
	return s.items.Update(ctx, item)
}

func (s *inventoryService) Delete(ctx context.Context, id int64) error {
	return s.items.Delete(ctx, id)
}

func (s *inventoryService) List(ctx context.Context) ([]domain.InventoryItem, error) {
	return s.items.List(ctx)
}

func (s *inventoryService) Selection(ctx context.Context, ids []int64) ([]domain.InventoryItem, error) {
	if len(ids) == 0 {
		return s.items.List(ctx)
	}
	items, err := s.items.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoSelection
	}
	return items, nil
}

func defaultInventory() []domain.InventoryItem {
	return []domain.InventoryItem{
		{Name: "Botas de Hule", Brand: "Varios", Color: "Negro", Quantity: "7", Status: "Bueno", Location: "Estante Cochera Izquierda"},
		{Name: "Cascos de Seguridad", Brand: "Truper", Color: "Blanco", Quantity: "5", Status: "Bueno", Location: "Estante Cochera Izquierda"},
		{Name: "Chalecos Reflectivos", Brand: "Varios", Color: "Naranja", Quantity: "6", Status: "Regular", Location: "Estante Cochera Derecha"},
		{Name: "GPS de Mano", Brand: "Garmin", Color: "Gris", Quantity: "2", Status: "Bueno", Location: "Oficina Principal"},
		{Name: "Medidor Multiparámetro", Brand: "Hanna", Color: "Azul", Quantity: "1", Status: "Bueno", Location: "Laboratorio"},
	}
}
