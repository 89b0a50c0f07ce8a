package application

import (
	"context"

	"go.uber.org/zap"

	"github.com/loca-mat/service-rental/internal/domain/rental"
)

// ClientDTO is the response representation of a client.
type ClientDTO struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	VIP       bool   `json:"vip"`
}

// CreateClientInput carries the fields needed to register a client.
type CreateClientInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	VIP       bool
}

// ClientService manages the client roster.
type ClientService struct {
	store  rental.InventoryStore
	logger *zap.Logger
}

// NewClientService creates a new ClientService.
func NewClientService(store rental.InventoryStore, logger *zap.Logger) *ClientService {
	return &ClientService{store: store, logger: logger}
}

// CreateClient registers a new client.
func (s *ClientService) CreateClient(ctx context.Context, input CreateClientInput) (*ClientDTO, error) {
	client, err := rental.NewClient(
		input.FirstName, input.LastName, input.Email,
		input.Phone, input.Address,
		input.VIP,
	)
	if err != nil {
		return nil, err
	}

	id, err := s.store.CreateClient(ctx, client)
	if err != nil {
		return nil, err
	}

	s.logger.Info("client created",
		zap.Uint64("client_id", id),
		zap.String("email", client.Email()),
	)
	dto := toClientDTO(rental.ReconstructClient(
		id,
		client.FirstName(), client.LastName(), client.Email(),
		client.Phone(), client.Address(),
		client.IsVIP(),
	))
	return &dto, nil
}

// GetClient retrieves a single client.
func (s *ClientService) GetClient(ctx context.Context, clientID uint64) (*ClientDTO, error) {
	client, err := s.store.FetchClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	dto := toClientDTO(client)
	return &dto, nil
}

// ListClients retrieves all clients.
func (s *ClientService) ListClients(ctx context.Context) ([]ClientDTO, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	return dtos, nil
}

// SetVIP toggles a client's VIP pricing flag.
func (s *ClientService) SetVIP(ctx context.Context, clientID uint64, vip bool) (*ClientDTO, error) {
	if err := s.store.UpdateClientVIP(ctx, clientID, vip); err != nil {
		return nil, err
	}

	s.logger.Info("client vip flag updated",
		zap.Uint64("client_id", clientID),
		zap.Bool("vip", vip),
	)
	return s.GetClient(ctx, clientID)
}

// DeleteClient removes a client. Clients referenced by contracts are
// protected by a RESTRICT foreign key.
func (s *ClientService) DeleteClient(ctx context.Context, clientID uint64) error {
	if err := s.store.DeleteClient(ctx, clientID); err != nil {
		return err
	}

	s.logger.Info("client deleted", zap.Uint64("client_id", clientID))
	return nil
}

func toClientDTO(c *rental.Client) ClientDTO {
	return ClientDTO{
		ID:        c.ID(),
		FirstName: c.FirstName(),
		LastName:  c.LastName(),
		Email:     c.Email(),
		Phone:     c.Phone(),
		Address:   c.Address(),
		VIP:       c.IsVIP(),
	}
}
