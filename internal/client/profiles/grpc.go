package profiles

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/rentable/internal/client/client"
	"github.com/dmitrijs2005/rentable/internal/client/models"
	"github.com/dmitrijs2005/rentable/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
)

type GRPCStore struct {
	client rpc.ProfilesClient
}

func NewGRPCStore(cc grpc.ClientConnInterface) *GRPCStore {
	return &GRPCStore{client: rpc.NewProfilesClient(cc)}
}

func (s *GRPCStore) Select(ctx context.Context, column, value string) ([]models.Profile, error) {
	resp, err := s.client.Select(ctx, &rpc.SelectProfilesRequest{Column: column, Value: value})
	if err != nil {
		return nil, client.MapError(err)
	}
	out := make([]models.Profile, 0, len(resp.Rows))
	for _, row := range resp.Rows {
		out = append(out, fromWire(row))
	}
	return out, nil
}

func (s *GRPCStore) Single(ctx context.Context, column, value string) (*models.Profile, error) {
	rows, err := s.Select(ctx, column, value)
	if err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, fmt.Errorf("%w: %s=%s", ErrNotFound, column, value)
	case 1:
		return &rows[0], nil
	default:
		return nil, fmt.Errorf("%w: %s=%s", ErrMultipleRows, column, value)
	}
}

func (s *GRPCStore) Insert(ctx context.Context, p models.Profile) error {
	_, err := s.client.Insert(ctx, &rpc.InsertProfileRequest{Profile: toWire(p)})
	if err != nil {
		err = client.MapError(err)
		if client.IsCode(err, codes.AlreadyExists) {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		return err
	}
	return nil
}

// Update applies patch to row id. A patch that matches no row is
// ErrNotFound.
func (s *GRPCStore) Update(ctx context.Context, id string, patch models.ProfilePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	resp, err := s.client.Update(ctx, &rpc.UpdateProfileRequest{ID: id, Patch: patchToWire(patch)})
	if err != nil {
		return client.MapError(err)
	}
	if resp.Rows == 0 {
		return fmt.Errorf("%w: id=%s", ErrNotFound, id)
	}
	return nil
}

func fromWire(p rpc.Profile) models.Profile {
	return models.Profile{
		ID:              p.ID,
		Email:           p.Email,
		FullName:        p.FullName,
		DateOfBirth:     p.DateOfBirth,
		PhoneNumber:     p.PhoneNumber,
		Address:         p.Address,
		ProfileImageURL: p.ProfileImageURL,
		UserType:        models.UserType(p.UserType),
		CreatedAt:       p.CreatedAt,
	}
}

func toWire(p models.Profile) rpc.Profile {
	return rpc.Profile{
		ID:              p.ID,
		Email:           p.Email,
		FullName:        p.FullName,
		DateOfBirth:     p.DateOfBirth,
		PhoneNumber:     p.PhoneNumber,
		Address:         p.Address,
		ProfileImageURL: p.ProfileImageURL,
		UserType:        string(p.UserType),
		CreatedAt:       p.CreatedAt,
	}
}

func patchToWire(p models.ProfilePatch) rpc.ProfilePatch {
	out := rpc.ProfilePatch{
		FullName:        p.FullName,
		DateOfBirth:     p.DateOfBirth,
		PhoneNumber:     p.PhoneNumber,
		Address:         p.Address,
		ProfileImageURL: p.ProfileImageURL,
	}
	if p.UserType != nil {
		t := string(*p.UserType)
		out.UserType = &t
	}
	return out
}
