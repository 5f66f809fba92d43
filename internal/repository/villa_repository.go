package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/iliyamo/villa-booking/internal/model"
)

var villaColumns = []interface{}{
	"id", "name", "description", "short_description", "location", "price",
	"bedrooms", "bathrooms", "max_guests", "images", "amenities", "created_at",
}

// ListVillas returns every villa, oldest first.
func (s *SQLStore) ListVillas(ctx context.Context) ([]model.Villa, error) {
	q, args, err := s.build(s.dialect.From(tableVillas).
		Select(villaColumns...).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		Prepared(true))
	if err != nil {
		return nil, err
	}
	villas := []model.Villa{}
	if err := s.db.SelectContext(ctx, &villas, q, args...); err != nil {
		return nil, err
	}
	return villas, nil
}

// GetVilla fetches a villa by id.  ErrNotFound when absent.
func (s *SQLStore) GetVilla(ctx context.Context, id string) (model.Villa, error) {
	q, args, err := s.build(s.dialect.From(tableVillas).
		Select(villaColumns...).
		Where(goqu.C("id").Eq(id)).
		Limit(1).
		Prepared(true))
	if err != nil {
		return model.Villa{}, err
	}
	var v model.Villa
	if err := s.db.GetContext(ctx, &v, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Villa{}, ErrNotFound
		}
		return model.Villa{}, err
	}
	return v, nil
}

// CreateVilla inserts v.  A missing ID is generated and CreatedAt is
// stamped when zero.
func (s *SQLStore) CreateVilla(ctx context.Context, v *model.Villa) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now()
	}
	q, args, err := s.build(s.dialect.Insert(tableVillas).Rows(villaRecord(v)).Prepared(true))
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return err
	}
	return nil
}

// CountVillas is used by the seed command to skip already seeded databases.
func (s *SQLStore) CountVillas(ctx context.Context) (int, error) {
	q, args, err := s.build(s.dialect.From(tableVillas).
		Select(goqu.COUNT("*")).
		Prepared(true))
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.db.GetContext(ctx, &n, q, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func villaRecord(v *model.Villa) goqu.Record {
	images, _ := v.Images.Value()
	amenities, _ := v.Amenities.Value()
	return goqu.Record{
		"id":                v.ID,
		"name":              v.Name,
		"description":       v.Description,
		"short_description": v.ShortDescription,
		"location":          v.Location,
		"price":             v.Price,
		"bedrooms":          v.Bedrooms,
		"bathrooms":         v.Bathrooms,
		"max_guests":        v.MaxGuests,
		"images":            images,
		"amenities":         amenities,
		"created_at":        v.CreatedAt,
	}
}
