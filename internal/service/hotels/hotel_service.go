package hotels

import (
	"context"

	"github.com/Domenick1991/tripbooking/internal/domain"
	"github.com/Domenick1991/tripbooking/internal/repository"
	"github.com/sirupsen/logrus"
)

type HotelUseCase interface {
	GetByID(ctx context.Context, id int64) (*domain.Hotel, error)
}

type HotelCache interface {
	GetHotel(ctx context.Context, id int64) (*domain.Hotel, error)
	SetHotel(ctx context.Context, hotel *domain.Hotel) error
}

type HotelService struct {
	repo  repository.HotelRepository
	cache HotelCache
	log   logrus.FieldLogger
}

func NewHotelService(repo repository.HotelRepository, cache HotelCache, log logrus.FieldLogger) *HotelService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HotelService{repo: repo, cache: cache, log: log}
}

// GetByID serves from the cache when possible. Cache failures fall back
// to the database.
func (s *HotelService) GetByID(ctx context.Context, id int64) (*domain.Hotel, error) {
	if s.cache != nil {
		hotel, err := s.cache.GetHotel(ctx, id)
		if err != nil {
			s.log.WithError(err).WithField("hotel_id", id).Warn("hotel cache read failed")
		} else if hotel != nil {
			return hotel, nil
		}
	}

	hotel, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetHotel(ctx, hotel); err != nil {
			s.log.WithError(err).WithField("hotel_id", id).Warn("hotel cache write failed")
		}
	}
	return hotel, nil
}

var _ HotelUseCase = (*HotelService)(nil)
