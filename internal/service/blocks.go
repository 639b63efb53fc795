package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"beautybook/internal/calendar"
	apperrors "beautybook/internal/errors"
	"beautybook/internal/logger"
	"beautybook/internal/models"
	"beautybook/internal/repository"
)

// BlockService lets operators close and reopen individual slots.
type BlockService struct {
	blocks BlockStore
}

func NewBlockService(blocks BlockStore) *BlockService {
	return &BlockService{blocks: blocks}
}

func (s *BlockService) Create(ctx context.Context, req *models.CreateBlockRequest) (*models.CalendarBlock, error) {
	date, err := parseSlot(req.Date, req.TimeSlot)
	if err != nil {
		return nil, err
	}

	block := &models.CalendarBlock{Date: date, TimeSlot: req.TimeSlot, Reason: req.Reason}
	if err := s.blocks.Create(ctx, block); err != nil {
		if errors.Is(err, repository.ErrBlockExists) {
			return nil, apperrors.Conflict("time slot is already blocked")
		}
		return nil, fmt.Errorf("failed to create calendar block: %w", err)
	}

	logger.WithContext(ctx).Info("Calendar block created",
		"block_id", block.ID, "date", req.Date, "time_slot", block.TimeSlot)

	return block, nil
}

func (s *BlockService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.blocks.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete calendar block: %w", err)
	}
	if !deleted {
		return apperrors.NotFound("calendar block")
	}

	logger.WithContext(ctx).Info("Calendar block deleted", "block_id", id)
	return nil
}

func (s *BlockService) List(ctx context.Context, start, end time.Time) ([]models.CalendarBlock, error) {
	blocks, err := s.blocks.ListInRange(ctx, calendar.DateOf(start), calendar.DateOf(end))
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar blocks: %w", err)
	}
	return blocks, nil
}
