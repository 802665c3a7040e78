package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"mediarental-backend/internal/domain"
	"mediarental-backend/internal/logger"
	"mediarental-backend/internal/repository"
	"mediarental-backend/internal/utils"
)

type discountResolver struct {
	discounts repository.DiscountRepository
	tx        repository.Transactor
	clock     Clock
	maxDays   int
}

func NewDiscountResolver(discounts repository.DiscountRepository, tx repository.Transactor, clock Clock, maxDays int) DiscountResolver {
	return &discountResolver{
		discounts: discounts,
		tx:        tx,
		clock:     clock,
		maxDays:   maxDays,
	}
}

func (r *discountResolver) ActiveDiscount(ctx context.Context, titleID int32) (*domain.Discount, error) {
	return activeDiscount(ctx, r.discounts, titleID, r.clock.Now())
}

func activeDiscount(ctx context.Context, discounts repository.DiscountRepository, titleID int32, now time.Time) (*domain.Discount, error) {
	d, err := discounts.GetActive(ctx, titleID, now)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewStorageError("get active discount", err)
	}
	if !d.ActiveAt(now) {
		return nil, nil
	}
	return d, nil
}

func (r *discountResolver) Apply(ctx context.Context, titleID int32, percentage float64, endDate time.Time) (*domain.Discount, domain.DiscountOutcome, error) {
	logger.EnterMethod("discountResolver.Apply", "titleID", titleID, "percentage", percentage)

	now := r.clock.Now()
	today := domain.DateOf(now)
	end := domain.DateOf(endDate)

	bp, err := r.validate(titleID, percentage, today, end)
	if err != nil {
		logger.ExitMethodWithError("discountResolver.Apply", err)
		return nil, "", err
	}

	var (
		result  *domain.Discount
		outcome domain.DiscountOutcome
	)
	err = r.tx.WithinTx(ctx, nil, func(ctx context.Context, repos repository.Repositories) error {
		active, err := activeDiscount(ctx, repos.Discounts(), titleID, now)
		if err != nil {
			return err
		}

		switch {
		case active == nil:
			result = &domain.Discount{TitleID: titleID, PercentageBP: bp, StartDate: today, EndDate: end}
			outcome = domain.DiscountCreated
			return repos.Discounts().Create(ctx, result)
		case !end.After(active.EndDate):
			active.PercentageBP = bp
			active.EndDate = end
			result = active
			outcome = domain.DiscountUpdated
			return repos.Discounts().Update(ctx, active)
		default:
			result = &domain.Discount{TitleID: titleID, PercentageBP: bp, StartDate: today, EndDate: end}
			outcome = domain.DiscountSuperseded
			return repos.Discounts().Create(ctx, result)
		}
	})
	if err != nil {
		err = domain.NewStorageError("apply discount", err)
		logger.ExitMethodWithError("discountResolver.Apply", err)
		return nil, "", err
	}

	logger.Info("Discount applied", "titleID", titleID, "discountID", result.ID,
		"percentage", result.Percentage(), "endDate", utils.FormatDate(result.EndDate), "outcome", outcome)
	logger.ExitMethod("discountResolver.Apply", "outcome", outcome)
	return result, outcome, nil
}

func (r *discountResolver) validate(titleID int32, percentage float64, today, end time.Time) (int32, error) {
	if titleID <= 0 {
		return 0, domain.NewValidationError("title_id", "must be positive")
	}
	if math.IsNaN(percentage) || percentage < 0 || percentage > float64(domain.MaxPercentageBP)/100 {
		return 0, domain.NewValidationError("percentage", "must be between 0 and 100")
	}
	bp, ok := domain.PercentageToBP(percentage)
	if !ok {
		return 0, domain.NewValidationError("percentage", "at most two decimal places allowed")
	}
	if end.Before(today) {
		return 0, domain.NewValidationError("end_date", "must not be in the past")
	}
	if utils.DaysUntil(today, end) > r.maxDays {
		return 0, domain.NewValidationError("end_date", fmt.Sprintf("must be within %d days", r.maxDays))
	}
	return bp, nil
}

func (r *discountResolver) EffectiveRate(ctx context.Context, baseRateCents, titleID int32) (int32, *domain.Discount, error) {
	d, err := r.ActiveDiscount(ctx, titleID)
	if err != nil {
		return 0, nil, err
	}
	if d == nil {
		return baseRateCents, nil, nil
	}
	return utils.DiscountedRate(baseRateCents, d.PercentageBP), d, nil
}

func (r *discountResolver) ListDiscounts(ctx context.Context, titleID int32) ([]domain.Discount, error) {
	list, err := r.discounts.ListByTitle(ctx, titleID)
	if err != nil {
		return nil, domain.NewStorageError("list discounts", err)
	}
	return list, nil
}
