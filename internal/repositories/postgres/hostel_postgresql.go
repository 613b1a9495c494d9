package postgres

import (
	"context"

	"github.com/edubridge/consultancy-admin/internal/models"
	"github.com/edubridge/consultancy-admin/internal/repositories"
	"gorm.io/gorm"
)

type hostelRepository struct {
	db *gorm.DB
}

func NewHostelRepository(db *gorm.DB) repositories.HostelRepository {
	return &hostelRepository{db: db}
}

func (r *hostelRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Hostel, error) {
	db := pickDB(r.db, tx)
	var hostel models.Hostel

	if err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&hostel).Error; err != nil {
		return nil, handleDBError(err, "get hostel by id")
	}

	return &hostel, nil
}

// AllocateMessBudget is a plain single-row update; concurrent calls are last writer wins.
func (r *hostelRepository) AllocateMessBudget(ctx context.Context, tx *gorm.DB, id string, amount float64, year int) error {
	db := pickDB(r.db, tx)

	result := db.WithContext(ctx).
		Model(&models.Hostel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"mess_budget":           amount,
			"mess_budget_remaining": amount,
			"mess_budget_year":      year,
		})
	if result.Error != nil {
		return handleDBError(result.Error, "allocate mess budget")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "allocate mess budget")
	}

	return nil
}

func (r *hostelRepository) CreateMessExpense(ctx context.Context, tx *gorm.DB, expense *models.MessExpense) error {
	db := pickDB(r.db, tx)
	if err := db.WithContext(ctx).Create(expense).Error; err != nil {
		return handleDBError(err, "create mess expense")
	}
	return nil
}

func (r *hostelRepository) DecrementMessBudget(ctx context.Context, tx *gorm.DB, id string, year int, amount float64) (bool, error) {
	db := pickDB(r.db, tx)

	result := db.WithContext(ctx).
		Model(&models.Hostel{}).
		Where("id = ? AND mess_budget_year = ?", id, year).
		Update("mess_budget_remaining", gorm.Expr("mess_budget_remaining - ?", amount))
	if result.Error != nil {
		return false, handleDBError(result.Error, "decrement mess budget")
	}

	return result.RowsAffected > 0, nil
}
